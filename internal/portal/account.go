package portal

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hongminglow/jobportal/internal/gateway"
	"github.com/hongminglow/jobportal/internal/guard"
	"github.com/hongminglow/jobportal/internal/models"
	"github.com/hongminglow/jobportal/internal/models/dto"
	"github.com/hongminglow/jobportal/internal/session"
)

// View paths.
const (
	PathHome              = "/"
	PathLogin             = "/login"
	PathRegister          = "/register"
	PathJobs              = "/jobs"
	PathAppliedJobs       = "/applied-jobs"
	PathProfile           = "/profile"
	PathMyJobs            = "/jobs/my-jobs"
	PathCreateJob         = "/jobs/create"
	PathAdmin             = "/admin"
	PathAdminJobs         = "/admin/jobs"
	PathAdminApplications = "/admin/applications"
	PathPendingEmployers  = "/admin/pending-employers"
	PathAdminUsers        = "/admin/users"
)

// ApplicantsPath is the applicant list of one job.
func ApplicantsPath(jobID string) string {
	return "/jobs/" + jobID + "/applicants"
}

// Login signs in through the session store.
func (p *Portal) Login(ctx context.Context, creds dto.Credentials) Result {
	d := p.decide(PathLogin)
	if errs := p.check(creds); errs != nil {
		return invalid(d, errs)
	}
	if _, err := p.session.Login(ctx, creds); err != nil {
		return Result{Decision: d, Feedback: failed(gateway.Message(err, "Invalid email or password."))}
	}
	return Result{Decision: d, Feedback: succeeded("Login successful! Redirecting..."), Next: PathHome}
}

// Register creates an account; the visitor signs in afterwards.
func (p *Portal) Register(ctx context.Context, req dto.RegisterRequest) Result {
	d := p.decide(PathRegister)
	if errs := p.check(req); errs != nil {
		return invalid(d, errs)
	}
	if _, err := p.api.Post(ctx, "/auth/register", req); err != nil {
		return Result{Decision: d, Feedback: failed(gateway.Message(err, "Unable to register. Please try again."))}
	}
	return Result{Decision: d, Feedback: succeeded("Registration successful! Redirecting to login..."), Next: PathLogin}
}

// Logout ends the session. It cannot fail.
func (p *Portal) Logout(ctx context.Context) Result {
	p.session.Logout(ctx)
	return Result{Decision: p.decide(PathHome), Feedback: succeeded("Logged out."), Next: PathLogin}
}

// ProfileForm returns the profile form pre-filled from the session.
func (p *Portal) ProfileForm() (dto.ProfileUpdate, guard.Decision) {
	snap := p.session.Snapshot()
	d := guard.Evaluate(guard.RequirementFor(PathProfile), snap)
	if !d.Allowed() {
		return dto.ProfileUpdate{}, d
	}
	return dto.ProfileFrom(*snap.Identity), d
}

// SaveProfile submits the profile form and adopts the identity the
// backend returns, or the form itself when the reply carries none.
func (p *Portal) SaveProfile(ctx context.Context, form dto.ProfileUpdate) Result {
	const fallback = "Failed to update profile. Please try again."

	snap := p.session.Snapshot()
	d := guard.Evaluate(guard.RequirementFor(PathProfile), snap)
	if !d.Allowed() {
		return Result{Decision: d}
	}
	if errs := p.check(form); errs != nil {
		return invalid(d, errs)
	}
	resp, err := p.api.Put(ctx, "/users/profile", form)
	if err != nil {
		return Result{Decision: d, Feedback: failed(gateway.Message(err, fallback))}
	}

	var ident models.Identity
	ok, err := resp.Object(&ident, gateway.DataPath, gateway.Root)
	if err != nil {
		p.logger.Warn("profile response undecodable", slog.String("error", err.Error()))
		return Result{Decision: d, Feedback: failed(fallback)}
	}
	if !ok || ident.Empty() {
		// A bare acknowledgement: the submitted form is the new profile.
		p.logger.Debug("profile response without identity")
		ident = form.ApplyTo(*snap.Identity)
	}
	// Partial replies keep the session's id and role.
	if ident.ID == "" {
		ident.ID = snap.Identity.ID
	}
	if ident.Role == "" {
		ident.Role = snap.Identity.Role
	}
	if err := p.session.UpdateIdentity(ctx, &ident); err != nil {
		p.logger.Warn("profile update rejected", slog.String("error", err.Error()))
		if errors.Is(err, session.ErrRoleChanged) {
			return Result{Decision: d, Feedback: failed("Your role changed. Please sign in again.")}
		}
		return Result{Decision: d, Feedback: failed(fallback)}
	}
	return Result{Decision: d, Feedback: succeeded("Profile updated successfully!")}
}

package portal

import (
	"context"
	"net/url"
	"slices"

	"github.com/hongminglow/jobportal/internal/gateway"
	"github.com/hongminglow/jobportal/internal/guard"
	"github.com/hongminglow/jobportal/internal/models"
	"github.com/hongminglow/jobportal/internal/models/dto"
)

// AdminSection is a tile on the admin dashboard.
type AdminSection struct {
	Title       string
	Description string
	Path        string
}

// AdminSections are the dashboard tiles in display order.
var AdminSections = []AdminSection{
	{"Jobs", "View every job posted on the platform", PathAdminJobs},
	{"Applications", "Review all job applications", PathAdminApplications},
	{"Pending Employers", "Approve new employer accounts", PathPendingEmployers},
	{"Users", "Block or unblock user accounts", PathAdminUsers},
}

// AdminDashboard returns the dashboard tiles for an admin.
func (p *Portal) AdminDashboard() ([]AdminSection, guard.Decision) {
	d := p.decide(PathAdmin)
	if !d.Allowed() {
		return nil, d
	}
	return AdminSections, d
}

// AdminJobsPage lists every posting.
type AdminJobsPage struct {
	portal *Portal
	State
	Jobs []models.Job
}

// AdminJobs returns the admin job listing.
func (p *Portal) AdminJobs() *AdminJobsPage {
	return &AdminJobsPage{portal: p}
}

// Load fetches all postings.
func (pg *AdminJobsPage) Load(ctx context.Context) guard.Decision {
	pg.Jobs, pg.Decision, pg.Err = loadList[models.Job](ctx, pg.portal, PathAdminJobs, "/admin/jobs", "jobs",
		"Failed to load jobs. Please try again.")
	return pg.Decision
}

// AdminApplicationsPage lists every application.
type AdminApplicationsPage struct {
	portal *Portal
	State
	Applications []models.Application
}

// AdminApplications returns the admin application listing.
func (p *Portal) AdminApplications() *AdminApplicationsPage {
	return &AdminApplicationsPage{portal: p}
}

// Load fetches all applications.
func (pg *AdminApplicationsPage) Load(ctx context.Context) guard.Decision {
	pg.Applications, pg.Decision, pg.Err = loadList[models.Application](ctx, pg.portal, PathAdminApplications,
		"/admin/applications", "applications", "Failed to load applications. Please try again.")
	return pg.Decision
}

// PendingEmployersPage lists employers awaiting approval.
type PendingEmployersPage struct {
	portal *Portal
	State
	Employers []models.Identity
}

// PendingEmployers returns the approval queue view.
func (p *Portal) PendingEmployers() *PendingEmployersPage {
	return &PendingEmployersPage{portal: p}
}

// Load fetches the approval queue.
func (pg *PendingEmployersPage) Load(ctx context.Context) guard.Decision {
	pg.Employers, pg.Decision, pg.Err = loadList[models.Identity](ctx, pg.portal, PathPendingEmployers,
		"/admin/pending-employers", "employers", "Failed to load pending employers. Please try again.")
	return pg.Decision
}

// Approve approves an employer and drops it from the local list.
func (pg *PendingEmployersPage) Approve(ctx context.Context, id string) Result {
	p := pg.portal
	d := p.decide(PathPendingEmployers)
	if !d.Allowed() {
		return Result{Decision: d}
	}
	if _, err := p.api.Patch(ctx, "/admin/employers/"+url.PathEscape(id)+"/approve", nil); err != nil {
		pg.Feedback = failed(gateway.Message(err, "Failed to approve employer. Please try again."))
		return Result{Decision: d, Feedback: pg.Feedback}
	}
	pg.Employers = slices.DeleteFunc(pg.Employers, func(e models.Identity) bool { return e.ID == id })
	pg.Feedback = succeeded("Employer approved successfully!")
	return Result{Decision: d, Feedback: pg.Feedback}
}

// UsersPage lists every account.
type UsersPage struct {
	portal *Portal
	State
	Users []models.Identity
}

// Users returns the user management view.
func (p *Portal) Users() *UsersPage {
	return &UsersPage{portal: p}
}

// Load fetches all accounts.
func (pg *UsersPage) Load(ctx context.Context) guard.Decision {
	pg.Users, pg.Decision, pg.Err = loadList[models.Identity](ctx, pg.portal, PathAdminUsers,
		"/admin/users", "users", "Failed to load users. Please check if the endpoint exists.")
	return pg.Decision
}

// ToggleBlock flips the blocked flag of a listed user and updates the
// local row on success.
func (pg *UsersPage) ToggleBlock(ctx context.Context, id string) Result {
	i := pg.index(id)
	return pg.SetBlocked(ctx, id, i >= 0 && !pg.Users[i].Blocked)
}

// SetBlocked sets the blocked flag of a listed user.
func (pg *UsersPage) SetBlocked(ctx context.Context, id string, blocked bool) Result {
	d := pg.portal.decide(PathAdminUsers)
	if !d.Allowed() {
		return Result{Decision: d}
	}
	i := pg.index(id)
	if i < 0 {
		pg.Feedback = failed("User not found.")
		return Result{Decision: d, Feedback: pg.Feedback}
	}
	return pg.setBlocked(ctx, d, i, blocked)
}

func (pg *UsersPage) index(id string) int {
	return slices.IndexFunc(pg.Users, func(u models.Identity) bool { return u.ID == id })
}

func (pg *UsersPage) setBlocked(ctx context.Context, d guard.Decision, i int, blocked bool) Result {
	id := pg.Users[i].ID
	if _, err := pg.portal.api.Patch(ctx, "/admin/users/"+url.PathEscape(id)+"/block", dto.BlockRequest{IsBlocked: blocked}); err != nil {
		pg.Feedback = failed(gateway.Message(err, "Failed to update user status. Please try again."))
		return Result{Decision: d, Feedback: pg.Feedback}
	}
	pg.Users[i].Blocked = blocked
	if blocked {
		pg.Feedback = succeeded("User blocked successfully!")
	} else {
		pg.Feedback = succeeded("User unblocked successfully!")
	}
	return Result{Decision: d, Feedback: pg.Feedback}
}

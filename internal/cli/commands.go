package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hongminglow/jobportal/internal/models"
	"github.com/hongminglow/jobportal/internal/models/dto"
	"github.com/hongminglow/jobportal/internal/portal"
)

// clearValue empties an optional field in an edit form.
const clearValue = "-"

func (a *App) commandTable() []command {
	return []command{
		{name: "home", usage: "home", summary: "Show the landing page and quick actions", run: a.home},
		{name: "jobs", usage: "jobs", summary: "Browse all job postings", run: a.listJobs},
		{name: "apply", usage: "apply <job-id>", summary: "Apply to a job", minArgs: 1, maxArgs: 1, run: a.apply},
		{name: "applied", usage: "applied", summary: "List the jobs you applied to", run: a.appliedJobs},
		{name: "my-jobs", usage: "my-jobs", summary: "List your job postings (employers)", run: a.myJobs},
		{name: "create-job", usage: "create-job", summary: "Post a new job (employers)", run: a.createJob},
		{name: "applicants", usage: "applicants <job-id>", summary: "Show who applied to your job (employers)", minArgs: 1, maxArgs: 1, run: a.applicants},
		{name: "profile", usage: "profile [set]", summary: "Show or edit your profile", maxArgs: 1, run: a.profile},
		{name: "admin", usage: "admin [jobs|applications|employers|users]", summary: "Admin dashboard and listings", maxArgs: 1, run: a.admin},
		{name: "approve", usage: "approve <employer-id>", summary: "Approve a pending employer (admins)", minArgs: 1, maxArgs: 1, run: a.approve},
		{name: "block", usage: "block <user-id>", summary: "Block a user (admins)", minArgs: 1, maxArgs: 1, run: a.blockUser(true)},
		{name: "unblock", usage: "unblock <user-id>", summary: "Unblock a user (admins)", minArgs: 1, maxArgs: 1, run: a.blockUser(false)},
		{name: "login", usage: "login", summary: "Sign in", run: a.login},
		{name: "register", usage: "register", summary: "Create an account", run: a.register},
		{name: "logout", usage: "logout", summary: "Sign out", run: a.logout},
		{name: "whoami", usage: "whoami [refresh]", summary: "Show the signed-in user, optionally re-read from the server", maxArgs: 1, run: a.whoami},
		{name: "nav", usage: "nav [path]", summary: "Show the navigation links for a page", maxArgs: 1, run: a.nav},
		{name: "shell", usage: "shell", summary: "Start an interactive session", run: a.shell},
		{name: "help", usage: "help", summary: "Show this help", run: a.help},
	}
}

func (a *App) help(context.Context, []string) error {
	a.usage()
	return nil
}

// commandFor maps a view path to the command that opens it.
var commandFor = map[string]string{
	portal.PathLogin:       "login",
	portal.PathRegister:    "register",
	portal.PathJobs:        "jobs",
	portal.PathAppliedJobs: "applied",
	portal.PathProfile:     "profile",
	portal.PathMyJobs:      "my-jobs",
	portal.PathCreateJob:   "create-job",
	portal.PathAdmin:       "admin",
}

func (a *App) home(context.Context, []string) error {
	page := portal.Home(a.session.Snapshot())
	if page.Pending {
		a.out.dim("Loading...")
		return nil
	}
	a.out.heading("Welcome to Job Portal")
	a.out.dim("Connect with top employers or find the perfect candidate for your team.")
	a.out.blank()
	for _, act := range page.Actions {
		a.out.line("  %-18s %s", act.Label, a.out.styles.dim.Render("jobportal "+commandFor[act.Path]))
	}
	if len(page.Highlights) > 0 {
		a.out.blank()
		for _, h := range page.Highlights {
			a.out.field(h.Title, h.Text)
		}
	}
	return nil
}

func (a *App) listJobs(ctx context.Context, _ []string) error {
	pg := a.portal.Jobs()
	if err := a.loaded(pg.Load(ctx), pg.Err); err != nil {
		return err
	}
	a.out.heading("Available Jobs")
	a.out.jobs(pg.Jobs, "No jobs available at the moment.")
	return nil
}

func (a *App) apply(ctx context.Context, args []string) error {
	return a.result(a.portal.Jobs().Apply(ctx, args[0]))
}

func (a *App) appliedJobs(ctx context.Context, _ []string) error {
	pg := a.portal.AppliedJobs()
	if err := a.loaded(pg.Load(ctx), pg.Err); err != nil {
		return err
	}
	a.out.heading("My Applications")
	a.out.applications(pg.Applications, "You haven't applied to any jobs yet.")
	return nil
}

func (a *App) myJobs(ctx context.Context, _ []string) error {
	pg := a.portal.MyJobs()
	if err := a.loaded(pg.Load(ctx), pg.Err); err != nil {
		return err
	}
	a.out.heading("My Job Postings")
	a.out.jobs(pg.Jobs, "You haven't posted any jobs yet.")
	return nil
}

func (a *App) createJob(ctx context.Context, _ []string) error {
	if !a.allowed(portal.PathCreateJob) {
		return ErrFailed
	}
	company := ""
	if ident := a.session.Snapshot().Identity; ident != nil {
		company = ident.Company
	}

	var in dto.JobInput
	var err error
	fields := []struct {
		label string
		def   string
		dst   *string
	}{
		{"Job title", "", &in.Title},
		{"Company", company, &in.Company},
		{"Location", "", &in.Location},
		{"Job type (" + strings.Join(dto.JobTypes, ", ") + ")", dto.JobTypes[0], &in.JobType},
		{"Salary range", "", &in.SalaryRange},
		{"Description", "", &in.Description},
	}
	for _, f := range fields {
		if *f.dst, err = a.ask(f.label, f.def); err != nil {
			return err
		}
	}
	return a.result(a.portal.CreateJob(ctx, in))
}

func (a *App) applicants(ctx context.Context, args []string) error {
	pg := a.portal.Applicants(args[0])
	if err := a.loaded(pg.Load(ctx), pg.Err); err != nil {
		return err
	}
	if pg.Job != nil {
		a.out.heading("Applicants for " + a.out.clean.Text(pg.Job.Title))
		a.out.field("Company", pg.Job.Company)
		a.out.field("Location", pg.Job.LocationOr())
		a.out.blank()
	} else {
		a.out.heading("Applicants")
	}
	a.out.applications(pg.Applicants, "No applicants yet.")
	return nil
}

func (a *App) profile(ctx context.Context, args []string) error {
	if len(args) == 1 {
		if args[0] != "set" {
			a.out.failure("Usage: jobportal profile [set]")
			return ErrFailed
		}
		return a.editProfile(ctx)
	}
	_, d := a.portal.ProfileForm()
	if err := a.loaded(d, ""); err != nil {
		return err
	}
	a.out.heading("My Profile")
	a.out.identity(*a.session.Snapshot().Identity)
	return nil
}

func (a *App) editProfile(ctx context.Context) error {
	form, d := a.portal.ProfileForm()
	if err := a.loaded(d, ""); err != nil {
		return err
	}
	a.out.dim("Press enter to keep the current value, or %s to clear an optional one.", clearValue)
	var err error
	fields := []struct {
		label    string
		dst      *string
		optional bool
	}{
		{"Name", &form.Name, false},
		{"Email", &form.Email, false},
		{"Skills (comma separated)", &form.Skills, true},
		{"Experience", &form.Experience, true},
		{"Education", &form.Education, true},
		{"Resume URL", &form.Resume, true},
		{"Bio", &form.Bio, true},
	}
	for _, f := range fields {
		if *f.dst, err = a.ask(f.label, *f.dst); err != nil {
			return err
		}
		if f.optional && *f.dst == clearValue {
			*f.dst = ""
		}
	}
	return a.result(a.portal.SaveProfile(ctx, form))
}

func (a *App) admin(ctx context.Context, args []string) error {
	if len(args) == 0 {
		sections, d := a.portal.AdminDashboard()
		if err := a.loaded(d, ""); err != nil {
			return err
		}
		a.out.heading("Admin Dashboard")
		for _, s := range sections {
			sub := strings.TrimPrefix(s.Path, portal.PathAdmin+"/")
			if sub == "pending-employers" {
				sub = "employers"
			}
			a.out.line("  %-18s %s", s.Title, a.out.styles.dim.Render(s.Description+" (admin "+sub+")"))
		}
		return nil
	}

	switch args[0] {
	case "jobs":
		pg := a.portal.AdminJobs()
		if err := a.loaded(pg.Load(ctx), pg.Err); err != nil {
			return err
		}
		a.out.heading("All Jobs")
		a.out.jobs(pg.Jobs, "No jobs found.")
	case "applications":
		pg := a.portal.AdminApplications()
		if err := a.loaded(pg.Load(ctx), pg.Err); err != nil {
			return err
		}
		a.out.heading("All Applications")
		a.out.applications(pg.Applications, "No applications found.")
	case "employers":
		pg := a.portal.PendingEmployers()
		if err := a.loaded(pg.Load(ctx), pg.Err); err != nil {
			return err
		}
		a.out.heading("Pending Employers")
		a.out.users(pg.Employers, "No pending employer approvals.")
	case "users":
		pg := a.portal.Users()
		if err := a.loaded(pg.Load(ctx), pg.Err); err != nil {
			return err
		}
		a.out.heading("Users")
		a.out.users(pg.Users, "No users found.")
	default:
		a.out.failure("Usage: jobportal admin [jobs|applications|employers|users]")
		return ErrFailed
	}
	return nil
}

func (a *App) approve(ctx context.Context, args []string) error {
	return a.result(a.portal.PendingEmployers().Approve(ctx, args[0]))
}

func (a *App) blockUser(blocked bool) func(context.Context, []string) error {
	return func(ctx context.Context, args []string) error {
		pg := a.portal.Users()
		if err := a.loaded(pg.Load(ctx), pg.Err); err != nil {
			return err
		}
		return a.result(pg.SetBlocked(ctx, args[0], blocked))
	}
}

func (a *App) login(ctx context.Context, _ []string) error {
	email, err := a.ask("Email", "")
	if err != nil {
		return err
	}
	password, err := a.askPassword("Password")
	if err != nil {
		return err
	}
	if err := a.result(a.portal.Login(ctx, dto.Credentials{Email: email, Password: password})); err != nil {
		return err
	}
	if ident := a.session.Snapshot().Identity; ident != nil {
		a.out.dim("Signed in as %s (%s)", a.out.clean.Text(ident.DisplayName()), ident.Role)
	}
	return nil
}

func (a *App) register(ctx context.Context, _ []string) error {
	var req dto.RegisterRequest
	var err error
	if req.Name, err = a.ask("Name", ""); err != nil {
		return err
	}
	if req.Email, err = a.ask("Email", ""); err != nil {
		return err
	}
	if req.Password, err = a.askPassword("Password"); err != nil {
		return err
	}
	roles := make([]string, 0, len(models.RegisterableRoles))
	for _, r := range models.RegisterableRoles {
		roles = append(roles, r.String())
	}
	role, err := a.ask(fmt.Sprintf("Role (%s)", strings.Join(roles, ", ")), models.JobSeeker.String())
	if err != nil {
		return err
	}
	req.Role = models.Role(strings.ToLower(role))
	if err := a.result(a.portal.Register(ctx, req)); err != nil {
		return err
	}
	a.out.dim("Run `jobportal login` to sign in.")
	return nil
}

func (a *App) logout(ctx context.Context, _ []string) error {
	return a.result(a.portal.Logout(ctx))
}

func (a *App) whoami(ctx context.Context, args []string) error {
	if len(args) == 1 && args[0] != "refresh" {
		a.out.failure("Usage: jobportal whoami [refresh]")
		return ErrFailed
	}
	ident := a.session.Snapshot().Identity
	if ident == nil {
		a.out.dim("Not signed in.")
		return nil
	}
	if len(args) == 1 {
		fresh, err := a.session.Refresh(ctx)
		if err != nil {
			a.logger.Info("refresh failed", slog.String("error", err.Error()))
			a.out.warning("Could not reach the server; showing the last known profile.")
		} else {
			ident = &fresh
		}
	}
	a.out.identity(*ident)
	return nil
}

func (a *App) nav(_ context.Context, args []string) error {
	current := portal.PathHome
	if len(args) == 1 {
		current = args[0]
	}
	snap := a.session.Snapshot()
	items := portal.Nav(snap, current)
	if len(items) == 0 {
		a.out.dim("No navigation on %s.", current)
		return nil
	}
	a.out.nav(items, portal.Greeting(snap))
	return nil
}

package cli_test

import (
	"bytes"
	"context"
	"io"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/jobportal/internal/cli"
	"github.com/hongminglow/jobportal/internal/gateway"
	"github.com/hongminglow/jobportal/internal/logger"
	"github.com/hongminglow/jobportal/internal/models"
	"github.com/hongminglow/jobportal/internal/models/dto"
	"github.com/hongminglow/jobportal/internal/portal"
	"github.com/hongminglow/jobportal/internal/portaltest"
	"github.com/hongminglow/jobportal/internal/session"
)

const password = "secret1"

type harness struct {
	srv      *portaltest.Server
	seeker   models.Identity
	employer models.Identity
	admin    models.Identity
	job      models.Job
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	srv := portaltest.New(t, portaltest.Options{})
	h := &harness{
		srv:      srv,
		seeker:   srv.AddUser("Ada Seeker", "ada@x.com", password, models.JobSeeker),
		employer: srv.AddUser("Emma Employer", "emma@x.com", password, models.Employer),
		admin:    srv.AddUser("Root", "root@x.com", password, models.Admin),
	}
	h.job = srv.AddJob(h.employer.ID, dto.JobInput{
		Title: "Go Engineer", Company: "Acme", Location: "Remote", JobType: "Full-time",
		SalaryRange: "100k-120k", Description: "Build services",
	})
	return h
}

// app returns an App reading input and a buffer holding everything it
// printed. The session is restored and, when email is set, signed in.
func (h *harness) app(t *testing.T, email, input string) (*cli.App, *bytes.Buffer, *session.Store) {
	t.Helper()
	api, err := gateway.New(gateway.Options{BaseURL: h.srv.BaseURL(), Logger: logger.Discard()})
	require.NoError(t, err)
	store := session.New(api, nil, session.Options{Logger: logger.Discard()})
	store.Restore(context.Background())
	if email != "" {
		_, err := store.Login(context.Background(), dto.Credentials{Email: email, Password: password})
		require.NoError(t, err)
	}
	out := &bytes.Buffer{}
	app := cli.New(portal.New(api, store, logger.Discard()), cli.Options{
		In:     strings.NewReader(input),
		Out:    out,
		Logger: logger.Discard(),
	})
	return app, out, store
}

func TestUsage(t *testing.T) {
	h := newHarness(t)
	app, out, _ := h.app(t, "", "")

	require.NoError(t, app.Run(context.Background(), nil))
	assert.Contains(t, out.String(), "Usage: jobportal <command>")
	assert.Contains(t, out.String(), "applicants <job-id>")

	out.Reset()
	require.NoError(t, app.Run(context.Background(), []string{"--help"}))
	assert.Contains(t, out.String(), "Show this help")
}

func TestUnknownCommandAndBadArguments(t *testing.T) {
	h := newHarness(t)
	app, out, _ := h.app(t, "", "")

	err := app.Run(context.Background(), []string{"dance"})
	require.ErrorIs(t, err, cli.ErrUnknownCommand)
	assert.ErrorIs(t, err, cli.ErrFailed)
	assert.Contains(t, out.String(), `Unknown command "dance".`)

	out.Reset()
	err = app.Run(context.Background(), []string{"apply"})
	require.ErrorIs(t, err, cli.ErrFailed)
	assert.Contains(t, out.String(), "Usage: jobportal apply <job-id>")

	out.Reset()
	err = app.Run(context.Background(), []string{"admin", "reports"})
	require.ErrorIs(t, err, cli.ErrFailed)
	assert.Contains(t, out.String(), "Usage: jobportal admin")
}

func TestHomeQuickActions(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	app, out, _ := h.app(t, "", "")
	require.NoError(t, app.Run(ctx, []string{"home"}))
	assert.Contains(t, out.String(), "Welcome to Job Portal")
	assert.Contains(t, out.String(), "Get Started")
	assert.Contains(t, out.String(), "jobportal register")
	assert.Contains(t, out.String(), "jobportal login")

	app, out, _ = h.app(t, "ada@x.com", "")
	require.NoError(t, app.Run(ctx, []string{"home"}))
	assert.Contains(t, out.String(), "View Applications")
	assert.Contains(t, out.String(), "jobportal applied")
	assert.Contains(t, out.String(), "Find Jobs")

	app, out, _ = h.app(t, "emma@x.com", "")
	require.NoError(t, app.Run(ctx, []string{"home"}))
	assert.Contains(t, out.String(), "Post a Job")
	assert.Contains(t, out.String(), "jobportal create-job")
	assert.NotContains(t, out.String(), "Get Started")
}

func TestJobsIsPublic(t *testing.T) {
	h := newHarness(t)
	app, out, _ := h.app(t, "", "")

	require.NoError(t, app.Run(context.Background(), []string{"jobs"}))
	assert.Contains(t, out.String(), "Available Jobs")
	assert.Contains(t, out.String(), "Go Engineer")
	assert.Contains(t, out.String(), "Acme")
	assert.Contains(t, out.String(), "100k-120k")
	assert.Contains(t, out.String(), h.job.ID)
}

func TestJobsLoadFailureIsShownInline(t *testing.T) {
	h := newHarness(t)
	app, out, _ := h.app(t, "", "")
	h.srv.Fail("GET", "/jobs", 500, "")

	err := app.Run(context.Background(), []string{"jobs"})
	require.ErrorIs(t, err, cli.ErrFailed)
	assert.Contains(t, out.String(), "Failed to load jobs. Please try again.")
}

func TestServerTextIsSanitized(t *testing.T) {
	h := newHarness(t)
	h.srv.AddJob(h.employer.ID, dto.JobInput{
		Title: "<script>alert(1)</script><b>Rust</b> &amp; Go", Company: "Evil\a Corp", Location: "Remote",
		JobType: "Contract", SalaryRange: "n/a", Description: "<p>line one</p>\nline two\x1b[31m",
	})
	app, out, _ := h.app(t, "", "")

	require.NoError(t, app.Run(context.Background(), []string{"jobs"}))
	text := out.String()
	assert.Contains(t, text, "Rust & Go")
	assert.Contains(t, text, "Evil Corp")
	assert.Contains(t, text, "line one")
	assert.NotContains(t, text, "<b>")
	assert.NotContains(t, text, "alert(1)")
	assert.NotContains(t, text, "\a")
	assert.NotContains(t, text, "\x1b[31m")
}

func TestLoginPromptsForCredentials(t *testing.T) {
	h := newHarness(t)
	app, out, store := h.app(t, "", "ada@x.com\nsecret1\n")

	require.NoError(t, app.Run(context.Background(), []string{"login"}))
	assert.Contains(t, out.String(), "Email: ")
	assert.Contains(t, out.String(), "Login successful! Redirecting...")
	assert.Contains(t, out.String(), "Signed in as Ada Seeker (jobseeker)")
	require.NotNil(t, store.Snapshot().Identity)
	assert.Equal(t, h.seeker.ID, store.Snapshot().Identity.ID)
}

func TestLoginShowsValidationAndServerErrors(t *testing.T) {
	h := newHarness(t)
	app, out, _ := h.app(t, "", "nope\n\n")

	err := app.Run(context.Background(), []string{"login"})
	require.ErrorIs(t, err, cli.ErrFailed)
	assert.Contains(t, out.String(), "Please enter a valid email address")
	assert.Contains(t, out.String(), "Password is required")

	app, out, store := h.app(t, "", "ada@x.com\nwrong-pass\n")
	err = app.Run(context.Background(), []string{"login"})
	require.ErrorIs(t, err, cli.ErrFailed)
	assert.Contains(t, out.String(), "Invalid credentials")
	assert.Nil(t, store.Snapshot().Identity)
}

func TestLoginWithoutInput(t *testing.T) {
	h := newHarness(t)
	app, _, _ := h.app(t, "", "")

	err := app.Run(context.Background(), []string{"login"})
	require.ErrorIs(t, err, io.EOF)
}

func TestRegister(t *testing.T) {
	h := newHarness(t)
	app, out, _ := h.app(t, "", "New Person\nnew@x.com\nsecret1\nemployer\n")

	require.NoError(t, app.Run(context.Background(), []string{"register"}))
	assert.Contains(t, out.String(), "Registration successful! Redirecting to login...")
	assert.Contains(t, out.String(), "jobportal login")

	app, out, _ = h.app(t, "", "Someone\nada@x.com\nsecret1\n\n")
	err := app.Run(context.Background(), []string{"register"})
	require.ErrorIs(t, err, cli.ErrFailed)
	assert.Contains(t, out.String(), "User already exists")
}

func TestGuardedCommandsRedirect(t *testing.T) {
	h := newHarness(t)

	app, out, _ := h.app(t, "", "")
	err := app.Run(context.Background(), []string{"applied"})
	require.ErrorIs(t, err, cli.ErrFailed)
	assert.Contains(t, out.String(), "Please log in to continue.")
	assert.NotContains(t, h.srv.Calls(), "GET /users/applied-jobs")

	app, out, _ = h.app(t, "ada@x.com", "")
	err = app.Run(context.Background(), []string{"my-jobs"})
	require.ErrorIs(t, err, cli.ErrFailed)
	assert.Contains(t, out.String(), "You do not have access to this page.")

	out.Reset()
	err = app.Run(context.Background(), []string{"admin"})
	require.ErrorIs(t, err, cli.ErrFailed)
	assert.Contains(t, out.String(), "You do not have access to this page.")

	app, out, _ = h.app(t, "", "")
	err = app.Run(context.Background(), []string{"apply", h.job.ID})
	require.ErrorIs(t, err, cli.ErrFailed)
	assert.Contains(t, out.String(), "Please log in to continue.")
	assert.NotContains(t, h.srv.Calls(), "POST /jobs/"+h.job.ID+"/apply")
}

func TestApplyAndApplied(t *testing.T) {
	h := newHarness(t)
	app, out, _ := h.app(t, "ada@x.com", "")
	ctx := context.Background()

	require.NoError(t, app.Run(ctx, []string{"applied"}))
	assert.Contains(t, out.String(), "You haven't applied to any jobs yet.")

	out.Reset()
	require.NoError(t, app.Run(ctx, []string{"apply", h.job.ID}))
	assert.Contains(t, out.String(), "Application submitted successfully!")

	out.Reset()
	err := app.Run(ctx, []string{"apply", h.job.ID})
	require.ErrorIs(t, err, cli.ErrFailed)
	assert.Contains(t, out.String(), "You have already applied for this job")

	out.Reset()
	require.NoError(t, app.Run(ctx, []string{"applied"}))
	assert.Contains(t, out.String(), "Go Engineer")
	assert.Contains(t, out.String(), "(pending)")
}

func TestEmployerCommands(t *testing.T) {
	h := newHarness(t)
	h.srv.AddApplication(h.job.ID, h.seeker.ID)
	input := strings.Join([]string{"Rust Engineer", "Acme", "Berlin", "", "90k", "Systems work"}, "\n") + "\n"
	app, out, _ := h.app(t, "emma@x.com", input)
	ctx := context.Background()

	require.NoError(t, app.Run(ctx, []string{"create-job"}))
	assert.Contains(t, out.String(), "Job type (Full-time, Part-time")
	assert.Contains(t, out.String(), "Job posted successfully! Redirecting...")

	out.Reset()
	require.NoError(t, app.Run(ctx, []string{"my-jobs"}))
	assert.Contains(t, out.String(), "My Job Postings")
	assert.Contains(t, out.String(), "Rust Engineer")
	assert.Contains(t, out.String(), "Berlin")

	out.Reset()
	require.NoError(t, app.Run(ctx, []string{"applicants", h.job.ID}))
	assert.Contains(t, out.String(), "Applicants for Go Engineer")
	assert.Contains(t, out.String(), "Ada Seeker")
	assert.Contains(t, out.String(), "ada@x.com")
}

func TestCreateJobValidation(t *testing.T) {
	h := newHarness(t)
	app, out, _ := h.app(t, "emma@x.com", "\n\n\nWeekends\n\n\n")

	err := app.Run(context.Background(), []string{"create-job"})
	require.ErrorIs(t, err, cli.ErrFailed)
	assert.Contains(t, out.String(), "Job title is required")
	assert.Contains(t, out.String(), "Job type must be one of: Full-time, Part-time, Contract, Internship, Freelance")
	assert.NotContains(t, h.srv.Calls(), "POST /jobs")
}

func TestProfile(t *testing.T) {
	h := newHarness(t)
	input := strings.Join([]string{"Ada Lovelace", "", "go, sql", "", "", "", ""}, "\n") + "\n"
	app, out, store := h.app(t, "ada@x.com", input)
	ctx := context.Background()

	require.NoError(t, app.Run(ctx, []string{"profile"}))
	assert.Contains(t, out.String(), "My Profile")
	assert.Contains(t, out.String(), "Ada Seeker")

	out.Reset()
	require.NoError(t, app.Run(ctx, []string{"profile", "set"}))
	assert.Contains(t, out.String(), "Name [Ada Seeker]: ")
	assert.Contains(t, out.String(), "Profile updated successfully!")
	assert.Equal(t, "Ada Lovelace", store.Snapshot().Identity.Name)
	assert.Equal(t, models.StringList{"go", "sql"}, store.Snapshot().Identity.Skills)

	out.Reset()
	err := app.Run(ctx, []string{"profile", "delete"})
	require.ErrorIs(t, err, cli.ErrFailed)
}

func TestProfileClearsOptionalFields(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	fill := strings.Join([]string{"", "", "go", "5 years", "", "https://cv.example/ada.pdf", "Gopher"}, "\n") + "\n"
	app, _, store := h.app(t, "ada@x.com", fill)
	require.NoError(t, app.Run(ctx, []string{"profile", "set"}))
	require.Equal(t, "Gopher", store.Snapshot().Identity.Bio)

	wipe := strings.Join([]string{"", "", "", "", "", "-", "-"}, "\n") + "\n"
	app, out, store := h.app(t, "ada@x.com", wipe)
	require.NoError(t, app.Run(ctx, []string{"profile", "set"}))
	assert.Contains(t, out.String(), "- to clear an optional one")
	assert.Contains(t, out.String(), "Profile updated successfully!")

	ident := store.Snapshot().Identity
	require.NotNil(t, ident)
	assert.Equal(t, "Ada Seeker", ident.Name)
	assert.Empty(t, ident.Bio)
	assert.Empty(t, ident.Resume)
	assert.Equal(t, "5 years", ident.Experience)
	assert.Equal(t, models.StringList{"go"}, ident.Skills)
}

func TestAdminCommands(t *testing.T) {
	h := newHarness(t)
	pending := h.srv.AddPendingEmployer("Pat Pending", "pat@x.com", "Startup")
	app, out, _ := h.app(t, "root@x.com", "")
	ctx := context.Background()

	require.NoError(t, app.Run(ctx, []string{"admin"}))
	assert.Contains(t, out.String(), "Admin Dashboard")
	assert.Contains(t, out.String(), "Pending Employers")

	out.Reset()
	require.NoError(t, app.Run(ctx, []string{"admin", "employers"}))
	assert.Contains(t, out.String(), "Pat Pending")

	out.Reset()
	require.NoError(t, app.Run(ctx, []string{"approve", pending.ID}))
	assert.Contains(t, out.String(), "Employer approved successfully!")

	out.Reset()
	require.NoError(t, app.Run(ctx, []string{"admin", "employers"}))
	assert.Contains(t, out.String(), "No pending employer approvals.")

	out.Reset()
	require.NoError(t, app.Run(ctx, []string{"block", h.seeker.ID}))
	assert.Contains(t, out.String(), "User blocked successfully!")
	stored, ok := h.srv.User(h.seeker.ID)
	require.True(t, ok)
	assert.True(t, stored.Blocked)

	out.Reset()
	require.NoError(t, app.Run(ctx, []string{"admin", "users"}))
	assert.Contains(t, out.String(), "blocked")

	out.Reset()
	require.NoError(t, app.Run(ctx, []string{"unblock", h.seeker.ID}))
	assert.Contains(t, out.String(), "User unblocked successfully!")

	out.Reset()
	err := app.Run(ctx, []string{"block", "missing"})
	require.ErrorIs(t, err, cli.ErrFailed)
	assert.Contains(t, out.String(), "User not found.")

	out.Reset()
	require.NoError(t, app.Run(ctx, []string{"admin", "jobs"}))
	assert.Contains(t, out.String(), "Go Engineer")
	assert.Contains(t, out.String(), "Emma Employer")
}

func TestWhoamiNavAndLogout(t *testing.T) {
	h := newHarness(t)
	app, out, store := h.app(t, "emma@x.com", "")
	ctx := context.Background()

	require.NoError(t, app.Run(ctx, []string{"whoami"}))
	assert.Contains(t, out.String(), "Emma Employer")
	assert.Contains(t, out.String(), "(employer)")

	out.Reset()
	require.NoError(t, app.Run(ctx, []string{"nav"}))
	assert.Contains(t, out.String(), "My Jobs")
	assert.Contains(t, out.String(), "Post Job")
	assert.Contains(t, out.String(), "Signed in as Emma Employer")

	out.Reset()
	require.NoError(t, app.Run(ctx, []string{"nav", portal.PathLogin}))
	assert.Contains(t, out.String(), "No navigation on /login.")

	out.Reset()
	require.NoError(t, app.Run(ctx, []string{"logout"}))
	assert.Contains(t, out.String(), "Logged out.")
	assert.Nil(t, store.Snapshot().Identity)

	out.Reset()
	require.NoError(t, app.Run(ctx, []string{"whoami"}))
	assert.Contains(t, out.String(), "Not signed in.")

	out.Reset()
	require.NoError(t, app.Run(ctx, []string{"nav"}))
	assert.Contains(t, out.String(), "Login")
	assert.Contains(t, out.String(), "Sign Up")
}

// script answers prompts from a fixed list and then reports EOF.
type script struct {
	lines   []string
	prompts []string
	history []string
}

func (s *script) Prompt(prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func (s *script) PasswordPrompt(prompt string) (string, error) {
	return s.Prompt(prompt)
}

func (s *script) AppendHistory(item string) {
	s.history = append(s.history, item)
}

func TestInteractRunsCommandsUntilExit(t *testing.T) {
	h := newHarness(t)
	app, out, store := h.app(t, "", "")
	sc := &script{lines: []string{
		"whoami",
		"",
		"login", "ada@x.com", password,
		"dance",
		"shell",
		"applied",
		"exit",
		"jobs",
	}}

	require.NoError(t, app.Interact(context.Background(), sc))
	text := out.String()
	assert.Contains(t, text, "Not signed in.")
	assert.Contains(t, text, "Login successful! Redirecting...")
	assert.Contains(t, text, `Unknown command "dance".`)
	assert.Contains(t, text, "Already in the shell.")
	assert.Contains(t, text, "You haven't applied to any jobs yet.")
	assert.NotContains(t, text, "Available Jobs", "nothing runs after exit")

	assert.Equal(t, []string{"jobs"}, sc.lines)
	assert.Equal(t, []string{"whoami", "login", "dance", "shell", "applied", "exit"}, sc.history)
	assert.Equal(t, "jobportal> ", sc.prompts[0])
	assert.Contains(t, sc.prompts, "Email: ")
	assert.Contains(t, sc.prompts, "jobportal (Ada Seeker)> ")
	require.NotNil(t, store.Snapshot().Identity)
}

func TestInteractStopsAtEOFAndCancellation(t *testing.T) {
	h := newHarness(t)
	app, _, _ := h.app(t, "", "")

	require.NoError(t, app.Interact(context.Background(), &script{}))

	// EOF in the middle of a form ends the session quietly.
	require.NoError(t, app.Interact(context.Background(), &script{lines: []string{"login", "ada@x.com"}}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sc := &script{lines: []string{"jobs"}}
	require.NoError(t, app.Interact(ctx, sc))
	assert.Empty(t, sc.prompts)
	assert.False(t, slices.Contains(h.srv.Calls(), "GET /jobs"))
}

func TestWhoamiRefresh(t *testing.T) {
	h := newHarness(t)
	app, out, store := h.app(t, "ada@x.com", "")
	ctx := context.Background()

	require.NoError(t, app.Run(ctx, []string{"whoami", "refresh"}))
	assert.Contains(t, out.String(), "Ada Seeker")
	assert.Equal(t, 2, countCalls(h.srv.Calls(), "GET /auth/me"))

	h.srv.Fail("GET", "/auth/me", 500, "down")
	out.Reset()
	require.NoError(t, app.Run(ctx, []string{"whoami", "refresh"}))
	assert.Contains(t, out.String(), "Could not reach the server")
	assert.Contains(t, out.String(), "Ada Seeker")
	require.NotNil(t, store.Snapshot().Identity, "a failed refresh keeps the session")

	out.Reset()
	err := app.Run(ctx, []string{"whoami", "now"})
	require.ErrorIs(t, err, cli.ErrFailed)
}

func countCalls(calls []string, call string) int {
	n := 0
	for _, c := range calls {
		if c == call {
			n++
		}
	}
	return n
}

package portal

import (
	"context"
	"log/slog"
	"net/url"

	"golang.org/x/sync/errgroup"

	"github.com/hongminglow/jobportal/internal/gateway"
	"github.com/hongminglow/jobportal/internal/guard"
	"github.com/hongminglow/jobportal/internal/models"
	"github.com/hongminglow/jobportal/internal/models/dto"
)

// JobsPage is the public job listing.
type JobsPage struct {
	portal *Portal
	State
	Jobs []models.Job
}

// Jobs returns the public listing view.
func (p *Portal) Jobs() *JobsPage {
	return &JobsPage{portal: p}
}

// Load fetches every posting.
func (pg *JobsPage) Load(ctx context.Context) guard.Decision {
	pg.Jobs, pg.Decision, pg.Err = loadList[models.Job](ctx, pg.portal, PathJobs, "/jobs", "jobs",
		"Failed to load jobs. Please try again.")
	return pg.Decision
}

// Apply submits an application. Visitors who are not signed in are sent
// to the login page instead.
func (pg *JobsPage) Apply(ctx context.Context, jobID string) Result {
	d := guard.Evaluate(guard.ApplyAction, pg.portal.session.Snapshot())
	if !d.Allowed() {
		return Result{Decision: d}
	}
	if _, err := pg.portal.api.Post(ctx, "/jobs/"+url.PathEscape(jobID)+"/apply", nil); err != nil {
		pg.Feedback = failed(gateway.Message(err, "Failed to apply. Please try again."))
		return Result{Decision: d, Feedback: pg.Feedback}
	}
	pg.Feedback = succeeded("Application submitted successfully!")
	return Result{Decision: d, Feedback: pg.Feedback}
}

// MyJobsPage lists an employer's postings. Scoping to the caller is the
// backend's job.
type MyJobsPage struct {
	portal *Portal
	State
	Jobs []models.Job
}

// MyJobs returns the employer listing view.
func (p *Portal) MyJobs() *MyJobsPage {
	return &MyJobsPage{portal: p}
}

// Load fetches the employer's postings.
func (pg *MyJobsPage) Load(ctx context.Context) guard.Decision {
	pg.Jobs, pg.Decision, pg.Err = loadList[models.Job](ctx, pg.portal, PathMyJobs, "/jobs", "jobs",
		"Failed to load your jobs. Please try again.")
	return pg.Decision
}

// CreateJob posts a new job for the signed-in employer.
func (p *Portal) CreateJob(ctx context.Context, in dto.JobInput) Result {
	d := p.decide(PathCreateJob)
	if !d.Allowed() {
		return Result{Decision: d}
	}
	if errs := p.check(in); errs != nil {
		return invalid(d, errs)
	}
	if _, err := p.api.Post(ctx, "/jobs", in); err != nil {
		return Result{Decision: d, Feedback: failed(gateway.Message(err, "Failed to create job. Please try again."))}
	}
	return Result{Decision: d, Feedback: succeeded("Job posted successfully! Redirecting..."), Next: PathMyJobs}
}

// ApplicantsPage shows who applied to one of the employer's jobs.
type ApplicantsPage struct {
	portal *Portal
	JobID  string
	State
	// Job is nil when the detail could not be fetched; the list still shows.
	Job        *models.Job
	Applicants []models.Application
}

// Applicants returns the applicant view for jobID.
func (p *Portal) Applicants(jobID string) *ApplicantsPage {
	return &ApplicantsPage{portal: p, JobID: jobID}
}

// Load fetches the job detail and its applicants concurrently.
func (pg *ApplicantsPage) Load(ctx context.Context) guard.Decision {
	const fallback = "Failed to load applicants. Please try again."
	p := pg.portal
	pg.Decision = p.decide(ApplicantsPath(pg.JobID))
	pg.Job, pg.Applicants, pg.Err = nil, []models.Application{}, ""
	if !pg.Decision.Allowed() {
		return pg.Decision
	}

	base := "/jobs/" + url.PathEscape(pg.JobID)
	var (
		job  *models.Job
		apps []models.Application
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		resp, err := p.api.Get(gctx, base)
		if err != nil {
			p.logger.Info("job detail unavailable", slog.String("job_id", pg.JobID), slog.String("error", err.Error()))
			return nil
		}
		var j models.Job
		if ok, err := resp.Object(&j, gateway.DataPath, gateway.Root); err == nil && ok {
			job = &j
		}
		return nil
	})
	g.Go(func() error {
		resp, err := p.api.Get(gctx, base+"/applicants")
		if err != nil {
			return err
		}
		apps, err = gateway.DecodeList[models.Application](resp.Body, "applicants")
		return err
	})
	if err := g.Wait(); err != nil {
		pg.Err = gateway.Message(err, fallback)
		return pg.Decision
	}
	pg.Job, pg.Applicants = job, apps
	return pg.Decision
}

// AppliedJobsPage lists the signed-in user's applications.
type AppliedJobsPage struct {
	portal *Portal
	State
	Applications []models.Application
}

// AppliedJobs returns the applied-jobs view.
func (p *Portal) AppliedJobs() *AppliedJobsPage {
	return &AppliedJobsPage{portal: p}
}

// Load fetches the caller's applications.
func (pg *AppliedJobsPage) Load(ctx context.Context) guard.Decision {
	pg.Applications, pg.Decision, pg.Err = loadList[models.Application](ctx, pg.portal, PathAppliedJobs,
		"/users/applied-jobs", "appliedJobs", "Failed to load applied jobs. Please try again.")
	return pg.Decision
}

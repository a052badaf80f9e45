package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hongminglow/jobportal/internal/guard"
	"github.com/hongminglow/jobportal/internal/models"
	"github.com/hongminglow/jobportal/internal/portal"
)

// Colours follow the usual terminal palette: green for success, red for
// errors, yellow for warnings and grey for secondary text.
const (
	colorSuccess = lipgloss.Color("82")
	colorError   = lipgloss.Color("196")
	colorWarning = lipgloss.Color("220")
	colorDim     = lipgloss.Color("242")
	colorAccent  = lipgloss.Color("39")
)

type styles struct {
	success lipgloss.Style
	failure lipgloss.Style
	warning lipgloss.Style
	dim     lipgloss.Style
	title   lipgloss.Style
	heading lipgloss.Style
}

// newStyles binds the styles to out so colour is only emitted when out is
// a terminal.
func newStyles(out io.Writer) styles {
	r := lipgloss.NewRenderer(out)
	return styles{
		success: r.NewStyle().Foreground(colorSuccess).Bold(true),
		failure: r.NewStyle().Foreground(colorError).Bold(true),
		warning: r.NewStyle().Foreground(colorWarning),
		dim:     r.NewStyle().Foreground(colorDim),
		title:   r.NewStyle().Bold(true),
		heading: r.NewStyle().Foreground(colorAccent).Bold(true).Underline(true),
	}
}

// printer writes views to the terminal.
type printer struct {
	out    io.Writer
	styles styles
	clean  *sanitizer
}

func newPrinter(out io.Writer) *printer {
	return &printer{out: out, styles: newStyles(out), clean: newSanitizer()}
}

func (p *printer) line(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *printer) blank() {
	fmt.Fprintln(p.out)
}

func (p *printer) heading(text string) {
	p.line("%s", p.styles.heading.Render(text))
}

func (p *printer) success(msg string) {
	p.line("%s", p.styles.success.Render("✓ "+p.clean.Text(msg)))
}

func (p *printer) failure(msg string) {
	p.line("%s", p.styles.failure.Render("✗ "+p.clean.Text(msg)))
}

func (p *printer) warning(msg string) {
	p.line("%s", p.styles.warning.Render(msg))
}

func (p *printer) dim(format string, args ...any) {
	p.line("%s", p.styles.dim.Render(fmt.Sprintf(format, args...)))
}

// field prints an aligned "label: value" pair, skipping empty values.
func (p *printer) field(label, value string) {
	value = p.clean.Text(value)
	if value == "" {
		return
	}
	p.line("  %s %s", p.styles.dim.Render(fmt.Sprintf("%-12s", label+":")), value)
}

func (p *printer) feedback(fb *portal.Feedback) {
	if fb == nil {
		return
	}
	if fb.Kind == portal.Success {
		p.success(fb.Message)
		return
	}
	p.failure(fb.Message)
}

func (p *printer) invalid(errs []portal.FieldError) {
	for _, fe := range errs {
		p.failure(fe.Message)
	}
}

// decision explains a guard outcome that did not allow the view.
func (p *printer) decision(d guard.Decision) {
	switch {
	case d.Pending():
		p.dim("Loading...")
	case d.Reason == guard.Unauthenticated:
		p.warning("Please log in to continue.")
		p.dim("Run `jobportal login` first.")
	case d.Reason == guard.Unauthorized:
		p.failure("You do not have access to this page.")
	}
}

func (p *printer) jobs(jobs []models.Job, empty string) {
	if len(jobs) == 0 {
		p.dim("%s", empty)
		return
	}
	for i, job := range jobs {
		if i > 0 {
			p.blank()
		}
		p.job(job)
	}
}

func (p *printer) job(job models.Job) {
	p.line("%s %s", p.styles.title.Render(p.clean.Text(job.Title)), p.styles.dim.Render("["+job.ID+"]"))
	p.field("Company", job.Company)
	p.field("Location", job.LocationOr())
	p.field("Type", job.JobType)
	salary := job.SalaryRange
	if salary == "" {
		salary = string(job.Salary)
	}
	p.field("Salary", salary)
	if len(job.Requirements) > 0 {
		p.field("Requires", job.Requirements.String())
	}
	if job.CreatedBy != nil && job.CreatedBy.Name != "" {
		p.field("Posted by", job.CreatedBy.Name)
	}
	p.field("Posted", job.CreatedAt.DateOr(""))
	if desc := p.clean.Block(job.Description); desc != "" {
		for _, l := range strings.Split(desc, "\n") {
			p.line("    %s", l)
		}
	}
}

func (p *printer) applications(apps []models.Application, empty string) {
	if len(apps) == 0 {
		p.dim("%s", empty)
		return
	}
	for i, app := range apps {
		if i > 0 {
			p.blank()
		}
		title := "Unknown job"
		if app.Job != nil && app.Job.Title != "" {
			title = app.Job.Title
		}
		p.line("%s %s", p.styles.title.Render(p.clean.Text(title)), p.status(app.Status))
		if app.Job != nil {
			p.field("Company", app.Job.Company)
		}
		if app.Applicant != nil {
			p.field("Applicant", app.Applicant.Name)
			p.field("Email", app.Applicant.Email)
			if len(app.Applicant.Skills) > 0 {
				p.field("Skills", app.Applicant.Skills.String())
			}
			p.field("Resume", app.Applicant.Resume)
		}
		p.field("Applied", app.AppliedAt.DateOr(""))
	}
}

func (p *printer) status(status string) string {
	label := "(" + p.clean.Text(status) + ")"
	switch status {
	case models.StatusAccepted:
		return p.styles.success.Render(label)
	case models.StatusRejected:
		return p.styles.failure.Render(label)
	default:
		return p.styles.warning.Render(label)
	}
}

func (p *printer) users(users []models.Identity, empty string) {
	if len(users) == 0 {
		p.dim("%s", empty)
		return
	}
	for _, u := range users {
		state := p.styles.success.Render("active")
		if u.Blocked {
			state = p.styles.failure.Render("blocked")
		}
		p.line("%s %s %s %s", p.styles.title.Render(p.clean.Text(u.DisplayName())), p.styles.dim.Render("["+u.ID+"]"),
			p.clean.Text(string(u.Role)), state)
		p.field("Email", u.Email)
		p.field("Company", u.Company)
		p.field("Joined", u.CreatedAt.DateOr(""))
	}
}

func (p *printer) identity(ident models.Identity) {
	p.line("%s %s", p.styles.title.Render(p.clean.Text(ident.DisplayName())), p.styles.dim.Render("("+string(ident.Role)+")"))
	p.field("Email", ident.Email)
	p.field("Company", ident.Company)
	if len(ident.Skills) > 0 {
		p.field("Skills", ident.Skills.String())
	}
	p.field("Experience", ident.Experience)
	p.field("Education", ident.Education)
	p.field("Resume", ident.Resume)
	p.field("Bio", ident.Bio)
}

func (p *printer) nav(items []portal.NavItem, greeting string) {
	labels := make([]string, 0, len(items))
	for _, it := range items {
		labels = append(labels, it.Label+" "+p.styles.dim.Render(it.Path))
	}
	p.line("%s", strings.Join(labels, "  |  "))
	if greeting != "" {
		p.dim("Signed in as %s", p.clean.Text(greeting))
	}
}

// Package portal holds one view model per screen of the job portal. A view
// model consults the guard, talks to the backend through the gateway and
// keeps its own error and feedback state; rendering is left to the caller.
package portal

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hongminglow/jobportal/internal/gateway"
	"github.com/hongminglow/jobportal/internal/guard"
	"github.com/hongminglow/jobportal/internal/session"
)

// API is the backend surface the views use.
type API interface {
	Get(ctx context.Context, path string) (*gateway.Response, error)
	Post(ctx context.Context, path string, body any) (*gateway.Response, error)
	Put(ctx context.Context, path string, body any) (*gateway.Response, error)
	Patch(ctx context.Context, path string, body any) (*gateway.Response, error)
}

// Portal builds view models bound to one backend and one session.
type Portal struct {
	api      API
	session  *session.Store
	validate *validator.Validate
	logger   *slog.Logger
}

// New returns a Portal.
func New(api API, store *session.Store, logger *slog.Logger) *Portal {
	if logger == nil {
		logger = slog.Default()
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return &Portal{api: api, session: store, validate: v, logger: logger}
}

// Session exposes the store the views are bound to.
func (p *Portal) Session() *session.Store {
	return p.session
}

// FeedbackKind colours a Feedback.
type FeedbackKind string

const (
	Success FeedbackKind = "success"
	Failure FeedbackKind = "error"
)

// Feedback is the inline message shown after an action.
type Feedback struct {
	Kind    FeedbackKind
	Message string
}

func succeeded(msg string) *Feedback { return &Feedback{Kind: Success, Message: msg} }
func failed(msg string) *Feedback    { return &Feedback{Kind: Failure, Message: msg} }

// State is the part every list view shares.
type State struct {
	Decision guard.Decision
	// Err is the inline load error; empty when the last load succeeded.
	Err string
	// Feedback is the outcome of the last action, if any.
	Feedback *Feedback
}

// FieldError is one failed form rule.
type FieldError struct {
	Field   string
	Message string
}

// Result is the outcome of a form submission or an action.
type Result struct {
	Decision guard.Decision
	Feedback *Feedback
	Invalid  []FieldError
	// Next is where the view navigates after success.
	Next string
}

// OK reports a successful action.
func (r Result) OK() bool {
	return r.Feedback != nil && r.Feedback.Kind == Success
}

func (p *Portal) decide(path string) guard.Decision {
	return guard.Evaluate(guard.RequirementFor(path), p.session.Snapshot())
}

// check runs the form rules and converts failures into messages.
func (p *Portal) check(form any) []FieldError {
	err := p.validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "form", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return out
}

func invalid(d guard.Decision, errs []FieldError) Result {
	return Result{Decision: d, Invalid: errs, Feedback: failed(errs[0].Message)}
}

var fieldLabels = map[string]string{
	"name":        "Name",
	"email":       "Email",
	"password":    "Password",
	"role":        "Role",
	"title":       "Job title",
	"company":     "Company",
	"location":    "Location",
	"jobType":     "Job type",
	"salaryRange": "Salary range",
	"description": "Description",
	"resume":      "Resume URL",
}

func fieldMessage(fe validator.FieldError) string {
	label, ok := fieldLabels[fe.Field()]
	if !ok {
		label = fe.Field()
	}
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "email":
		return "Please enter a valid email address"
	case "min":
		return label + " must be at least " + fe.Param() + " characters"
	case "oneof":
		return label + " must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "url":
		return label + " must be a valid URL"
	default:
		return label + " is invalid"
	}
}

// loadList fetches a collection for a guarded view.
func loadList[T any](ctx context.Context, p *Portal, path, endpoint, resource, fallback string) ([]T, guard.Decision, string) {
	d := p.decide(path)
	if !d.Allowed() {
		return []T{}, d, ""
	}
	resp, err := p.api.Get(ctx, endpoint)
	if err != nil {
		p.logger.Info("load failed", slog.String("view", path), slog.String("error", err.Error()))
		return []T{}, d, gateway.Message(err, fallback)
	}
	items, err := gateway.DecodeList[T](resp.Body, resource)
	if err != nil {
		p.logger.Warn("decode failed", slog.String("view", path), slog.String("error", err.Error()))
		return []T{}, d, fallback
	}
	return items, d, ""
}

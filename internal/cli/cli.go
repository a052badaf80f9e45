// Package cli is the terminal front end of the job portal. Each command
// maps to one portal view; the interactive shell runs the same commands
// against a session that lives until the shell exits.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/hongminglow/jobportal/internal/guard"
	"github.com/hongminglow/jobportal/internal/portal"
	"github.com/hongminglow/jobportal/internal/session"
)

// ErrFailed reports a command whose failure has already been printed.
var ErrFailed = errors.New("command failed")

// ErrUnknownCommand is returned for a command name that does not exist.
var ErrUnknownCommand = errors.New("unknown command")

// Options configures an App.
type Options struct {
	In          io.Reader
	Out         io.Writer
	Logger      *slog.Logger
	HistoryPath string
}

// App dispatches commands to portal views and prints the result.
type App struct {
	portal      *portal.Portal
	session     *session.Store
	out         *printer
	prompter    Prompter
	logger      *slog.Logger
	historyPath string
	commands    []command
}

type command struct {
	name    string
	usage   string
	summary string
	minArgs int
	maxArgs int
	run     func(ctx context.Context, args []string) error
}

// New returns an App bound to p. In and Out default to the process's
// standard streams.
func New(p *portal.Portal, opts Options) *App {
	in, out := opts.In, opts.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{
		portal:      p,
		session:     p.Session(),
		out:         newPrinter(out),
		prompter:    newLinePrompter(in, out),
		logger:      logger,
		historyPath: opts.HistoryPath,
	}
	a.commands = a.commandTable()
	return a
}

// Run executes one invocation. No arguments prints the usage.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.usage()
		return nil
	}
	return a.Dispatch(ctx, args)
}

// Dispatch runs a single command line split into fields.
func (a *App) Dispatch(ctx context.Context, args []string) error {
	name := args[0]
	if name == "-h" || name == "--help" {
		name = "help"
	}
	i := slices.IndexFunc(a.commands, func(c command) bool { return c.name == name })
	if i < 0 {
		a.out.failure(fmt.Sprintf("Unknown command %q.", name))
		a.out.dim("Run `jobportal help` for a list of commands.")
		return fmt.Errorf("%w %q: %w", ErrUnknownCommand, name, ErrFailed)
	}
	cmd := a.commands[i]
	rest := args[1:]
	if len(rest) < cmd.minArgs || len(rest) > cmd.maxArgs {
		a.out.failure("Usage: jobportal " + cmd.usage)
		return ErrFailed
	}
	a.logger.Debug("dispatch command", slog.String("command", name), slog.Int("args", len(rest)))
	return cmd.run(ctx, rest)
}

func (a *App) usage() {
	a.out.heading("Job Portal")
	a.out.line("Usage: jobportal <command> [arguments]")
	a.out.blank()
	width := 0
	for _, c := range a.commands {
		width = max(width, len(c.usage))
	}
	for _, c := range a.commands {
		a.out.line("  %-*s  %s", width, c.usage, a.out.styles.dim.Render(c.summary))
	}
}

// loaded reports the outcome of a list view load.
func (a *App) loaded(d guard.Decision, loadErr string) error {
	if !d.Allowed() {
		a.out.decision(d)
		return ErrFailed
	}
	if loadErr != "" {
		a.out.failure(loadErr)
		return ErrFailed
	}
	return nil
}

// result prints the outcome of a form or an action.
func (a *App) result(res portal.Result) error {
	if !res.Decision.Allowed() {
		a.out.decision(res.Decision)
		return ErrFailed
	}
	if len(res.Invalid) > 0 {
		a.out.invalid(res.Invalid)
		return ErrFailed
	}
	a.out.feedback(res.Feedback)
	if !res.OK() {
		return ErrFailed
	}
	return nil
}

// allowed checks a view's requirement before prompting for its form.
func (a *App) allowed(path string) bool {
	d := guard.Evaluate(guard.RequirementFor(path), a.session.Snapshot())
	if !d.Allowed() {
		a.out.decision(d)
		return false
	}
	return true
}

func (a *App) promptLabel() string {
	if name := portal.Greeting(a.session.Snapshot()); name != "" {
		return "jobportal (" + name + ")> "
	}
	return "jobportal> "
}

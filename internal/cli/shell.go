package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
)

type historian interface {
	AppendHistory(item string)
}

func (a *App) shell(ctx context.Context, _ []string) error {
	return a.Shell(ctx)
}

// Shell runs the interactive session with line editing and history.
func (a *App) Shell(ctx context.Context) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(a.complete)

	a.loadHistory(line)
	defer a.saveHistory(line)

	return a.Interact(ctx, line)
}

// Interact reads commands from p until EOF, `exit` or ctx is done. Command
// failures are printed and the loop carries on.
func (a *App) Interact(ctx context.Context, p Prompter) error {
	prev := a.prompter
	a.prompter = p
	defer func() { a.prompter = prev }()

	a.out.dim("Type `help` for commands, `exit` to quit.")
	for ctx.Err() == nil {
		input, err := p.Prompt(a.promptLabel())
		switch {
		case errors.Is(err, liner.ErrPromptAborted):
			continue
		case errors.Is(err, io.EOF):
			a.out.blank()
			return nil
		case err != nil:
			return fmt.Errorf("read command: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if h, ok := p.(historian); ok {
			h.AppendHistory(input)
		}

		args := strings.Fields(input)
		switch args[0] {
		case "exit", "quit":
			return nil
		case "shell":
			a.out.dim("Already in the shell.")
			continue
		}
		if err := a.Dispatch(ctx, args); err != nil && !errors.Is(err, ErrFailed) {
			if errors.Is(err, io.EOF) {
				a.out.blank()
				return nil
			}
			a.logger.Warn("command error", slog.String("command", args[0]), slog.String("error", err.Error()))
			a.out.failure(err.Error())
		}
	}
	return nil
}

func (a *App) complete(line string) []string {
	var out []string
	for _, c := range a.commands {
		if strings.HasPrefix(c.name, line) {
			out = append(out, c.name)
		}
	}
	return out
}

func (a *App) loadHistory(line *liner.State) {
	if a.historyPath == "" {
		return
	}
	f, err := os.Open(a.historyPath)
	if err != nil {
		return
	}
	defer f.Close()
	if _, err := line.ReadHistory(f); err != nil {
		a.logger.Debug("read history", slog.String("error", err.Error()))
	}
}

func (a *App) saveHistory(line *liner.State) {
	if a.historyPath == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(a.historyPath), 0o700); err != nil {
		a.logger.Debug("create history dir", slog.String("error", err.Error()))
		return
	}
	f, err := os.OpenFile(a.historyPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		a.logger.Debug("open history", slog.String("error", err.Error()))
		return
	}
	defer f.Close()
	if _, err := line.WriteHistory(f); err != nil {
		a.logger.Debug("write history", slog.String("error", err.Error()))
	}
}

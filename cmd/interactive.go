package cmd

import (
	"context"
	"fmt"

	"github.com/iksnae/cc-fi/internal"
	"github.com/iksnae/cc-fi/internal/format"
	"github.com/iksnae/cc-fi/internal/picker"
)

// interactive lets the user choose a session in the picker and prints the
// command that resumes it
func (a *app) interactive(ctx context.Context, search string, force bool) error {
	// log lines would tear through the picker's screen
	internal.SetLogLevel(internal.LogLevelQuiet)

	sessions, err := a.sessions(ctx, force)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		_, _ = fmt.Fprintln(a.out, noSessionsMessage)
		return nil
	}

	width := format.TerminalWidth(a.cfg.Display.DefaultWidth)
	// fzf reads a pipe, so colors must be forced
	f := newFormatter(a.cfg, a.out, true)

	header := append(f.InstructionHeader(), f.Header(width), f.Separator(width))
	entries := picker.BuildEntries(sessions, func(s internal.Session) string {
		return f.Row(s, width)
	}, a.cfg.Picker.SearchableLimit)

	p := newPicker(a.cfg, previewCommand(), width, search)
	id, ok, err := p.Pick(ctx, header, entries)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	selected, found := internal.FindSessionByID(sessions, id)
	if !found {
		return fmt.Errorf("selected session %s is no longer available", id)
	}
	_, _ = fmt.Fprintf(a.out, "\nTo resume this session, run:\n\n  %s\n\n", selected.ResumeCommand())
	return nil
}

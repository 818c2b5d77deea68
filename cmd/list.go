package cmd

import (
	"context"
	"fmt"

	"github.com/iksnae/cc-fi/internal"
	"github.com/iksnae/cc-fi/internal/export"
	"github.com/iksnae/cc-fi/internal/format"
)

const noSessionsMessage = "No sessions found."

// list prints the sessions matching search as a table, or exports them in
// another format
func (a *app) list(ctx context.Context, search string, force bool, outputFormat string) error {
	var exporter export.Exporter
	if outputFormat != formatTable {
		var err error
		if exporter, err = export.NewExporter(outputFormat); err != nil {
			return err
		}
	}

	// the spinner only makes sense when a person is watching the table
	if exporter == nil {
		a.cache.WithProgress(internal.ShowProgress)
	}
	sessions, err := a.sessions(ctx, force)
	if err != nil {
		return err
	}
	sessions = internal.FilterSessions(sessions, search)
	internal.LogDebug("%d sessions match %q", len(sessions), search)

	if exporter != nil {
		if err := exporter.Export(sessions, a.out); err != nil {
			return fmt.Errorf("failed to export sessions: %w", err)
		}
		return nil
	}

	if len(sessions) == 0 {
		_, _ = fmt.Fprintln(a.out, noSessionsMessage)
		return nil
	}

	f := newFormatter(a.cfg, a.out, false)
	for _, line := range f.Table(sessions, format.TerminalWidth(a.cfg.Display.DefaultWidth)) {
		_, _ = fmt.Fprintln(a.out, line)
	}
	return nil
}

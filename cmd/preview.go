package cmd

import (
	"context"
	"fmt"

	"github.com/iksnae/cc-fi/internal"
	"github.com/iksnae/cc-fi/internal/format"
)

// preview renders the detail panel fzf shows for the highlighted session.
// It runs once per cursor move, so it reads the cache the picker just wrote.
func (a *app) preview(ctx context.Context, id, query string) error {
	internal.SetLogLevel(internal.LogLevelQuiet)

	sessions, err := a.sessions(ctx, false)
	if err != nil {
		return err
	}

	s, ok := internal.FindSessionByID(sessions, id)
	if !ok {
		_, _ = fmt.Fprintf(a.out, "Session not found: %s\n", id)
		return nil
	}

	f := newFormatter(a.cfg, a.out, true)
	_, _ = fmt.Fprintln(a.out, f.RenderDetail(s, query, format.PreviewWidth(a.cfg.Display.DefaultWidth)))
	return nil
}

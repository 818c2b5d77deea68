package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/iksnae/cc-fi/internal"
	"github.com/iksnae/cc-fi/internal/format"
	"github.com/iksnae/cc-fi/internal/picker"
	"github.com/kballard/go-shellquote"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

const formatTable = "table"

var (
	// isInteractive decides between the picker and a plain listing
	isInteractive = func(w io.Writer) bool {
		f, ok := w.(*os.File)
		return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
	}

	// newPicker builds the interactive picker. self is the preview command
	// prefix and query prefills the search box.
	newPicker = func(cfg internal.Config, self string, width int, query string) picker.Picker {
		p := picker.NewFzfPicker(cfg.Picker, self, width)
		p.Query = query
		return p
	}
)

// app holds what every mode needs: the resolved configuration, the cache
// and where to write
type app struct {
	cfg   internal.Config
	cache *internal.CacheManager
	out   io.Writer
}

func newApp(cmd *cobra.Command) (*app, error) {
	path := configPath
	if path == "" {
		path = internal.DefaultConfigPath()
	}
	cfg, err := internal.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	if claudeDir != "" {
		cfg.ClaudeDir = claudeDir
	}
	// unknown names fall back to both when the deduplicator is built
	if strategy != "" {
		cfg.DedupStrategy = strategy
	}

	store, err := internal.NewCacheStore(cfg.Cache)
	if err != nil {
		return nil, err
	}
	indexer := internal.NewFileIndexer(cfg.ProjectsDir(), internal.NewTranscriptParser(cfg.Display))

	return &app{
		cfg:   cfg,
		cache: internal.NewCacheManager(store, indexer, cfg),
		out:   cmd.OutOrStdout(),
	}, nil
}

func (a *app) clearCache() error {
	if err := a.cache.Invalidate(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	_, _ = fmt.Fprintln(a.out, "Cache cleared.")
	return nil
}

func (a *app) sessions(ctx context.Context, force bool) ([]internal.Session, error) {
	sessions, err := a.cache.GetWithCache(ctx, force)
	if err != nil {
		return nil, fmt.Errorf("failed to load sessions: %w", err)
	}
	return sessions, nil
}

// previewCommand returns the shell command fzf runs to render a preview. The
// flags that change where sessions come from are passed through so the
// preview sees the same sessions as the list.
func previewCommand() string {
	self, err := os.Executable()
	if err != nil {
		self = os.Args[0]
	}

	args := []string{self}
	for _, f := range []struct{ name, value string }{
		{"config", configPath},
		{"claude-dir", claudeDir},
		{"strategy", strategy},
	} {
		if f.value != "" {
			args = append(args, "--"+f.name, f.value)
		}
	}
	return shellquote.Join(args...)
}

func newFormatter(cfg internal.Config, w io.Writer, forceColor bool) *format.Formatter {
	return format.New(cfg.Display, cfg.Search, format.NewRenderer(w, forceColor))
}

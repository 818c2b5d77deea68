package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/iksnae/cc-fi/internal"
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	listMode     bool
	rebuild      bool
	clearCache   bool
	previewID    string
	previewQuery string
	outputFormat string
	configPath   string
	claudeDir    string
	strategy     string
	version      string = "dev"
	commit       string = "unknown"
	date         string = "unknown"
)

// rootCmd is the whole program: cc-fi has no subcommands, only modes
var rootCmd = &cobra.Command{
	Use:   "cc-fi [search]",
	Short: "Find and resume Claude Code sessions",
	Long: `Find and resume Claude Code sessions.

cc-fi indexes the conversation transcripts Claude Code keeps under
~/.claude/projects, removes duplicate sessions, and lets you pick one in
fzf with a live preview. The chosen session's resume command is printed.

Without a terminal on stdout, or with --list, sessions are printed as a
table (or exported with --format) instead.`,
	Example: `  cc-fi                    Interactive mode (default)
  cc-fi login              Interactive mode, search prefilled
  cc-fi -l                 List all sessions
  cc-fi -l search-term     List filtered sessions
  cc-fi -l --format json   Export sessions as JSON
  cc-fi -r                 Force rebuild cache`,
	Args:          cobra.MaximumNArgs(1),
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
	RunE: runRoot,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runRoot(cmd *cobra.Command, args []string) error {
	search := ""
	if len(args) > 0 {
		search = args[0]
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	switch {
	case clearCache:
		return a.clearCache()
	case cmd.Flags().Changed("preview"):
		return a.preview(cmd.Context(), previewID, previewQuery)
	case listMode || outputFormat != formatTable || !isInteractive(cmd.OutOrStdout()):
		return a.list(cmd.Context(), search, rebuild, outputFormat)
	default:
		return a.interactive(cmd.Context(), search, rebuild)
	}
}

func init() {
	flags := rootCmd.Flags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	flags.BoolVarP(&listMode, "list", "l", false, "List sessions instead of interactive mode")
	flags.BoolVarP(&rebuild, "rebuild", "r", false, "Force rebuild cache")
	flags.BoolVar(&clearCache, "clear-cache", false, "Clear cache and exit")
	flags.StringVarP(&outputFormat, "format", "f", formatTable, "List output format (table, json, jsonl, yaml, md)")
	flags.StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/cc-fi/config.yaml)")
	flags.StringVar(&claudeDir, "claude-dir", "", "Claude Code data directory (default ~/.claude)")
	flags.StringVar(&strategy, "strategy", "", "Deduplication strategy (none, session_id, fingerprint, both)")

	flags.StringVar(&previewID, "preview", "", "Render the preview panel for a session")
	flags.StringVar(&previewQuery, "preview-query", "", "Query to highlight in the preview panel")
	_ = flags.MarkHidden("preview")
	_ = flags.MarkHidden("preview-query")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

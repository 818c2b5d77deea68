package internal

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	progressStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
)

// ProgressFunc runs fn while reporting message to the user
type ProgressFunc func(ctx context.Context, message string, fn func() error) error

// RunSilently is a ProgressFunc that reports nothing
func RunSilently(_ context.Context, _ string, fn func() error) error {
	return fn()
}

// ShowProgress runs a spinner with a message using gum if available, otherwise simple output
func ShowProgress(ctx context.Context, message string, fn func() error) error {
	// Spinners would garble redirected output, and quiet mode means quiet
	if logLevel == LogLevelQuiet || !isTerminal(os.Stderr) {
		LogDebug(message)
		return fn()
	}

	if gumAvailable() {
		return showProgressWithGum(ctx, os.Stderr, message, fn)
	}
	return showProgressSimple(ctx, os.Stderr, message, fn)
}

// showProgressWithGum uses gum spinner for progress
func showProgressWithGum(ctx context.Context, w io.Writer, message string, fn func() error) error {
	spinCtx, stop := context.WithCancel(ctx)
	defer stop()

	cmd := exec.CommandContext(spinCtx, "gum", "spin", "--spinner", "dot", "--title", message, "--", "sh", "-c", "while true; do sleep 0.1; done")
	cmd.Stderr = w
	cmd.Stdout = w
	if err := cmd.Start(); err != nil {
		return showProgressSimple(ctx, w, message, fn)
	}
	spinnerDone := make(chan struct{})
	go func() {
		defer close(spinnerDone)
		_ = cmd.Wait() // ends when spinCtx is canceled
	}()

	err := runWithContext(ctx, fn)
	stop()
	<-spinnerDone
	return report(w, message, err)
}

// showProgressSimple uses a simple text-based spinner
func showProgressSimple(ctx context.Context, w io.Writer, message string, fn func() error) error {
	spinnerChars := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	stop := make(chan struct{})
	spinnerDone := make(chan struct{})

	go func() {
		defer close(spinnerDone)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			case <-ticker.C:
				_, _ = fmt.Fprintf(w, "\r%s %s", progressStyle.Render(spinnerChars[i%len(spinnerChars)]), message)
			}
		}
	}()

	err := runWithContext(ctx, fn)
	close(stop)
	<-spinnerDone
	return report(w, message, err)
}

// runWithContext runs fn and reports the context error on cancellation. It
// always waits for fn to return, so fn must honour ctx itself.
func runWithContext(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		<-done
		return ctx.Err()
	}
}

func report(w io.Writer, message string, err error) error {
	mark := successStyle.Render("✓")
	if err != nil {
		mark = errorStyle.Render("✗")
	}
	_, _ = fmt.Fprintf(w, "\r%s %s\n", mark, message)
	return err
}

// gumAvailable checks if gum is available
func gumAvailable() bool {
	_, err := exec.LookPath("gum")
	return err == nil
}

// isTerminal checks if the writer is a terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Package picker drives an external fuzzy finder over a list of sessions.
//
// Each session becomes one input line made of three fields separated by the
// ASCII unit separator:
//
//	visible row + padding  US  searchable text  US  session id
//
// The padding pushes the searchable text past the right edge of the screen,
// and since the finder never scrolls horizontally it is matched but never
// shown. The id is the last field, which the preview command and DecodeID read.
package picker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/cc-fi/internal"
	"github.com/iksnae/cc-fi/internal/textutil"
)

// Separator splits the fields of an encoded line
const Separator = "\x1f"

const installHint = "Install with: brew install fzf (macOS) or apt install fzf (Linux)"

// Entry is one selectable line: what is shown, what is matched, and which
// session it stands for
type Entry struct {
	Visible    string
	Searchable string
	ID         string
}

// Picker lets the user choose one entry. ok is false when the user dismissed
// the picker without choosing.
type Picker interface {
	Pick(ctx context.Context, header []string, entries []Entry) (id string, ok bool, err error)
}

// BuildEntries renders one entry per session. The searchable text holds the
// session fields and conversation, cut to limit runes when limit is positive.
func BuildEntries(sessions []internal.Session, render func(internal.Session) string, limit int) []Entry {
	entries := make([]Entry, 0, len(sessions))
	for _, s := range sessions {
		entries = append(entries, Entry{
			Visible:    render(s),
			Searchable: searchableText(s, limit),
			ID:         s.SessionID,
		})
	}
	return entries
}

func searchableText(s internal.Session, limit int) string {
	text := strings.Join([]string{
		s.ProjectName,
		s.Cwd,
		s.GitBranch,
		s.FirstMessageFull,
		s.LastMessageFull,
		s.FullContent,
	}, " ")
	text = textutil.NormalizeWhitespace(strings.ReplaceAll(text, Separator, " "))
	if limit > 0 {
		text = textutil.Prefix(text, limit)
	}
	return text
}

// Encode renders e as one input line, padding the visible part to at least
// width cells so the searchable field starts off screen
func Encode(e Entry, width int) string {
	visible := strings.ReplaceAll(e.Visible, "\n", " ")
	pad := max(1, width-lipgloss.Width(visible)+1)
	return visible + strings.Repeat(" ", pad) + Separator + e.Searchable + Separator + e.ID
}

// DecodeID returns the id carried by an encoded line, or "" if it has none
func DecodeID(line string) string {
	line = strings.TrimRight(line, "\r\n")
	i := strings.LastIndex(line, Separator)
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(line[i+len(Separator):])
}

// FzfPicker runs fzf with a preview pane backed by PreviewCommand
type FzfPicker struct {
	Binary         string
	PreviewCommand string
	PreviewPercent int
	// Query prefills the search box
	Query string
	// Width is the number of cells the visible part is padded to
	Width  int
	Stderr io.Writer
}

// NewFzfPicker creates a picker for cfg. self is the command line that
// renders a preview, and receives the session id and current query.
func NewFzfPicker(cfg internal.PickerConfig, self string, width int) *FzfPicker {
	return &FzfPicker{
		Binary:         cfg.Binary,
		PreviewCommand: self + " --preview {-1} --preview-query {q}",
		PreviewPercent: cfg.PreviewPercent,
		Width:          width,
		Stderr:         os.Stderr,
	}
}

// Args returns the fzf command line arguments for a header of headerLines lines
func (p *FzfPicker) Args(headerLines int) []string {
	args := []string{
		"--ansi",
		"--exact",
		"--no-hscroll",
		"--delimiter=" + Separator,
		fmt.Sprintf("--header-lines=%d", headerLines),
		"--layout=reverse",
		"--height=100%",
		fmt.Sprintf("--preview-window=down:%d%%", p.PreviewPercent),
	}
	if p.PreviewCommand != "" {
		args = append(args, "--preview", p.PreviewCommand)
	}
	if p.Query != "" {
		args = append(args, "--query", p.Query)
	}
	return args
}

// Pick runs fzf over header and entries and returns the chosen id
func (p *FzfPicker) Pick(ctx context.Context, header []string, entries []Entry) (string, bool, error) {
	bin, err := exec.LookPath(p.Binary)
	if err != nil {
		return "", false, &internal.ToolMissingError{Tool: p.Binary, Hint: installHint, Err: err}
	}

	var input bytes.Buffer
	for _, line := range header {
		input.WriteString(line)
		input.WriteByte('\n')
	}
	for _, e := range entries {
		input.WriteString(Encode(e, p.Width))
		input.WriteByte('\n')
	}

	var output bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, p.Args(len(header))...)
	cmd.Stdin = &input
	cmd.Stdout = &output
	cmd.Stderr = p.Stderr

	internal.LogDebug("Running %s with %d entries", bin, len(entries))
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", false, ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && dismissed(exitErr.ExitCode()) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to run %s: %w", p.Binary, err)
	}

	id := DecodeID(output.String())
	if id == "" {
		return "", false, nil
	}
	return id, true, nil
}

// dismissed reports whether an fzf exit code means nothing was chosen:
// 1 for no match, 130 for Esc or Ctrl-C
func dismissed(code int) bool {
	return code == 1 || code == 130
}

package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iksnae/cc-fi/internal"
)

// MarkdownExporter exports sessions as a Markdown document, one section per session
type MarkdownExporter struct{}

// Export exports sessions to Markdown format
func (e *MarkdownExporter) Export(sessions []internal.Session, w io.Writer) error {
	_, _ = fmt.Fprintf(w, "# Claude Code sessions\n\n")
	_, _ = fmt.Fprintf(w, "**Sessions:** %d\n\n", len(sessions))

	for i, s := range sessions {
		_, _ = fmt.Fprintf(w, "## %s\n\n", escapeMarkdown(s.ProjectName))
		_, _ = fmt.Fprintf(w, "**Session:** `%s`  \n", s.SessionID)
		_, _ = fmt.Fprintf(w, "**Path:** `%s`  \n", s.Cwd)
		if s.GitBranch != "" {
			_, _ = fmt.Fprintf(w, "**Branch:** `%s`  \n", s.GitBranch)
		}
		_, _ = fmt.Fprintf(w, "**Started:** %s  \n", s.Timestamp.Format(time.RFC3339))
		_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", s.MessageCount)

		if first := strings.TrimSpace(s.FirstMessageFull); first != "" {
			_, _ = fmt.Fprintf(w, "**First:**\n\n%s\n\n", quote(escapeMarkdown(first)))
		}
		if last := strings.TrimSpace(s.LastMessageFull); last != "" {
			_, _ = fmt.Fprintf(w, "**Recent:**\n\n%s\n\n", quote(escapeMarkdown(last)))
		}

		_, _ = fmt.Fprintf(w, "```sh\n%s\n```\n\n", s.ResumeCommand())

		// Add horizontal rule after each session (except the last one)
		if i < len(sessions)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

// quote renders text as a Markdown blockquote
func quote(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight("> "+line, " ")
	}
	return strings.Join(lines, "\n")
}

// escapeMarkdown escapes markdown special characters
func escapeMarkdown(text string) string {
	// Basic escaping - preserve code blocks
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			result = append(result, line)
		} else if inCodeBlock {
			result = append(result, line)
		} else {
			// Escape markdown syntax outside code blocks
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}

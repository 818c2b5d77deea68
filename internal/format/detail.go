package format

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/iksnae/cc-fi/internal"
	"github.com/iksnae/cc-fi/internal/textutil"
	"github.com/muesli/reflow/wordwrap"
)

// minWrapWidth keeps wrapping sane in very narrow preview panes
const minWrapWidth = 20

// Wrap normalizes text and wraps it at word boundaries to width visible
// cells. Escape sequences do not count toward the width.
func Wrap(text string, width int) string {
	if width < 1 {
		width = 1
	}
	return wordwrap.String(textutil.NormalizeWhitespace(text), width)
}

// RenderDetail renders the preview panel for a session. With a query, the
// previews are highlighted and exact matches from the full conversation are listed.
func (f *Formatter) RenderDetail(s internal.Session, query string, width int) string {
	width = max(width, minWrapWidth)
	label := func(name string) string {
		return f.styles.Label.Render(fmt.Sprintf("%-10s", name+":"))
	}

	lines := []string{
		label("Session") + s.SessionID,
		label("Project") + f.styles.Project.Render(s.ProjectName),
		label("Path") + f.styles.Path.Render(ShortenPath(s.Cwd, f.home)),
	}
	if s.GitBranch != "" {
		lines = append(lines, label("Branch")+s.GitBranch)
	}
	lines = append(lines,
		label("Time")+f.styles.Time.Render(FormatTimestamp(s.Timestamp))+
			f.styles.Muted.Render(" ("+humanize.RelTime(s.Timestamp, f.now(), "ago", "from now")+")"),
		label("Messages")+humanize.Comma(int64(s.MessageCount)),
		"",
		f.styles.Label.Render("First:"),
		f.preview(s.FirstMessageFull, s.FirstMessage, query, width),
		"",
		f.styles.Label.Render("Recent:"),
		f.preview(s.LastMessageFull, s.LastMessage, query, width),
	)

	if strings.TrimSpace(query) != "" {
		lines = append(lines, "")
		lines = append(lines, f.renderMatches(s.FullContent, query, width)...)
	}

	return strings.Join(lines, "\n")
}

func (f *Formatter) preview(full, short, query string, width int) string {
	text := textutil.NormalizeWhitespace(full)
	if text == "" {
		text = textutil.NormalizeWhitespace(short)
	}
	if text == "" {
		return f.styles.Muted.Render(NoMessage)
	}
	text = textutil.Truncate(text, f.display.DetailLength)
	if query != "" {
		text = f.FuzzyHighlight(text, query)
	}
	return Wrap(text, width)
}

func (f *Formatter) renderMatches(content, query string, width int) []string {
	snippets, omitted := ExactMatchContexts(content, query, f.search.ContextChars, f.search.MaxSnippets)
	total := len(snippets) + omitted
	if total == 0 {
		return []string{f.styles.Muted.Render(fmt.Sprintf("No exact matches for %q in conversation", query))}
	}

	lines := []string{f.styles.Label.Render(fmt.Sprintf("Matches (%s):", humanize.Comma(int64(total))))}
	for _, sn := range snippets {
		rendered := sn.render(func(m string) string { return f.styles.Highlight.Render(m) })
		lines = append(lines, Wrap("• "+rendered, width))
	}
	if omitted > 0 {
		lines = append(lines, f.styles.Muted.Render(fmt.Sprintf("... and %s more", humanize.Comma(int64(omitted)))))
	}
	return lines
}

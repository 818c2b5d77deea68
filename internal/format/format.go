// Package format renders sessions as table rows and detail panels.
package format

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/cc-fi/internal"
	"github.com/iksnae/cc-fi/internal/textutil"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Placeholders for missing text
const (
	NoRecentMessage = "(no recent message)"
	NoFirstMessage  = "(no first message)"
	NoMessage       = "(no message)"
)

const (
	timestampLayout = "Jan 02, 03:04 PM"
	separatorRune   = "─"
	instructions    = "Type to search | ↑↓ Navigate | ↵ Select | Esc Cancel"
	instructionRule = 80
)

// Styles holds the presentation attribute of every column and panel element
type Styles struct {
	Project   lipgloss.Style
	Path      lipgloss.Style
	Time      lipgloss.Style
	Recent    lipgloss.Style
	First     lipgloss.Style
	Muted     lipgloss.Style
	Label     lipgloss.Style
	Highlight lipgloss.Style
}

// NewStyles builds the default palette on r
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Project:   r.NewStyle().Foreground(lipgloss.Color("42")),
		Path:      r.NewStyle().Foreground(lipgloss.Color("39")),
		Time:      r.NewStyle().Foreground(lipgloss.Color("220")),
		Recent:    r.NewStyle().Foreground(lipgloss.Color("183")),
		First:     r.NewStyle().Foreground(lipgloss.Color("147")),
		Muted:     r.NewStyle().Foreground(lipgloss.Color("243")),
		Label:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("62")),
		Highlight: r.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).Underline(true),
	}
}

// NewRenderer returns a renderer writing to w. With forceColor the ANSI 256
// profile is used even when w is not a terminal, as when fzf reads our output.
func NewRenderer(w io.Writer, forceColor bool) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w)
	if forceColor {
		r.SetColorProfile(termenv.ANSI256)
	}
	return r
}

// Formatter renders sessions according to a display configuration
type Formatter struct {
	display internal.DisplayConfig
	search  internal.SearchConfig
	styles  Styles
	home    string
	now     func() time.Time
}

// New creates a Formatter drawing with r
func New(display internal.DisplayConfig, search internal.SearchConfig, r *lipgloss.Renderer) *Formatter {
	home, _ := os.UserHomeDir()
	return &Formatter{
		display: display,
		search:  search,
		styles:  NewStyles(r),
		home:    home,
		now:     time.Now,
	}
}

// WithHome sets the directory ShortenPath abbreviates to ~
func (f *Formatter) WithHome(home string) *Formatter {
	f.home = home
	return f
}

// WithClock sets the clock used for relative times
func (f *Formatter) WithClock(now func() time.Time) *Formatter {
	f.now = now
	return f
}

// Styles returns the formatter palette
func (f *Formatter) Styles() Styles {
	return f.styles
}

// column is one table column: its width and its presentation attribute
type column struct {
	width int
	style lipgloss.Style
}

func (f *Formatter) columns(termWidth int) []column {
	recent, first := f.ComputeMessageWidths(termWidth)
	return []column{
		{width: f.display.ProjectWidth, style: f.styles.Project},
		{width: f.display.PathWidth, style: f.styles.Path},
		{width: f.display.TimeWidth, style: f.styles.Time},
		{width: recent, style: f.styles.Recent},
		{width: first, style: f.styles.First},
	}
}

// ComputeMessageWidths splits the width left over by the fixed columns
// between the recent and first message columns. The second column gets any
// odd character and neither drops below MinMessageWidth.
func (f *Formatter) ComputeMessageWidths(termWidth int) (recent, first int) {
	fixed := f.display.ProjectWidth + f.display.PathWidth + f.display.TimeWidth
	gaps := f.display.ColumnGap * 4
	remaining := termWidth - fixed - gaps - f.display.SafetyMargin

	recent = remaining / 2
	first = remaining - recent
	if recent < f.display.MinMessageWidth {
		recent = f.display.MinMessageWidth
	}
	if first < f.display.MinMessageWidth {
		first = f.display.MinMessageWidth
	}
	return recent, first
}

// fit normalizes text and cuts it to width display cells, padding when pad is set.
// Styling happens after, so escape codes never count toward the width.
func fit(text string, width int, pad bool) string {
	text = textutil.NormalizeWhitespace(text)
	if runewidth.StringWidth(text) > width {
		if width > len(textutil.Ellipsis) {
			text = runewidth.Truncate(text, width, textutil.Ellipsis)
		} else {
			text = runewidth.Truncate(text, width, "")
		}
	}
	if pad {
		text = runewidth.FillRight(text, width)
	}
	return text
}

func (f *Formatter) join(cols []column, cells []string) string {
	gap := strings.Repeat(" ", f.display.ColumnGap)
	parts := make([]string, len(cells))
	for i, cell := range cells {
		last := i == len(cells)-1
		parts[i] = cols[i].style.Render(fit(cell, cols[i].width, !last))
	}
	return strings.Join(parts, gap)
}

// Row renders one session as a table row for a terminal termWidth cells wide
func (f *Formatter) Row(s internal.Session, termWidth int) string {
	recent := strings.TrimSpace(s.LastMessage)
	if recent == "" {
		recent = NoRecentMessage
	}
	first := strings.TrimSpace(s.FirstMessage)
	if first == "" {
		first = NoFirstMessage
	}

	return f.join(f.columns(termWidth), []string{
		s.ProjectName,
		ShortenPath(s.Cwd, f.home),
		FormatTimestamp(s.Timestamp),
		recent,
		first,
	})
}

// Header renders the column titles
func (f *Formatter) Header(termWidth int) string {
	cols := f.columns(termWidth)
	for i := range cols {
		cols[i].style = cols[i].style.Bold(true)
	}
	return f.join(cols, []string{"PROJECT", "PATH", "TIME", "RECENT", "FIRST"})
}

// Separator renders the rule under the header
func (f *Formatter) Separator(termWidth int) string {
	cols := f.columns(termWidth)
	cells := make([]string, len(cols))
	for i, c := range cols {
		cells[i] = strings.Repeat(separatorRune, c.width)
	}
	return f.join(cols, cells)
}

// InstructionHeader returns the key help line and its rule
func (f *Formatter) InstructionHeader() []string {
	return []string{
		f.styles.Muted.Render(instructions),
		f.styles.Muted.Render(strings.Repeat(separatorRune, instructionRule)),
	}
}

// Table renders header, separator and one row per session
func (f *Formatter) Table(sessions []internal.Session, termWidth int) []string {
	lines := make([]string, 0, len(sessions)+2)
	lines = append(lines, f.Header(termWidth), f.Separator(termWidth))
	for _, s := range sessions {
		lines = append(lines, f.Row(s, termWidth))
	}
	return lines
}

// TerminalWidth returns the width of the terminal, consulting COLUMNS first
// and falling back to defaultWidth when nothing is known
func TerminalWidth(defaultWidth int) int {
	if w := envWidth("COLUMNS"); w > 0 {
		return w
	}
	for _, f := range []*os.File{os.Stdout, os.Stderr} {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			return w
		}
	}
	return defaultWidth
}

// PreviewWidth returns the width of the fzf preview pane when running inside one
func PreviewWidth(defaultWidth int) int {
	if w := envWidth("FZF_PREVIEW_COLUMNS"); w > 0 {
		return w
	}
	return TerminalWidth(defaultWidth)
}

func envWidth(name string) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return 0
	}
	w, err := strconv.Atoi(v)
	if err != nil || w <= 0 {
		return 0
	}
	return w
}

// FormatTimestamp renders t in local time, like "Nov 05, 10:00 PM"
func FormatTimestamp(t time.Time) string {
	return t.Local().Format(timestampLayout)
}

// ShortenPath replaces a leading home directory with ~
func ShortenPath(path, home string) string {
	if home == "" || home == "/" {
		return path
	}
	home = strings.TrimSuffix(home, "/")
	if path == home {
		return "~"
	}
	if strings.HasPrefix(path, home+"/") {
		return "~" + path[len(home):]
	}
	return path
}

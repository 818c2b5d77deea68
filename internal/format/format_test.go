package format

import (
	"bytes"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/cc-fi/internal"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ansiEscape = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string {
	return ansiEscape.ReplaceAllString(s, "")
}

func plainFormatter() *Formatter {
	var buf bytes.Buffer
	r := lipgloss.NewRenderer(&buf)
	r.SetColorProfile(termenv.Ascii)
	cfg := internal.DefaultConfig()
	return New(cfg.Display, cfg.Search, r).WithHome("/home/dev")
}

func colorFormatter() *Formatter {
	var buf bytes.Buffer
	cfg := internal.DefaultConfig()
	return New(cfg.Display, cfg.Search, NewRenderer(&buf, true)).WithHome("/home/dev")
}

func TestComputeMessageWidths(t *testing.T) {
	f := plainFormatter()

	tests := []struct {
		name       string
		width      int
		wantRecent int
		wantFirst  int
	}{
		{"wide terminal splits evenly", 200, 53, 54},
		{"even remainder", 201, 54, 54},
		{"narrow terminal clamps", 120, 20, 20},
		{"tiny terminal clamps", 10, 20, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recent, first := f.ComputeMessageWidths(tt.width)
			assert.Equal(t, tt.wantRecent, recent)
			assert.Equal(t, tt.wantFirst, first)
		})
	}
}

func TestRow_FitsTerminalWidth(t *testing.T) {
	f := plainFormatter()
	s := internal.CreateTestSessionWithMessages("row", strings.Repeat("first ", 40), strings.Repeat("recent ", 40))
	s.Cwd = "/home/dev/" + strings.Repeat("deep/", 30)

	for _, width := range []int{160, 200, 300} {
		row := f.Row(s, width)
		assert.LessOrEqual(t, lipgloss.Width(row), width, "width %d", width)
		assert.NotContains(t, row, "\n")
	}

	row := f.Row(s, 200)
	assert.Equal(t, 20+45+16+53+54+4*2, lipgloss.Width(row))
	assert.True(t, strings.HasPrefix(row, "test-project"))
	assert.Contains(t, row, "~/deep/")
	assert.Contains(t, row, "...")
}

func TestRow_ColumnOrder(t *testing.T) {
	f := plainFormatter()
	s := internal.CreateTestSessionWithMessages("order", "opening question", "closing remark")

	row := f.Row(s, 200)
	project := strings.Index(row, "test-project")
	recent := strings.Index(row, "closing remark")
	first := strings.Index(row, "opening question")
	require.True(t, project >= 0 && recent > project && first > recent, "row = %q", row)
}

func TestRow_Placeholders(t *testing.T) {
	f := plainFormatter()
	s := internal.CreateTestSessionWithMessages("empty", "  ", "")

	row := f.Row(s, 200)
	assert.Contains(t, row, NoRecentMessage)
	assert.Contains(t, row, NoFirstMessage)
}

func TestRow_WideRunes(t *testing.T) {
	f := plainFormatter()
	s := internal.CreateTestSessionWithMessages("cjk", strings.Repeat("漢字", 60), "ok")

	row := f.Row(s, 160)
	assert.LessOrEqual(t, lipgloss.Width(row), 160)
}

func TestRow_ColoredEscapesDoNotCountTowardWidth(t *testing.T) {
	f := colorFormatter()
	s := internal.CreateTestSessionWithMessages("c", strings.Repeat("x", 300), strings.Repeat("y", 300))

	row := f.Row(s, 200)
	assert.Contains(t, row, "\x1b[")
	assert.Equal(t, lipgloss.Width(stripANSI(row)), lipgloss.Width(row))
	assert.LessOrEqual(t, lipgloss.Width(row), 200)
}

func TestTable(t *testing.T) {
	f := plainFormatter()
	sessions := []internal.Session{
		internal.CreateTestSession("a"),
		internal.CreateTestSession("b"),
	}

	lines := f.Table(sessions, 200)
	require.Len(t, lines, 4)
	for _, label := range []string{"PROJECT", "PATH", "TIME", "RECENT", "FIRST"} {
		assert.Contains(t, lines[0], label)
	}
	assert.True(t, strings.HasPrefix(lines[1], strings.Repeat("─", 20)))
	assert.Equal(t, 20+45+16+53+54+4*2, lipgloss.Width(lines[1]))
}

func TestInstructionHeader(t *testing.T) {
	lines := plainFormatter().InstructionHeader()
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Type to search")
	assert.Equal(t, 80, lipgloss.Width(lines[1]))
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2025, 11, 5, 22, 0, 0, 0, time.Local)
	assert.Equal(t, "Nov 05, 10:00 PM", FormatTimestamp(ts))

	morning := time.Date(2025, 1, 9, 7, 5, 0, 0, time.Local)
	assert.Equal(t, "Jan 09, 07:05 AM", FormatTimestamp(morning))
}

func TestShortenPath(t *testing.T) {
	tests := []struct {
		path string
		home string
		want string
	}{
		{"/home/dev/projects/x", "/home/dev", "~/projects/x"},
		{"/home/dev", "/home/dev", "~"},
		{"/home/dev/x", "/home/dev/", "~/x"},
		{"/home/developer/x", "/home/dev", "/home/developer/x"},
		{"/srv/app", "/home/dev", "/srv/app"},
		{"/srv/app", "", "/srv/app"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ShortenPath(tt.path, tt.home), "ShortenPath(%q, %q)", tt.path, tt.home)
	}
}

func TestTerminalWidth_Columns(t *testing.T) {
	t.Setenv("COLUMNS", "142")
	assert.Equal(t, 142, TerminalWidth(120))

	t.Setenv("FZF_PREVIEW_COLUMNS", "77")
	assert.Equal(t, 77, PreviewWidth(120))

	t.Setenv("FZF_PREVIEW_COLUMNS", "nope")
	assert.Equal(t, 142, PreviewWidth(120))
}

func TestWrap(t *testing.T) {
	text := strings.Repeat("lorem ipsum dolor ", 20)

	for _, width := range []int{20, 40, 73} {
		for _, line := range strings.Split(Wrap(text, width), "\n") {
			assert.LessOrEqual(t, lipgloss.Width(line), width, "width %d line %q", width, line)
		}
	}
	assert.Equal(t, "a b c", Wrap("a\n\nb   c", 80))
}

func TestRenderDetail(t *testing.T) {
	now := time.Date(2025, 3, 14, 12, 30, 0, 0, time.UTC)
	f := plainFormatter().WithClock(func() time.Time { return now })
	s := internal.CreateTestSessionWithMessages("detail-1", "Add caching to the resolver", "Ship it")
	s.Cwd = "/home/dev/projects/test-project"
	s.MessageCount = 1234

	out := f.RenderDetail(s, "", 80)
	assert.Contains(t, out, "Session:  detail-1")
	assert.Contains(t, out, "~/projects/test-project")
	assert.Contains(t, out, "Branch:   main")
	assert.Contains(t, out, "1,234")
	assert.Contains(t, out, "ago")
	assert.Contains(t, out, "Add caching to the resolver")
	assert.Contains(t, out, "Ship it")
	assert.NotContains(t, out, "Matches")
}

func TestRenderDetail_NoBranchNoMessages(t *testing.T) {
	f := plainFormatter()
	s := internal.CreateTestSessionWithMessages("bare", "", "")
	s.GitBranch = ""

	out := f.RenderDetail(s, "", 80)
	assert.NotContains(t, out, "Branch:")
	assert.Equal(t, 2, strings.Count(out, NoMessage))
}

func TestRenderDetail_Matches(t *testing.T) {
	f := plainFormatter()
	s := internal.CreateTestSessionWithMessages("m", "first", "last")
	s.FullContent = strings.Repeat("the cache is warm. ", 8)

	out := f.RenderDetail(s, "cache", 120)
	assert.Contains(t, out, "Matches (8):")
	assert.Contains(t, out, "... and 3 more")

	out = f.RenderDetail(s, "absent", 120)
	assert.Contains(t, out, `No exact matches for "absent"`)
}

package format

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/cc-fi/internal/textutil"
)

// FuzzyMatchPositions finds each rune of query in text, in order, advancing
// greedily past every match. ok is false unless the whole query is found.
// Positions are rune indexes into text. Matching ignores case.
func FuzzyMatchPositions(text, query string) (positions []int, ok bool) {
	q := []rune(query)
	if len(q) == 0 {
		return nil, false
	}

	cursor := 0
	for i, r := range []rune(text) {
		if cursor == len(q) {
			break
		}
		if unicode.ToLower(r) == unicode.ToLower(q[cursor]) {
			positions = append(positions, i)
			cursor++
		}
	}
	if cursor < len(q) {
		return nil, false
	}
	return positions, true
}

// HighlightFuzzy styles every rune of text matched by query. When query does
// not match in full, text is returned unchanged.
func HighlightFuzzy(text, query string, style lipgloss.Style) string {
	positions, ok := FuzzyMatchPositions(text, query)
	if !ok {
		return text
	}

	matched := make(map[int]bool, len(positions))
	for _, p := range positions {
		matched[p] = true
	}

	var b strings.Builder
	var span []rune
	flush := func() {
		if len(span) > 0 {
			b.WriteString(style.Render(string(span)))
			span = span[:0]
		}
	}
	for i, r := range []rune(text) {
		if matched[i] {
			span = append(span, r)
			continue
		}
		flush()
		b.WriteRune(r)
	}
	flush()
	return b.String()
}

// FuzzyHighlight highlights query in text with the formatter palette
func (f *Formatter) FuzzyHighlight(text, query string) string {
	return HighlightFuzzy(text, query, f.styles.Highlight)
}

// Snippet is one exact match of a query with its surrounding context
type Snippet struct {
	Before string
	Match  string
	After  string
	// Clipped marks context cut short of the content start or end
	ClippedBefore bool
	ClippedAfter  bool
}

// String renders the snippet on one line with ellipses where context was cut
func (s Snippet) String() string {
	return s.render(func(m string) string { return m })
}

func (s Snippet) render(match func(string) string) string {
	var b strings.Builder
	if s.ClippedBefore {
		b.WriteString(textutil.Ellipsis)
	}
	b.WriteString(s.Before)
	b.WriteString(match(s.Match))
	b.WriteString(s.After)
	if s.ClippedAfter {
		b.WriteString(textutil.Ellipsis)
	}
	return b.String()
}

// ExactMatchContexts finds the non-overlapping, case-insensitive occurrences
// of query in content and returns up to maxSpans of them, each with
// contextChars runes of context on either side. omitted counts the matches
// beyond maxSpans.
func ExactMatchContexts(content, query string, contextChars, maxSpans int) (snippets []Snippet, omitted int) {
	text := []rune(content)
	q := []rune(query)
	if len(q) == 0 || len(q) > len(text) {
		return nil, 0
	}

	lowered := lowerRunes(text)
	lq := lowerRunes(q)

	total := 0
	for i := 0; i+len(lq) <= len(lowered); {
		if !runesEqual(lowered[i:i+len(lq)], lq) {
			i++
			continue
		}
		total++
		if len(snippets) < maxSpans {
			start := max(0, i-contextChars)
			end := min(len(text), i+len(q)+contextChars)
			snippets = append(snippets, Snippet{
				Before:        collapseSpaces(string(text[start:i])),
				Match:         string(text[i : i+len(q)]),
				After:         collapseSpaces(string(text[i+len(q) : end])),
				ClippedBefore: start > 0,
				ClippedAfter:  end < len(text),
			})
		}
		i += len(q)
	}

	return snippets, total - len(snippets)
}

func lowerRunes(rs []rune) []rune {
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = unicode.ToLower(r)
	}
	return out
}

func runesEqual(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// collapseSpaces turns every whitespace run into one space without trimming
func collapseSpaces(s string) string {
	var b strings.Builder
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !space {
				b.WriteByte(' ')
			}
			space = true
			continue
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

// Package textutil holds the whitespace and length helpers shared by the
// parser and the formatter, so previews stored in a session and cells drawn
// in a table are cut by the same rules.
package textutil

import "strings"

// Ellipsis is appended to text that was cut short.
const Ellipsis = "..."

// NormalizeWhitespace collapses every run of spaces, tabs and newlines into a
// single space and trims the result.
func NormalizeWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Truncate normalizes text and cuts it to at most bound runes. Text longer
// than bound keeps bound-3 runes followed by an ellipsis. Bounds too small to
// hold an ellipsis are cut hard.
func Truncate(text string, bound int) string {
	normalized := NormalizeWhitespace(text)
	if bound <= 0 {
		return ""
	}

	runes := []rune(normalized)
	if len(runes) <= bound {
		return normalized
	}
	if bound <= len(Ellipsis) {
		return string(runes[:bound])
	}
	return string(runes[:bound-len(Ellipsis)]) + Ellipsis
}

// Prefix returns the first n runes of text.
func Prefix(text string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}

// Package textutil provides small helpers for presenting free-form text in
// tabular output: whitespace collapsing and width-bounded truncation.
package textutil

import "strings"

// CollapseWhitespace rewrites runs of whitespace, including newlines, as a
// single space and trims the ends. Diagnostic details captured from external
// tools often carry embedded newlines that would break a table row.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate shortens s to at most max runes, marking the cut with an ellipsis.
// A max below one yields the empty string.
func Truncate(s string, max int) string {
	if max < 1 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

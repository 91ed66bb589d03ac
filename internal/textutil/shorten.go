package textutil

import "strings"

// Ellipsis marks truncated display text.
const Ellipsis = "…"

// Shorten limits s to max runes. Longer text keeps its first max-1 runes
// followed by Ellipsis. A non-positive max returns s unchanged.
func Shorten(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + Ellipsis
}

// SingleLine collapses line breaks and runs of whitespace into single spaces.
func SingleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

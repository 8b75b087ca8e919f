package domain

import (
	"strings"
	"unicode/utf8"
)

// Shorten truncates s to at most max runes, adding "..." when something was cut.
// The cut happens on the last word boundary when one is close enough.
func Shorten(s string, maxRunes int) string {
	s = strings.TrimSpace(s)
	if maxRunes <= 0 || utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	if maxRunes <= 3 {
		return string([]rune(s)[:maxRunes])
	}

	cut := string([]rune(s)[:maxRunes-3])
	if idx := strings.LastIndexAny(cut, " \t\n"); idx > len(cut)/2 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " \t\n.,;:") + "..."
}

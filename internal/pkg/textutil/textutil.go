// Package textutil holds the string normalization used by directory searches.
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Fold lower-cases s and strips diacritics, so "Évry" and "evry" compare equal.
func Fold(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) { // nonspacing mark
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// ContainsFold reports whether needle occurs in haystack, ignoring case and accents.
func ContainsFold(haystack, needle string) bool {
	return strings.Contains(Fold(haystack), Fold(needle))
}

// Truncate keeps the first max runes of s and appends "..." when s was longer.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max])) + "..."
}

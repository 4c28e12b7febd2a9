package model

import (
	"strings"

	"golang.org/x/text/cases"
)

// Fold returns the Unicode case-folded form of s for case-insensitive matching.
// A Caser keeps state, so each call gets its own.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// ContainsFold reports whether sub occurs in s ignoring case. An empty sub
// always matches.
func ContainsFold(s, sub string) bool {
	if sub == "" {
		return true
	}
	return strings.Contains(Fold(s), Fold(sub))
}

package domain

import (
	"strings"

	"golang.org/x/text/cases"
)

// Normalize trims surrounding whitespace and case-folds s so that
// "Paris", " paris " and "PARIS" compare equal.
func Normalize(s string) string {
	// Casers keep state between calls, so each call gets its own.
	return cases.Fold().String(strings.TrimSpace(s))
}

func cutBlank(text string) (prefix, suffix string, found bool) {
	return strings.Cut(text, BlankMarker)
}

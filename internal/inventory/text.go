package inventory

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeText trims surrounding whitespace and applies NFC, so that
// "Éther" typed with a combining accent matches the precomposed form.
func NormalizeText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// FoldKey returns the Unicode case-folded form of s used for ordering.
func FoldKey(s string) string {
	// cases.Caser is stateful; one per call.
	return cases.Fold().String(s)
}

// CompareFolded orders a and b case-insensitively and returns -1, 0 or 1.
// Strings with equal folded forms compare equal.
func CompareFolded(a, b string) int {
	return strings.Compare(FoldKey(a), FoldKey(b))
}

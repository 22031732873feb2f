// Package search holds the text matching rules shared by the store and the query layer.
package search

import (
	"strings"

	"golang.org/x/text/cases"
)

// Fold returns the Unicode case-folded form of s.
func Fold(s string) string {
	// Casers are stateful; one per call keeps Fold safe for concurrent use.
	return cases.Fold().String(s)
}

// ContainsFold reports whether substr is within s, ignoring case.
func ContainsFold(s, substr string) bool {
	return strings.Contains(Fold(s), Fold(substr))
}

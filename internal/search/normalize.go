package search

import (
	"strings"

	"golang.org/x/text/cases"
)

// stripped reports whether r is removed by normalization: ASCII and
// typographic quotes, sentence punctuation, dashes, '+', '^' and digits.
func stripped(r rune) bool {
	switch r {
	case '"', '\'', '“', '”', '‘', '’',
		'.', ',', ';', ':', '?', '!',
		'-', '—', '–', '+', '^':
		return true
	}
	return r >= '0' && r <= '9'
}

// Normalize strips the punctuation set from s and case-folds the rest. Both
// index building and query parsing go through it, so terms and indexed tokens
// always compare in the same space.
func Normalize(s string) string {
	s = strings.Map(func(r rune) rune {
		if stripped(r) {
			return -1
		}
		return r
	}, s)
	// A Caser is stateful; one per call keeps Normalize safe for concurrent use.
	return cases.Fold().String(s)
}

// Tokenize normalizes s and splits it on whitespace.
func Tokenize(s string) []string {
	return strings.Fields(Normalize(s))
}

package directory

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Matcher derives the aggregation key from a free-text client name. The
// historical data keys on the trimmed name only, so matching stays pluggable:
// exact matching preserves legacy behavior, folding matching merges case and
// accent variants ("Juan Pérez" / "juan perez").
type Matcher interface {
	Key(name string) string
}

// ExactMatcher trims whitespace and nothing else (legacy behavior).
type ExactMatcher struct{}

// Key implements Matcher.
func (ExactMatcher) Key(name string) string {
	return strings.TrimSpace(name)
}

// FoldingMatcher lowercases, strips diacritics and collapses inner
// whitespace.
type FoldingMatcher struct{}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Key implements Matcher.
func (FoldingMatcher) Key(name string) string {
	folded, _, err := transform.String(stripMarks, strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(name))
	}
	return strings.Join(strings.Fields(folded), " ")
}

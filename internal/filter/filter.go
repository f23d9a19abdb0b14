package filter

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lower-cases s, decomposes it (NFD) and strips combining marks so
// "Amélie" and "amelie" compare equal.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, s)
	if err != nil {
		// the chain never fails on valid strings; keep the input usable anyway
		out = s
	}
	return strings.ToLower(out)
}

// Contains reports whether query is a case- and diacritic-insensitive
// substring of label. An empty query matches everything.
func Contains(label, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(Normalize(label), Normalize(query))
}

// Criteria is the text + facet predicate used by the table controllers and
// the collection picker.
type Criteria struct {
	Text  string
	Facet string

	normalizedText string
}

// New builds criteria, normalizing the query once
func New(text, facet string) Criteria {
	return Criteria{Text: text, Facet: facet, normalizedText: Normalize(text)}
}

// Empty reports whether the criteria accept every item
func (c Criteria) Empty() bool {
	return c.Text == "" && c.Facet == ""
}

// MatchesText applies the text rule to a label
func (c Criteria) MatchesText(label string) bool {
	if c.Text == "" {
		return true
	}
	q := c.normalizedText
	if q == "" {
		q = Normalize(c.Text)
	}
	return strings.Contains(Normalize(label), q)
}

// MatchesFacet requires an exact match of the chosen facet against one of the
// item's values. No facet chosen accepts every item, including items without
// values.
func (c Criteria) MatchesFacet(values []string) bool {
	if c.Facet == "" {
		return true
	}
	for _, v := range values {
		if v == c.Facet {
			return true
		}
	}
	return false
}

// Matches combines the facet and text rules
func (c Criteria) Matches(label string, facets []string) bool {
	return c.MatchesFacet(facets) && c.MatchesText(label)
}

// Facets collects the distinct non-empty values in first-seen order
func Facets[T any](items []T, values func(T) []string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, item := range items {
		for _, v := range values(item) {
			if v == "" {
				continue
			}
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

package match

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Logic combines query keywords.
type Logic string

const (
	// LogicAnd requires every keyword to match.
	LogicAnd Logic = "and"
	// LogicOr requires at least one keyword to match.
	LogicOr Logic = "or"
)

// ParseLogic maps "and"/"or" (any case) to a Logic. Empty means AND.
func ParseLogic(s string) (Logic, error) {
	switch Logic(strings.ToLower(strings.TrimSpace(s))) {
	case "", LogicAnd:
		return LogicAnd, nil
	case LogicOr:
		return LogicOr, nil
	default:
		return "", fmt.Errorf("unknown query logic %q", s)
	}
}

// Query is a parsed search string.
type Query struct {
	Keywords []string `json:"keywords"`
	Logic    Logic    `json:"logic"`
}

// ParseQuery splits s into lowercase keywords. A {braced phrase} is one
// keyword with its inner spaces kept; anything else splits on whitespace.
// Empty phrases are dropped and an unclosed brace runs to the end of s.
func ParseQuery(s string, logic Logic) Query {
	if logic == "" {
		logic = LogicAnd
	}
	q := Query{Keywords: []string{}, Logic: logic}

	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case unicode.IsSpace(r):
			i += size
		case r == '{':
			rest := s[i+1:]
			phrase, next := rest, len(s)
			if end := strings.IndexByte(rest, '}'); end >= 0 {
				phrase, next = rest[:end], i+1+end+1
			}
			i = next
			if phrase = strings.TrimSpace(phrase); phrase != "" {
				q.Keywords = append(q.Keywords, strings.ToLower(strings.Map(flattenLineBreak, phrase)))
			}
		default:
			j := i
			for j < len(s) {
				r, size := utf8.DecodeRuneInString(s[j:])
				if unicode.IsSpace(r) || r == '{' {
					break
				}
				j += size
			}
			q.Keywords = append(q.Keywords, strings.ToLower(s[i:j]))
			i = j
		}
	}
	return q
}

// flattenLineBreak keeps phrases on one line so they cannot match across
// haystack fields.
func flattenLineBreak(r rune) rune {
	if r == '\n' || r == '\r' {
		return ' '
	}
	return r
}

// Empty reports whether the query has no keywords.
func (q Query) Empty() bool {
	return len(q.Keywords) == 0
}

// Matches reports whether haystack satisfies the query. Keywords match as
// substrings; haystack must already be lowercase (see Haystack). An empty
// query matches everything.
func (q Query) Matches(haystack string) bool {
	if q.Empty() {
		return true
	}
	if q.Logic == LogicOr {
		for _, kw := range q.Keywords {
			if strings.Contains(haystack, kw) {
				return true
			}
		}
		return false
	}
	for _, kw := range q.Keywords {
		if !strings.Contains(haystack, kw) {
			return false
		}
	}
	return true
}

// HaystackVariant selects which fields Haystack includes.
type HaystackVariant int

const (
	// CatalogHaystack covers name, category, scale and tags.
	CatalogHaystack HaystackVariant = iota
	// CollectionHaystack adds the annotation's store and price.
	CollectionHaystack
)

// fieldSeparator joins haystack fields. Keywords never contain it, so a
// keyword cannot match across two fields.
const fieldSeparator = "\n"

// Haystack builds the lowercase text a Query is matched against.
func Haystack(e Entry, variant HaystackVariant) string {
	if e.Item == nil {
		return ""
	}
	parts := make([]string, 0, 4+len(e.Item.Tags))
	parts = append(parts, e.Item.Name, e.Item.Category, e.Item.Scale)
	parts = append(parts, e.Item.Tags...)
	if variant == CollectionHaystack && e.Annotation != nil {
		parts = append(parts, e.Annotation.Store, e.Annotation.Price)
	}
	return strings.ToLower(strings.Join(parts, fieldSeparator))
}

// Filter returns the entries whose haystack matches q, in input order.
func Filter(entries []Entry, q Query, variant HaystackVariant) []Entry {
	if q.Empty() {
		return entries
	}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if q.Matches(Haystack(e, variant)) {
			out = append(out, e)
		}
	}
	return out
}

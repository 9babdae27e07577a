package match

import (
	"fmt"
	"strings"

	"github.com/figureshelf/figureshelf-server/internal/domain"
)

// FieldType names the item field a suggestion came from.
type FieldType string

const (
	FieldTag      FieldType = "tag"
	FieldCategory FieldType = "category"
	FieldScale    FieldType = "scale"
	FieldAge      FieldType = "age"
	FieldName     FieldType = "name"
)

// DefaultSuggestionLimit caps suggestions when no limit is configured.
const DefaultSuggestionLimit = 10

// Field priority per call site. The catalog search box and the collection
// views have always ranked fields differently; both orders are kept.
var (
	SearchOrder     = []FieldType{FieldTag, FieldCategory, FieldAge, FieldScale, FieldName}
	CollectionOrder = []FieldType{FieldTag, FieldAge, FieldScale, FieldCategory, FieldName}
)

// Suggestion is one entry of a search-as-you-type dropdown.
type Suggestion struct {
	Type FieldType `json:"type"`
	Text string    `json:"text"`
}

// Suggester builds field suggestions for a partial query.
type Suggester struct {
	order []FieldType
	limit int
}

// NewSuggester returns a suggester testing fields in order and returning at
// most limit suggestions. It panics on an empty order; limit < 1 falls back
// to DefaultSuggestionLimit.
func NewSuggester(order []FieldType, limit int) *Suggester {
	if len(order) == 0 {
		panic("match: empty suggestion field order")
	}
	if limit < 1 {
		limit = DefaultSuggestionLimit
	}
	return &Suggester{order: append([]FieldType(nil), order...), limit: limit}
}

// Limit returns the configured cap.
func (s *Suggester) Limit() int {
	return s.limit
}

// Suggest scans items in order. For each item the first field (in priority
// order) containing the lowercase query yields its suggestion; the item is
// skipped if that text was already suggested. Scanning stops once the limit
// is reached. Results are grouped by field in priority order.
func (s *Suggester) Suggest(query string, items []*domain.Item) []Suggestion {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []Suggestion{}
	}

	buckets := make(map[FieldType][]Suggestion, len(s.order))
	seen := make(map[string]struct{})
	total := 0

	for i, item := range items {
		if item == nil {
			panic(fmt.Sprintf("match: nil item at index %d", i))
		}
		if total >= s.limit {
			break
		}
		for _, field := range s.order {
			text, ok := fieldMatch(item, field, q)
			if !ok {
				continue
			}
			key := strings.ToLower(text)
			if _, dup := seen[key]; !dup {
				seen[key] = struct{}{}
				buckets[field] = append(buckets[field], Suggestion{Type: field, Text: text})
				total++
			}
			break
		}
	}

	out := make([]Suggestion, 0, total)
	for _, field := range s.order {
		out = append(out, buckets[field]...)
	}
	if len(out) > s.limit {
		out = out[:s.limit]
	}
	return out
}

// fieldMatch returns the text of field when it contains q.
func fieldMatch(item *domain.Item, field FieldType, q string) (string, bool) {
	switch field {
	case FieldTag:
		for _, tag := range item.Tags {
			if strings.Contains(strings.ToLower(tag), q) {
				return tag, true
			}
		}
		return "", false
	case FieldCategory:
		return containsField(item.Category, q)
	case FieldScale:
		return containsField(item.Scale, q)
	case FieldAge:
		return containsField(item.AgeRating, q)
	case FieldName:
		return containsField(item.Name, q)
	default:
		return "", false
	}
}

func containsField(value, q string) (string, bool) {
	if value != "" && strings.Contains(strings.ToLower(value), q) {
		return value, true
	}
	return "", false
}

package match

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/figureshelf/figureshelf-server/internal/domain"
)

// ErrInvalidPage is returned for a page or page size below 1.
var ErrInvalidPage = errors.New("match: page and page size must be at least 1")

// Entry is an item as seen by one user: the catalog record plus that user's
// annotation, if any.
type Entry struct {
	Item       *domain.Item       `json:"item"`
	Annotation *domain.Annotation `json:"annotation,omitempty"`
}

// EntriesOf wraps items without annotations.
func EntriesOf(items []*domain.Item) []Entry {
	out := make([]Entry, len(items))
	for i, item := range items {
		out[i] = Entry{Item: item}
	}
	return out
}

// SortSpec names a sort order.
type SortSpec string

// Sort orders accepted by the API.
const (
	SortNameAsc       SortSpec = "name_asc"
	SortNameDesc      SortSpec = "name_desc"
	SortPriceAsc      SortSpec = "price_asc"
	SortPriceDesc     SortSpec = "price_desc"
	SortReleaseAsc    SortSpec = "release_asc"
	SortReleaseDesc   SortSpec = "release_desc"
	SortCreatedAsc    SortSpec = "created_asc"
	SortCreatedDesc   SortSpec = "created_desc"
	SortScoreAsc      SortSpec = "score_asc"
	SortScoreDesc     SortSpec = "score_desc"
	SortPurchasedAsc  SortSpec = "purchased_asc"
	SortPurchasedDesc SortSpec = "purchased_desc"
)

// DefaultSort is used when a request names no order.
const DefaultSort = SortCreatedDesc

type keyKind int

const (
	numberKey keyKind = iota
	timeKey
	textKey
)

type sortKey struct {
	kind keyKind
	desc bool
	// exactly one extractor is set, matching kind
	number func(Entry) float64
	time   func(Entry) time.Time
	text   func(Entry) string
}

func annotationField(e Entry, get func(*domain.Annotation) string) string {
	if e.Annotation == nil {
		return ""
	}
	return get(e.Annotation)
}

func price(e Entry) float64 {
	return ParseNumber(annotationField(e, func(a *domain.Annotation) string { return a.Price }))
}

func score(e Entry) float64 {
	return ParseNumber(annotationField(e, func(a *domain.Annotation) string { return a.Score }))
}

func purchased(e Entry) time.Time {
	return ParseDate(annotationField(e, func(a *domain.Annotation) string { return a.PurchaseDate }))
}

func released(e Entry) time.Time { return ParseDate(e.Item.ReleaseDate) }
func created(e Entry) time.Time  { return e.Item.CreatedAt }
func name(e Entry) string        { return strings.ToLower(e.Item.Name) }

var sortKeys = map[SortSpec]sortKey{
	SortNameAsc:       {kind: textKey, text: name},
	SortNameDesc:      {kind: textKey, text: name, desc: true},
	SortPriceAsc:      {kind: numberKey, number: price},
	SortPriceDesc:     {kind: numberKey, number: price, desc: true},
	SortScoreAsc:      {kind: numberKey, number: score},
	SortScoreDesc:     {kind: numberKey, number: score, desc: true},
	SortReleaseAsc:    {kind: timeKey, time: released},
	SortReleaseDesc:   {kind: timeKey, time: released, desc: true},
	SortCreatedAsc:    {kind: timeKey, time: created},
	SortCreatedDesc:   {kind: timeKey, time: created, desc: true},
	SortPurchasedAsc:  {kind: timeKey, time: purchased},
	SortPurchasedDesc: {kind: timeKey, time: purchased, desc: true},
}

// SortSpecs lists every known order, for API docs.
func SortSpecs() []string {
	out := make([]string, 0, len(sortKeys))
	for spec := range sortKeys {
		out = append(out, string(spec))
	}
	slices.Sort(out)
	return out
}

// ParseSortSpec accepts "price_asc", "priceAsc" or "PRICE-ASC" style names.
func ParseSortSpec(s string) (SortSpec, error) {
	norm := strings.Map(func(r rune) rune {
		if r == '_' || r == '-' || r == ' ' {
			return -1
		}
		return r
	}, strings.ToLower(s))
	for spec := range sortKeys {
		if strings.ReplaceAll(string(spec), "_", "") == norm {
			return spec, nil
		}
	}
	return "", fmt.Errorf("unknown sort order %q", s)
}

// Sorter orders entries. Name ordering follows the collation rules of the
// configured language.
type Sorter struct {
	lang language.Tag
}

// NewSorter returns a sorter collating names per the BCP 47 tag lang
// (e.g. "en", "ja"). An empty tag means English.
func NewSorter(lang string) (*Sorter, error) {
	if lang == "" {
		return &Sorter{lang: language.English}, nil
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return nil, fmt.Errorf("parse collation language: %w", err)
	}
	return &Sorter{lang: tag}, nil
}

type keyed struct {
	entry  Entry
	number float64
	time   time.Time
	text   []byte
}

// Sort returns a sorted copy of entries. The sort is stable: entries with
// equal keys keep their input order in both directions. It panics on an
// entry without an item.
func (s *Sorter) Sort(entries []Entry, spec SortSpec) ([]Entry, error) {
	key, ok := sortKeys[spec]
	if !ok {
		return nil, fmt.Errorf("unknown sort order %q", spec)
	}

	// Collators keep scratch buffers, so each call gets its own.
	var col *collate.Collator
	var buf collate.Buffer
	if key.kind == textKey {
		col = collate.New(s.lang)
	}

	rows := make([]keyed, 0, len(entries))
	for i, e := range entries {
		if e.Item == nil {
			panic(fmt.Sprintf("match: entry %d has no item", i))
		}
		row := keyed{entry: e}
		switch key.kind {
		case numberKey:
			row.number = key.number(e)
		case timeKey:
			row.time = key.time(e)
		case textKey:
			row.text = append([]byte(nil), col.KeyFromString(&buf, key.text(e))...)
			buf.Reset()
		}
		rows = append(rows, row)
	}

	slices.SortStableFunc(rows, func(a, b keyed) int {
		var c int
		switch key.kind {
		case numberKey:
			c = cmp.Compare(a.number, b.number)
		case timeKey:
			c = a.time.Compare(b.time)
		case textKey:
			c = slices.Compare(a.text, b.text)
		}
		if key.desc {
			return -c
		}
		return c
	})

	out := make([]Entry, len(rows))
	for i, row := range rows {
		out[i] = row.entry
	}
	return out, nil
}

// Page returns the slice [(page-1)*pageSize, page*pageSize) of s. Pages past
// the end are empty.
func Page[T any](s []T, page, pageSize int) ([]T, error) {
	if page < 1 || pageSize < 1 {
		return nil, ErrInvalidPage
	}
	if page-1 > (len(s)-1)/pageSize || len(s) == 0 {
		return []T{}, nil
	}
	start := (page - 1) * pageSize
	end := min(start+pageSize, len(s))
	return s[start:end], nil
}

// TotalPages returns how many pages n entries fill.
func TotalPages(n, pageSize int) int {
	if n <= 0 || pageSize < 1 {
		return 0
	}
	return (n + pageSize - 1) / pageSize
}

// SortAndPage sorts entries by spec and returns one page.
func (s *Sorter) SortAndPage(entries []Entry, spec SortSpec, page, pageSize int) ([]Entry, error) {
	if page < 1 || pageSize < 1 {
		return nil, ErrInvalidPage
	}
	sorted, err := s.Sort(entries, spec)
	if err != nil {
		return nil, err
	}
	return Page(sorted, page, pageSize)
}

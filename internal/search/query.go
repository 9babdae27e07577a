package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Sort orders accepted by Params.Sort.
const (
	SortRelevance = "relevance"
	SortRecent    = "recent"
	SortName      = "name"
)

// DefaultLimit caps a search when Params.Limit is not positive.
const DefaultLimit = 20

// Params configures a full-text search.
type Params struct {
	Query string

	// Exact filters; all given filters must match.
	Tags      []string
	Category  string
	Scale     string
	AgeRating string

	Limit  int
	Offset int
	Sort   string // relevance (default), recent, name

	IncludeFacets bool
	Highlight     bool
}

// Result is a page of search hits.
type Result struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	TookMs int64  `json:"took_ms"`
	Hits   []Hit  `json:"hits"`
	Facets Facets `json:"facets,omitzero"`
}

// Hit is a single matching item.
type Hit struct {
	ID         string            `json:"id"`
	Score      float64           `json:"score"`
	Name       string            `json:"name"`
	Tags       []string          `json:"tags,omitempty"`
	Category   string            `json:"category,omitempty"`
	Scale      string            `json:"scale,omitempty"`
	AgeRating  string            `json:"age_rating,omitempty"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// Facets holds term counts over the whole result set.
type Facets struct {
	Tags       []FacetCount `json:"tags,omitempty"`
	Categories []FacetCount `json:"categories,omitempty"`
}

// FacetCount is a facet value and how many hits carry it.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

const facetSize = 20

// Search runs a relevance-ranked query over the item index.
func (s *SearchIndex) Search(ctx context.Context, params Params) (*Result, error) {
	if params.Limit <= 0 {
		params.Limit = DefaultLimit
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(buildQuery(params), params.Limit, params.Offset, false)
	addSorting(req, params.Sort)

	if params.IncludeFacets {
		req.AddFacet("tags", bleve.NewFacetRequest("tags", facetSize))
		req.AddFacet("category", bleve.NewFacetRequest("category", facetSize))
	}
	if params.Highlight {
		req.Highlight = bleve.NewHighlight()
		req.Highlight.AddField("name")
	}
	req.Fields = []string{"name", "tags", "category", "scale", "age_rating"}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &Result{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(res.Hits)),
	}

	for _, h := range res.Hits {
		hit := Hit{
			ID:        h.ID,
			Score:     h.Score,
			Name:      stringField(h.Fields, "name"),
			Tags:      stringsField(h.Fields, "tags"),
			Category:  stringField(h.Fields, "category"),
			Scale:     stringField(h.Fields, "scale"),
			AgeRating: stringField(h.Fields, "age_rating"),
		}
		if len(h.Fragments) > 0 {
			hit.Highlights = make(map[string]string, len(h.Fragments))
			for field, fragments := range h.Fragments {
				if len(fragments) > 0 {
					hit.Highlights[field] = fragments[0]
				}
			}
		}
		result.Hits = append(result.Hits, hit)
	}

	if params.IncludeFacets {
		result.Facets = Facets{
			Tags:       facetCounts(res, "tags"),
			Categories: facetCounts(res, "category"),
		}
	}

	return result, nil
}

// buildQuery combines the text query with the exact filters using AND.
func buildQuery(params Params) query.Query {
	var queries []query.Query

	if q := strings.TrimSpace(params.Query); q != "" {
		nameMatch := bleve.NewMatchQuery(q)
		nameMatch.SetField("name")
		nameMatch.SetBoost(3.0)

		fuzzy := bleve.NewFuzzyQuery(strings.ToLower(q))
		fuzzy.SetField("name")
		fuzzy.SetFuzziness(1)
		fuzzy.SetBoost(0.8)

		tag := bleve.NewTermQuery(strings.ToLower(q))
		tag.SetField("tags")
		tag.SetBoost(1.5)

		text := []query.Query{nameMatch, fuzzy, tag}

		if len(q) >= 2 {
			prefix := bleve.NewPrefixQuery(strings.ToLower(q))
			prefix.SetField("name")
			prefix.SetBoost(0.5)
			text = append(text, prefix)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(text...))
	}

	for _, t := range params.Tags {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			queries = append(queries, termQuery("tags", t))
		}
	}
	if params.Category != "" {
		queries = append(queries, termQuery("category", strings.ToLower(params.Category)))
	}
	if params.Scale != "" {
		queries = append(queries, termQuery("scale", strings.ToLower(params.Scale)))
	}
	if params.AgeRating != "" {
		queries = append(queries, termQuery("age_rating", strings.ToLower(params.AgeRating)))
	}

	switch len(queries) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return queries[0]
	default:
		return bleve.NewConjunctionQuery(queries...)
	}
}

func termQuery(field, term string) query.Query {
	q := bleve.NewTermQuery(term)
	q.SetField(field)
	return q
}

func addSorting(req *bleve.SearchRequest, sortBy string) {
	switch sortBy {
	case SortRecent:
		req.SortBy([]string{"-created_at", "_id"})
	case SortName:
		req.SortBy([]string{"name_sort", "_id"})
	default:
		req.SortBy([]string{"-_score", "_id"})
	}
}

func facetCounts(res *bleve.SearchResult, name string) []FacetCount {
	facet, ok := res.Facets[name]
	if !ok || facet.Terms == nil {
		return nil
	}
	var out []FacetCount
	for _, term := range facet.Terms.Terms() {
		out = append(out, FacetCount{Value: term.Term, Count: term.Count})
	}
	return out
}

func stringField(fields map[string]any, name string) string {
	s, _ := fields[name].(string)
	return s
}

// stringsField reads a stored multi-value field. Bleve returns a bare string
// when only one value was indexed.
func stringsField(fields map[string]any, name string) []string {
	switch v := fields[name].(type) {
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/figureshelf/figureshelf-server/internal/match"
	"github.com/figureshelf/figureshelf-server/internal/search"
)

// Suggestion contexts.
const (
	suggestContextSearch     = "search"
	suggestContextCollection = "collection"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "suggest",
		Method:      http.MethodGet,
		Path:        "/api/v1/suggest",
		Summary:     "Suggest field values",
		Description: "Returns tag, category, age rating, scale and name values that contain the whole trimmed query as a case-insensitive substring, one per item, in field priority order",
		Tags:        []string{"Search"},
		Middlewares: huma.Middlewares{s.rateLimit(s.suggestLimiter)},
	}, s.handleSuggest)

	huma.Register(s.api, huma.Operation{
		OperationID: "fullTextSearch",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Full-text search",
		Description: "Relevance-ranked search over published items with optional facets and highlights",
		Tags:        []string{"Search"},
	}, s.handleFullTextSearch)
}

// === DTOs ===

// SuggestInput contains suggestion parameters.
type SuggestInput struct {
	Query   string `query:"q" maxLength:"200" doc:"Partial query"`
	Context string `query:"context" enum:"search,collection" default:"search" doc:"Suggest from the catalog or from the caller's collection"`
}

// SuggestResponse lists suggestions in display order.
type SuggestResponse struct {
	Suggestions []match.Suggestion `json:"suggestions" doc:"Suggestions"`
}

// SuggestOutput wraps suggestions for Huma.
type SuggestOutput struct {
	Body SuggestResponse
}

// FullTextSearchInput contains full-text search parameters.
type FullTextSearchInput struct {
	Query     string `query:"q" maxLength:"200" doc:"Search text"`
	Tags      string `query:"tags" maxLength:"500" doc:"Comma-separated tags every hit must carry"`
	Category  string `query:"category" maxLength:"100" doc:"Category filter"`
	Scale     string `query:"scale" maxLength:"50" doc:"Scale filter"`
	AgeRating string `query:"age_rating" maxLength:"20" doc:"Age rating filter"`
	Sort      string `query:"sort" enum:"relevance,recent,name" default:"relevance" doc:"Hit order"`
	Limit     int    `query:"limit" minimum:"0" maximum:"100" doc:"Max hits (default 20)"`
	Offset    int    `query:"offset" minimum:"0" doc:"Hits to skip"`
	Facets    bool   `query:"facets" doc:"Include tag and category facets"`
	Highlight bool   `query:"highlight" doc:"Include highlighted fragments"`
}

// FullTextSearchOutput wraps search results for Huma.
type FullTextSearchOutput struct {
	Body *search.Result
}

// === Handlers ===

func (s *Server) handleSuggest(ctx context.Context, input *SuggestInput) (*SuggestOutput, error) {
	var (
		suggestions []match.Suggestion
		err         error
	)

	if input.Context == suggestContextCollection {
		user, uerr := requireUser(ctx)
		if uerr != nil {
			return nil, uerr
		}
		suggestions, err = s.services.Catalog.CollectionSuggest(ctx, user, input.Query)
	} else {
		suggestions, err = s.services.Catalog.Suggest(ctx, input.Query)
	}
	if err != nil {
		return nil, err
	}

	if suggestions == nil {
		suggestions = []match.Suggestion{}
	}
	return &SuggestOutput{Body: SuggestResponse{Suggestions: suggestions}}, nil
}

func (s *Server) handleFullTextSearch(ctx context.Context, input *FullTextSearchInput) (*FullTextSearchOutput, error) {
	params := search.Params{
		Query:         input.Query,
		Category:      input.Category,
		Scale:         input.Scale,
		AgeRating:     input.AgeRating,
		Sort:          input.Sort,
		Limit:         input.Limit,
		Offset:        input.Offset,
		IncludeFacets: input.Facets,
		Highlight:     input.Highlight,
	}
	if input.Tags != "" {
		for t := range strings.SplitSeq(input.Tags, ",") {
			if t = strings.TrimSpace(t); t != "" {
				params.Tags = append(params.Tags, t)
			}
		}
	}

	result, err := s.services.Search.FullText(ctx, params)
	if err != nil {
		s.logger.Error("search failed", "error", err, "query", input.Query)
		return nil, err
	}

	s.logger.Debug("search completed",
		"query", input.Query,
		"total", result.Total,
		"took_ms", result.TookMs,
	)
	return &FullTextSearchOutput{Body: result}, nil
}

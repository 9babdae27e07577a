package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/figureshelf/figureshelf-server/internal/domain"
	domainerrors "github.com/figureshelf/figureshelf-server/internal/errors"
	"github.com/figureshelf/figureshelf-server/internal/match"
	"github.com/figureshelf/figureshelf-server/internal/store"
)

// CatalogConfig configures the matching engine behind the catalog views.
type CatalogConfig struct {
	Vocabulary      *match.Vocabulary // nil uses match.DefaultVocabulary
	SuggestionLimit int
	PageSize        int
	Collation       string
}

// CatalogService answers catalog queries from an in-memory snapshot of every
// non-draft item. The snapshot is loaded on first use and dropped by
// Invalidate after writes; readers share it under a read lock and it is
// replaced wholesale, never modified in place.
type CatalogService struct {
	store               store.Store
	ranker              *match.Ranker
	searchSuggester     *match.Suggester
	collectionSuggester *match.Suggester
	sorter              *match.Sorter
	pageSize            int
	logger              *slog.Logger

	mu       sync.RWMutex
	snapshot []*domain.Item
	loaded   bool
}

// NewCatalogService creates a catalog service.
func NewCatalogService(store store.Store, cfg CatalogConfig, logger *slog.Logger) (*CatalogService, error) {
	vocab := cfg.Vocabulary
	if vocab == nil {
		vocab = match.DefaultVocabulary()
	}
	sorter, err := match.NewSorter(cfg.Collation)
	if err != nil {
		return nil, err
	}
	pageSize := cfg.PageSize
	if pageSize < 1 {
		pageSize = 24
	}

	return &CatalogService{
		store:               store,
		ranker:              match.NewRanker(match.NewTokenizer(vocab)),
		searchSuggester:     match.NewSuggester(match.SearchOrder, cfg.SuggestionLimit),
		collectionSuggester: match.NewSuggester(match.CollectionOrder, cfg.SuggestionLimit),
		sorter:              sorter,
		pageSize:            pageSize,
		logger:              logger,
	}, nil
}

// SetVocabulary swaps the duplicate detector's stop-word and supportive
// word lists. In-flight checks finish with the old lists.
func (s *CatalogService) SetVocabulary(vocab *match.Vocabulary) {
	ranker := match.NewRanker(match.NewTokenizer(vocab))
	s.mu.Lock()
	s.ranker = ranker
	s.mu.Unlock()
}

// Invalidate drops the snapshot; the next query reloads it from the store.
func (s *CatalogService) Invalidate() {
	s.mu.Lock()
	s.snapshot, s.loaded = nil, false
	s.mu.Unlock()
}

func (s *CatalogService) items(ctx context.Context) ([]*domain.Item, error) {
	s.mu.RLock()
	if s.loaded {
		items := s.snapshot
		s.mu.RUnlock()
		return items, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return s.snapshot, nil
	}

	items, err := s.store.ListAllItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog snapshot: %w", err)
	}
	s.snapshot, s.loaded = items, true
	s.logger.Debug("catalog snapshot loaded", "items", len(items))

	return items, nil
}

func (s *CatalogService) published(ctx context.Context) ([]*domain.Item, error) {
	items, err := s.items(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Item, 0, len(items))
	for _, item := range items {
		if item.IsPublished() {
			out = append(out, item)
		}
	}
	return out, nil
}

// SearchRequest is a catalog listing query.
type SearchRequest struct {
	Query    string
	Logic    match.Logic
	Sort     match.SortSpec
	Page     int
	PageSize int
}

// SearchResult is one page of catalog items.
type SearchResult struct {
	Items      []*domain.Item `json:"items"`
	Keywords   []string       `json:"keywords"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}

// Search filters published items by the structured query, sorts them and
// returns one page.
func (s *CatalogService) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	spec, page, pageSize, err := s.listParams(req.Sort, req.Page, req.PageSize)
	if err != nil {
		return nil, err
	}

	items, err := s.published(ctx)
	if err != nil {
		return nil, err
	}

	q := match.ParseQuery(req.Query, req.Logic)
	matched := match.Filter(match.EntriesOf(items), q, match.CatalogHaystack)

	entries, err := s.sorter.SortAndPage(matched, spec, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("sort catalog: %w", err)
	}

	out := make([]*domain.Item, len(entries))
	for i, e := range entries {
		out[i] = e.Item.Clone()
	}

	return &SearchResult{
		Items:      out,
		Keywords:   q.Keywords,
		Total:      len(matched),
		Page:       page,
		PageSize:   pageSize,
		TotalPages: match.TotalPages(len(matched), pageSize),
	}, nil
}

// Suggest returns search-as-you-type suggestions over published items using
// the catalog field order.
func (s *CatalogService) Suggest(ctx context.Context, query string) ([]match.Suggestion, error) {
	items, err := s.published(ctx)
	if err != nil {
		return nil, err
	}
	return s.searchSuggester.Suggest(query, items), nil
}

// DuplicateReport lists catalog items that look like the same collectible.
type DuplicateReport struct {
	Candidates []match.Candidate `json:"candidates"`
	Threshold  int               `json:"threshold"`
	// Converged is false when the matches could not be narrowed down; the
	// client should ask for a more specific name.
	Converged bool `json:"converged"`
}

// FindDuplicates ranks published and pending items against a proposed name.
func (s *CatalogService) FindDuplicates(ctx context.Context, name string) (*DuplicateReport, error) {
	return s.findDuplicates(ctx, name, "")
}

// findDuplicates is FindDuplicates ignoring the item excludeID, so an item
// being renamed is not reported as its own duplicate.
func (s *CatalogService) findDuplicates(ctx context.Context, name, excludeID string) (*DuplicateReport, error) {
	items, err := s.items(ctx)
	if err != nil {
		return nil, err
	}
	if excludeID != "" {
		filtered := make([]*domain.Item, 0, len(items))
		for _, item := range items {
			if item.ID != excludeID {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}

	s.mu.RLock()
	ranker := s.ranker
	s.mu.RUnlock()

	res := ranker.Rank(name, items)
	cands := make([]match.Candidate, len(res.Candidates))
	for i, c := range res.Candidates {
		c.Item = c.Item.Clone()
		cands[i] = c
	}

	return &DuplicateReport{
		Candidates: cands,
		Threshold:  res.Threshold,
		Converged:  res.Converged,
	}, nil
}

// CollectionRequest is a query over one user's collection.
type CollectionRequest struct {
	Query    string
	Logic    match.Logic
	Status   domain.AnnotationStatus // empty means any
	Sort     match.SortSpec
	Page     int
	PageSize int
}

// CollectionEntry is an item together with the user's annotation.
type CollectionEntry struct {
	Item       *domain.Item       `json:"item"`
	Annotation *domain.Annotation `json:"annotation"`
}

// CollectionResult is one page of a user's collection.
type CollectionResult struct {
	Entries    []CollectionEntry `json:"entries"`
	Keywords   []string          `json:"keywords"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

// Collection lists the user's annotated items, matched against the query
// with the collection haystack (store and price included).
func (s *CatalogService) Collection(ctx context.Context, user *domain.User, req CollectionRequest) (*CollectionResult, error) {
	if req.Status != "" && !req.Status.Valid() {
		return nil, domainerrors.Validationf("unknown collection status %q", req.Status)
	}
	spec, page, pageSize, err := s.listParams(req.Sort, req.Page, req.PageSize)
	if err != nil {
		return nil, err
	}

	entries, err := s.collectionEntries(ctx, user)
	if err != nil {
		return nil, err
	}
	if req.Status != "" {
		filtered := entries[:0]
		for _, e := range entries {
			if e.Annotation.Status == req.Status {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	q := match.ParseQuery(req.Query, req.Logic)
	matched := match.Filter(entries, q, match.CollectionHaystack)

	paged, err := s.sorter.SortAndPage(matched, spec, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("sort collection: %w", err)
	}

	out := make([]CollectionEntry, len(paged))
	for i, e := range paged {
		out[i] = CollectionEntry{Item: e.Item.Clone(), Annotation: e.Annotation}
	}

	return &CollectionResult{
		Entries:    out,
		Keywords:   q.Keywords,
		Total:      len(matched),
		Page:       page,
		PageSize:   pageSize,
		TotalPages: match.TotalPages(len(matched), pageSize),
	}, nil
}

// CollectionSuggest suggests over the items in the user's collection using
// the collection field order.
func (s *CatalogService) CollectionSuggest(ctx context.Context, user *domain.User, query string) ([]match.Suggestion, error) {
	entries, err := s.collectionEntries(ctx, user)
	if err != nil {
		return nil, err
	}
	items := make([]*domain.Item, len(entries))
	for i, e := range entries {
		items[i] = e.Item
	}
	return s.collectionSuggester.Suggest(query, items), nil
}

// collectionEntries joins the user's annotations with their items, oldest
// annotation first. Items missing from the snapshot (drafts) are read from
// the store. Deleted items and items the user can no longer see are skipped.
func (s *CatalogService) collectionEntries(ctx context.Context, user *domain.User) ([]match.Entry, error) {
	if user == nil {
		return nil, domainerrors.Unauthorized("sign in to view your collection")
	}
	annotations, err := s.store.ListAnnotationsForUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list annotations: %w", err)
	}
	if len(annotations) == 0 {
		return []match.Entry{}, nil
	}

	items, err := s.items(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*domain.Item, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	entries := make([]match.Entry, 0, len(annotations))
	for _, a := range annotations {
		item, ok := byID[a.ItemID]
		if !ok {
			item, err = s.store.GetItem(ctx, a.ItemID)
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("get item %s: %w", a.ItemID, err)
			}
		}
		if !user.CanView(item) {
			continue
		}
		entries = append(entries, match.Entry{Item: item, Annotation: a})
	}
	return entries, nil
}

func (s *CatalogService) listParams(spec match.SortSpec, page, pageSize int) (match.SortSpec, int, int, error) {
	if spec == "" {
		spec = match.DefaultSort
	}
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = s.pageSize
	}
	if page < 1 || pageSize < 1 {
		return "", 0, 0, domainerrors.Validation("page and page_size must be at least 1").WithCause(match.ErrInvalidPage)
	}
	parsed, err := match.ParseSortSpec(string(spec))
	if err != nil {
		return "", 0, 0, domainerrors.Validation(err.Error())
	}
	return parsed, page, pageSize, nil
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/figureshelf/figureshelf-server/internal/domain"
	"github.com/figureshelf/figureshelf-server/internal/search"
	"github.com/figureshelf/figureshelf-server/internal/store"
)

// SearchService bridges the store and the Bleve index. The store calls
// IndexItem and DeleteItem after each item write.
type SearchService struct {
	store  store.Store
	index  *search.SearchIndex
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(store store.Store, index *search.SearchIndex, logger *slog.Logger) *SearchService {
	return &SearchService{store: store, index: index, logger: logger}
}

var _ store.SearchIndexer = (*SearchService)(nil)

// IndexItem indexes a published item and drops any other from the index.
func (s *SearchService) IndexItem(ctx context.Context, item *domain.Item) error {
	if item == nil {
		return nil
	}
	if !item.IsPublished() {
		return s.index.DeleteItem(ctx, item.ID)
	}
	return s.index.IndexItem(ctx, item)
}

// DeleteItem removes an item from the index.
func (s *SearchService) DeleteItem(ctx context.Context, itemID string) error {
	return s.index.DeleteItem(ctx, itemID)
}

// FullText runs a relevance-ranked search.
func (s *SearchService) FullText(ctx context.Context, params search.Params) (*search.Result, error) {
	res, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("full-text search: %w", err)
	}
	return res, nil
}

// DocumentCount returns the number of indexed items.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}

// ReindexAll rebuilds the index from every published item in the store.
// It returns the number of items indexed.
func (s *SearchService) ReindexAll(ctx context.Context) (int, error) {
	start := time.Now()

	items, err := s.store.ListItems(ctx, store.ItemFilter{
		Statuses: []domain.ItemStatus{domain.ItemStatusPublished},
	})
	if err != nil {
		return 0, fmt.Errorf("list published items: %w", err)
	}

	if err := s.index.Rebuild(); err != nil {
		return 0, fmt.Errorf("rebuild index: %w", err)
	}
	if err := s.index.IndexItems(ctx, items); err != nil {
		return 0, fmt.Errorf("index items: %w", err)
	}

	s.logger.Info("search index rebuilt",
		"items", len(items),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return len(items), nil
}

// EnsureIndexed reindexes when the index is empty but the store is not,
// which happens after a mapping version bump wipes the index.
func (s *SearchService) EnsureIndexed(ctx context.Context) error {
	count, err := s.index.DocumentCount()
	if err != nil {
		return fmt.Errorf("count indexed documents: %w", err)
	}
	if count > 0 {
		return nil
	}
	_, err = s.ReindexAll(ctx)
	return err
}

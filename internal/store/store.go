// Package store defines persistence for catalog items, users and collection
// annotations. internal/store/sqlite provides the implementation.
package store

import (
	"context"

	"github.com/figureshelf/figureshelf-server/internal/domain"
)

// ItemFilter narrows ListItems. Zero values mean "any".
type ItemFilter struct {
	Statuses   []domain.ItemStatus
	UploaderID string
}

// Store is everything the services persist.
type Store interface {
	// Lifecycle
	Close() error
	SetSearchIndexer(indexer SearchIndexer)

	// Items
	CreateItem(ctx context.Context, item *domain.Item) error
	GetItem(ctx context.Context, id string) (*domain.Item, error)
	UpdateItem(ctx context.Context, item *domain.Item) error
	DeleteItem(ctx context.Context, id string) error
	ListItems(ctx context.Context, filter ItemFilter) ([]*domain.Item, error)
	// ListAllItems returns every non-draft item, oldest first: the snapshot
	// the catalog engine computes over.
	ListAllItems(ctx context.Context) ([]*domain.Item, error)

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUserRole(ctx context.Context, id string, role domain.Role) error
	CountUsers(ctx context.Context) (int, error)

	// Annotations
	UpsertAnnotation(ctx context.Context, a *domain.Annotation) error
	GetAnnotation(ctx context.Context, userID, itemID string) (*domain.Annotation, error)
	DeleteAnnotation(ctx context.Context, userID, itemID string) error
	ListAnnotationsForUser(ctx context.Context, userID string) ([]*domain.Annotation, error)
}

// SearchIndexer keeps the full-text index in step with item writes.
// The store calls it after a successful commit; failures are logged, not
// returned, because the index can always be rebuilt from the store.
type SearchIndexer interface {
	IndexItem(ctx context.Context, item *domain.Item) error
	DeleteItem(ctx context.Context, itemID string) error
}

// NoopSearchIndexer is used until a real index is attached.
type NoopSearchIndexer struct{}

// IndexItem is a no-op.
func (NoopSearchIndexer) IndexItem(context.Context, *domain.Item) error { return nil }

// DeleteItem is a no-op.
func (NoopSearchIndexer) DeleteItem(context.Context, string) error { return nil }

// NewNoopSearchIndexer creates a new no-op search indexer.
func NewNoopSearchIndexer() SearchIndexer {
	return NoopSearchIndexer{}
}

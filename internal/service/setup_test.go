package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/figureshelf/figureshelf-server/internal/auth"
	"github.com/figureshelf/figureshelf-server/internal/domain"
	"github.com/figureshelf/figureshelf-server/internal/logger"
	"github.com/figureshelf/figureshelf-server/internal/search"
	"github.com/figureshelf/figureshelf-server/internal/store/sqlite"
	"github.com/figureshelf/figureshelf-server/internal/validation"
)

// testEnv wires every service against a temporary SQLite store and an
// in-memory search index.
type testEnv struct {
	store       *sqlite.Store
	index       *search.SearchIndex
	tokens      *auth.TokenService
	auth        *AuthService
	catalog     *CatalogService
	items       *ItemService
	annotations *AnnotationService
	search      *SearchService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := logger.Discard().Logger

	s, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	index, err := search.NewSearchIndex(search.Options{InMemory: true, Logger: log})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	key := make([]byte, auth.KeySize)
	tokens, err := auth.NewTokenService(key, time.Hour)
	require.NoError(t, err)

	v := validation.New()

	catalog, err := NewCatalogService(s, CatalogConfig{SuggestionLimit: 10, PageSize: 24, Collation: "en"}, log)
	require.NoError(t, err)

	searchSvc := NewSearchService(s, index, log)
	s.SetSearchIndexer(searchSvc)

	return &testEnv{
		store:       s,
		index:       index,
		tokens:      tokens,
		auth:        NewAuthService(s, tokens, v, log),
		catalog:     catalog,
		items:       NewItemService(s, catalog, v, log),
		annotations: NewAnnotationService(s, v, log),
		search:      searchSvc,
	}
}

// createUser stores a user with the given role directly.
func (e *testEnv) createUser(t *testing.T, id string, role domain.Role) *domain.User {
	t.Helper()
	u := &domain.User{
		Entity:      domain.Entity{ID: id},
		Email:       id + "@example.com",
		DisplayName: id,
		Role:        role,
	}
	u.InitTimestamps()
	require.NoError(t, e.store.CreateUser(context.Background(), u))
	return u
}

// publish stores a published item directly, bypassing the duplicate check.
// Creation times increase with each call so ordering is deterministic.
func (e *testEnv) publish(t *testing.T, id, name string, uploader *domain.User, tags ...string) *domain.Item {
	t.Helper()
	return e.storeItem(t, id, name, uploader, domain.ItemStatusPublished, tags...)
}

var itemClock = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func (e *testEnv) storeItem(t *testing.T, id, name string, uploader *domain.User, status domain.ItemStatus, tags ...string) *domain.Item {
	t.Helper()
	itemClock = itemClock.Add(time.Minute)
	item := &domain.Item{
		Entity:     domain.Entity{ID: id, CreatedAt: itemClock, UpdatedAt: itemClock},
		Name:       name,
		Tags:       tags,
		Category:   "Scale Figure",
		Scale:      "1/7",
		UploaderID: uploader.ID,
		Status:     status,
	}
	require.NoError(t, e.store.CreateItem(context.Background(), item))
	e.catalog.Invalidate()
	return item
}

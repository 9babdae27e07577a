package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/figureshelf/figureshelf-server/internal/domain"
	"github.com/figureshelf/figureshelf-server/internal/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(dbPath, logger.Discard().Logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	var journalMode string
	if err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("expected wal, got %s", journalMode)
	}

	var fk int
	if err := s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("expected foreign_keys=1, got %d", fk)
	}

	for _, table := range []string{"users", "items", "annotations"} {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestOpen_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	for range 2 {
		s, err := Open(dbPath, logger.Discard().Logger)
		if err != nil {
			t.Fatalf("open store: %v", err)
		}
		s.Close()
	}
}

// recordingIndexer captures index calls.
type recordingIndexer struct {
	mu      sync.Mutex
	indexed []string
	deleted []string
}

func (r *recordingIndexer) IndexItem(_ context.Context, item *domain.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.indexed = append(r.indexed, item.ID)
	return nil
}

func (r *recordingIndexer) DeleteItem(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, id)
	return nil
}

func TestSearchIndexerFollowsItemWrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	rec := &recordingIndexer{}
	s.SetSearchIndexer(rec)

	published := makeTestItem("item-1", "Miku Racing 2024")
	pending := makeTestItem("item-2", "Rem Crystal Dress")
	pending.Status = domain.ItemStatusPending

	for _, item := range []*domain.Item{published, pending} {
		if err := s.CreateItem(ctx, item); err != nil {
			t.Fatalf("CreateItem: %v", err)
		}
	}

	pending.Status = domain.ItemStatusPublished
	pending.UpdatedAt = time.Now()
	if err := s.UpdateItem(ctx, pending); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if err := s.DeleteItem(ctx, "item-1"); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}

	wantIndexed := []string{"item-1", "item-2"}
	wantDeleted := []string{"item-2", "item-1"}
	if len(rec.indexed) != 2 || rec.indexed[0] != wantIndexed[0] || rec.indexed[1] != wantIndexed[1] {
		t.Errorf("indexed: got %v, want %v", rec.indexed, wantIndexed)
	}
	if len(rec.deleted) != 2 || rec.deleted[0] != wantDeleted[0] || rec.deleted[1] != wantDeleted[1] {
		t.Errorf("deleted: got %v, want %v", rec.deleted, wantDeleted)
	}
}

package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/figureshelf/figureshelf-server/internal/domain"
	"github.com/figureshelf/figureshelf-server/internal/store"
)

func seedUserAndItem(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	if err := s.CreateUser(ctx, makeTestUser("user-1", "a@example.com")); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if err := s.CreateItem(ctx, makeTestItem("item-1", "Miku")); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
}

func makeTestAnnotation(userID, itemID string) *domain.Annotation {
	now := time.Now().UTC()
	return &domain.Annotation{
		UserID:       userID,
		ItemID:       itemID,
		Status:       domain.AnnotationOwned,
		Price:        "¥12,800",
		Store:        "AmiAmi",
		Score:        "9",
		PurchaseDate: "2024-06-01",
		Notes:        "box slightly dented",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestUpsertAndGetAnnotation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUserAndItem(t, s)

	a := makeTestAnnotation("user-1", "item-1")
	if err := s.UpsertAnnotation(ctx, a); err != nil {
		t.Fatalf("UpsertAnnotation: %v", err)
	}

	got, err := s.GetAnnotation(ctx, "user-1", "item-1")
	if err != nil {
		t.Fatalf("GetAnnotation: %v", err)
	}
	if got.Price != "¥12,800" || got.Store != "AmiAmi" || got.Status != domain.AnnotationOwned {
		t.Errorf("unexpected annotation: %+v", got)
	}

	// Second write updates fields but keeps the original CreatedAt.
	firstCreated := got.CreatedAt
	b := makeTestAnnotation("user-1", "item-1")
	b.Status = domain.AnnotationWished
	b.Price = ""
	b.CreatedAt = firstCreated.Add(time.Hour)
	b.UpdatedAt = firstCreated.Add(time.Hour)
	if err := s.UpsertAnnotation(ctx, b); err != nil {
		t.Fatalf("UpsertAnnotation: %v", err)
	}

	got, err = s.GetAnnotation(ctx, "user-1", "item-1")
	if err != nil {
		t.Fatalf("GetAnnotation: %v", err)
	}
	if got.Status != domain.AnnotationWished || got.Price != "" {
		t.Errorf("update not applied: %+v", got)
	}
	if !got.CreatedAt.Equal(firstCreated) {
		t.Errorf("CreatedAt changed: got %v, want %v", got.CreatedAt, firstCreated)
	}
}

func TestUpsertAnnotation_UnknownItem(t *testing.T) {
	s := newTestStore(t)
	seedUserAndItem(t, s)

	err := s.UpsertAnnotation(context.Background(), makeTestAnnotation("user-1", "item-missing"))
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteAnnotationAndCascade(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUserAndItem(t, s)

	if err := s.UpsertAnnotation(ctx, makeTestAnnotation("user-1", "item-1")); err != nil {
		t.Fatalf("UpsertAnnotation: %v", err)
	}
	if err := s.DeleteAnnotation(ctx, "user-1", "item-1"); err != nil {
		t.Fatalf("DeleteAnnotation: %v", err)
	}
	if err := s.DeleteAnnotation(ctx, "user-1", "item-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	// Deleting the item removes remaining annotations.
	if err := s.UpsertAnnotation(ctx, makeTestAnnotation("user-1", "item-1")); err != nil {
		t.Fatalf("UpsertAnnotation: %v", err)
	}
	if err := s.DeleteItem(ctx, "item-1"); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	list, err := s.ListAnnotationsForUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListAnnotationsForUser: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected cascade delete, got %d annotations", len(list))
	}
}

func TestListAnnotationsForUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUserAndItem(t, s)
	if err := s.CreateItem(ctx, makeTestItem("item-2", "Rem")); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	first := makeTestAnnotation("user-1", "item-2")
	second := makeTestAnnotation("user-1", "item-1")
	second.CreatedAt = first.CreatedAt.Add(time.Minute)
	for _, a := range []*domain.Annotation{first, second} {
		if err := s.UpsertAnnotation(ctx, a); err != nil {
			t.Fatalf("UpsertAnnotation: %v", err)
		}
	}

	list, err := s.ListAnnotationsForUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListAnnotationsForUser: %v", err)
	}
	if len(list) != 2 || list[0].ItemID != "item-2" || list[1].ItemID != "item-1" {
		t.Errorf("unexpected order: %+v", list)
	}

	other, err := s.ListAnnotationsForUser(ctx, "user-other")
	if err != nil {
		t.Fatalf("ListAnnotationsForUser: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("expected no annotations, got %d", len(other))
	}
}

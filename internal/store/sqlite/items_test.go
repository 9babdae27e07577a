package sqlite

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/figureshelf/figureshelf-server/internal/domain"
	"github.com/figureshelf/figureshelf-server/internal/store"
)

// makeTestItem creates a published item with sensible defaults.
func makeTestItem(id, name string) *domain.Item {
	now := time.Now().UTC()
	return &domain.Item{
		Entity:      domain.Entity{ID: id, CreatedAt: now, UpdatedAt: now},
		Name:        name,
		Tags:        []string{"Goodsmile", "Vocaloid"},
		Category:    "Scale Figure",
		Scale:       "1/7",
		AgeRating:   "All ages",
		ReleaseDate: "2024-05",
		Images:      []domain.ImageRef{{URL: "https://img.example/1.jpg", DeleteURL: "https://img.example/d/1", BlurHash: "LEHV6nWB2yk8"}},
		UploaderID:  "user-1",
		Status:      domain.ItemStatusPublished,
	}
}

func TestCreateAndGetItem(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	item := makeTestItem("item-1", "Hatsune Miku Racing 2024")
	if err := s.CreateItem(ctx, item); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	got, err := s.GetItem(ctx, "item-1")
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}

	if got.Name != item.Name {
		t.Errorf("Name: got %q, want %q", got.Name, item.Name)
	}
	if !reflect.DeepEqual(got.Tags, item.Tags) {
		t.Errorf("Tags: got %v, want %v", got.Tags, item.Tags)
	}
	if !reflect.DeepEqual(got.Images, item.Images) {
		t.Errorf("Images: got %v, want %v", got.Images, item.Images)
	}
	if got.Category != item.Category || got.Scale != item.Scale || got.AgeRating != item.AgeRating {
		t.Errorf("fields: got %+v", got)
	}
	if got.ReleaseDate != "2024-05" {
		t.Errorf("ReleaseDate: got %q", got.ReleaseDate)
	}
	if got.Status != domain.ItemStatusPublished {
		t.Errorf("Status: got %q", got.Status)
	}
	if !got.CreatedAt.Equal(item.CreatedAt) {
		t.Errorf("CreatedAt: got %v, want %v", got.CreatedAt, item.CreatedAt)
	}
}

func TestCreateItem_NilSlicesStoredEmpty(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	item := makeTestItem("item-1", "Bare")
	item.Tags = nil
	item.Images = nil
	if err := s.CreateItem(ctx, item); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	got, err := s.GetItem(ctx, "item-1")
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got.Tags == nil || len(got.Tags) != 0 {
		t.Errorf("Tags: got %#v, want empty slice", got.Tags)
	}
	if got.Images == nil || len(got.Images) != 0 {
		t.Errorf("Images: got %#v, want empty slice", got.Images)
	}
}

func TestCreateItem_Duplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateItem(ctx, makeTestItem("item-1", "A")); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	err := s.CreateItem(ctx, makeTestItem("item-1", "B"))
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestGetItem_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetItem(context.Background(), "item-missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateItem(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	item := makeTestItem("item-1", "Miku")
	if err := s.CreateItem(ctx, item); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	item.Name = "Miku Racing"
	item.Tags = []string{"Racing"}
	item.Status = domain.ItemStatusPending
	item.Touch()
	if err := s.UpdateItem(ctx, item); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}

	got, err := s.GetItem(ctx, "item-1")
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got.Name != "Miku Racing" || !reflect.DeepEqual(got.Tags, []string{"Racing"}) || got.Status != domain.ItemStatusPending {
		t.Errorf("update not applied: %+v", got)
	}

	missing := makeTestItem("item-missing", "x")
	if err := s.UpdateItem(ctx, missing); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteItem(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateItem(ctx, makeTestItem("item-1", "A")); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if err := s.DeleteItem(ctx, "item-1"); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	if _, err := s.GetItem(ctx, "item-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.DeleteItem(ctx, "item-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestListItems(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	seed := []struct {
		id       string
		status   domain.ItemStatus
		uploader string
	}{
		{"item-1", domain.ItemStatusPublished, "user-1"},
		{"item-2", domain.ItemStatusPending, "user-2"},
		{"item-3", domain.ItemStatusDraft, "user-1"},
		{"item-4", domain.ItemStatusPublished, "user-2"},
	}
	for i, sd := range seed {
		item := makeTestItem(sd.id, sd.id)
		item.Status = sd.status
		item.UploaderID = sd.uploader
		item.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		if err := s.CreateItem(ctx, item); err != nil {
			t.Fatalf("CreateItem: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter store.ItemFilter
		want   []string
	}{
		{"all newest first", store.ItemFilter{}, []string{"item-4", "item-3", "item-2", "item-1"}},
		{"pending only", store.ItemFilter{Statuses: []domain.ItemStatus{domain.ItemStatusPending}}, []string{"item-2"}},
		{"by uploader", store.ItemFilter{UploaderID: "user-1"}, []string{"item-3", "item-1"}},
		{"published by uploader", store.ItemFilter{
			Statuses:   []domain.ItemStatus{domain.ItemStatusPublished},
			UploaderID: "user-2",
		}, []string{"item-4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := s.ListItems(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListItems: %v", err)
			}
			if got := itemIDs(items); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	all, err := s.ListAllItems(ctx)
	if err != nil {
		t.Fatalf("ListAllItems: %v", err)
	}
	if got, want := itemIDs(all), []string{"item-1", "item-2", "item-4"}; !reflect.DeepEqual(got, want) {
		t.Errorf("ListAllItems: got %v, want %v", got, want)
	}
}

func itemIDs(items []*domain.Item) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}

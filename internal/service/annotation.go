package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/figureshelf/figureshelf-server/internal/domain"
	domainerrors "github.com/figureshelf/figureshelf-server/internal/errors"
	"github.com/figureshelf/figureshelf-server/internal/store"
	"github.com/figureshelf/figureshelf-server/internal/validation"
)

// AnnotationService manages a user's own collection entries.
type AnnotationService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewAnnotationService creates a new annotation service.
func NewAnnotationService(store store.Store, validator *validation.Validator, logger *slog.Logger) *AnnotationService {
	return &AnnotationService{store: store, validator: validator, logger: logger}
}

// AnnotationRequest sets a collection entry. Price and score are free text;
// sorting parses them.
type AnnotationRequest struct {
	Status       domain.AnnotationStatus `json:"status" validate:"required,oneof=owned ordered wished"`
	Price        string                  `json:"price" validate:"max=64"`
	Store        string                  `json:"store" validate:"max=100"`
	Score        string                  `json:"score" validate:"max=32"`
	PurchaseDate string                  `json:"purchase_date" validate:"max=32"`
	Notes        string                  `json:"notes" validate:"max=2000"`
}

// Upsert creates or replaces the user's entry for an item they can see.
func (s *AnnotationService) Upsert(ctx context.Context, user *domain.User, itemID string, req AnnotationRequest) (*domain.Annotation, error) {
	if user == nil {
		return nil, domainerrors.Unauthorized("sign in to manage your collection")
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, storeError(err, "get item", "item")
	}
	if !user.CanView(item) {
		return nil, domainerrors.NotFound("item not found")
	}

	now := time.Now().UTC()
	a := &domain.Annotation{
		UserID:       user.ID,
		ItemID:       item.ID,
		Status:       req.Status,
		Price:        strings.TrimSpace(req.Price),
		Store:        strings.TrimSpace(req.Store),
		Score:        strings.TrimSpace(req.Score),
		PurchaseDate: strings.TrimSpace(req.PurchaseDate),
		Notes:        req.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.UpsertAnnotation(ctx, a); err != nil {
		return nil, storeError(err, "upsert annotation", "item")
	}

	// The store keeps the original creation time on update.
	saved, err := s.store.GetAnnotation(ctx, user.ID, item.ID)
	if err != nil {
		return nil, storeError(err, "get annotation", "collection entry")
	}

	s.logger.Debug("collection entry saved",
		"user_id", user.ID,
		"item_id", item.ID,
		"status", saved.Status,
	)
	return saved, nil
}

// Get returns the user's entry for an item.
func (s *AnnotationService) Get(ctx context.Context, user *domain.User, itemID string) (*domain.Annotation, error) {
	if user == nil {
		return nil, domainerrors.Unauthorized("sign in to manage your collection")
	}
	a, err := s.store.GetAnnotation(ctx, user.ID, itemID)
	if err != nil {
		return nil, storeError(err, "get annotation", "collection entry")
	}
	return a, nil
}

// Delete removes the user's entry for an item.
func (s *AnnotationService) Delete(ctx context.Context, user *domain.User, itemID string) error {
	if user == nil {
		return domainerrors.Unauthorized("sign in to manage your collection")
	}
	if err := s.store.DeleteAnnotation(ctx, user.ID, itemID); err != nil {
		return storeError(err, "delete annotation", "collection entry")
	}
	return nil
}

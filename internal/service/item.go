package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/figureshelf/figureshelf-server/internal/domain"
	domainerrors "github.com/figureshelf/figureshelf-server/internal/errors"
	"github.com/figureshelf/figureshelf-server/internal/id"
	"github.com/figureshelf/figureshelf-server/internal/store"
	"github.com/figureshelf/figureshelf-server/internal/validation"
)

// ItemService manages catalog submissions and the review queue.
type ItemService struct {
	store     store.Store
	catalog   *CatalogService
	validator *validation.Validator
	logger    *slog.Logger
}

// NewItemService creates a new item service.
func NewItemService(
	store store.Store,
	catalog *CatalogService,
	validator *validation.Validator,
	logger *slog.Logger,
) *ItemService {
	return &ItemService{
		store:     store,
		catalog:   catalog,
		validator: validator,
		logger:    logger,
	}
}

// CreateItemRequest is a new catalog submission.
type CreateItemRequest struct {
	Name        string            `json:"name" validate:"required,notblank,max=200"`
	Tags        []string          `json:"tags" validate:"max=30,dive,notblank,max=50"`
	Category    string            `json:"category" validate:"max=100"`
	Scale       string            `json:"scale" validate:"max=50"`
	AgeRating   string            `json:"age_rating" validate:"max=20"`
	ReleaseDate string            `json:"release_date" validate:"max=32"`
	Images      []domain.ImageRef `json:"images" validate:"max=10"`
	// Draft keeps the item private to the uploader.
	Draft bool `json:"draft"`
	// Force skips the duplicate check after the user has seen the candidates.
	Force bool `json:"force"`
}

// UpdateItemRequest changes an item. Nil fields are left alone.
type UpdateItemRequest struct {
	Name        *string            `json:"name" validate:"omitempty,notblank,max=200"`
	Tags        *[]string          `json:"tags" validate:"omitempty,max=30,dive,notblank,max=50"`
	Category    *string            `json:"category" validate:"omitempty,max=100"`
	Scale       *string            `json:"scale" validate:"omitempty,max=50"`
	AgeRating   *string            `json:"age_rating" validate:"omitempty,max=20"`
	ReleaseDate *string            `json:"release_date" validate:"omitempty,max=32"`
	Images      *[]domain.ImageRef `json:"images" validate:"omitempty,max=10"`
	Force       bool               `json:"force"`
}

// Create adds an item to the catalog. Unless req.Force is set, a name that
// looks like existing items is rejected with DUPLICATE_SUSPECTED and the
// candidates as details. Members' submissions wait in the review queue;
// moderators publish directly.
func (s *ItemService) Create(ctx context.Context, user *domain.User, req CreateItemRequest) (*domain.Item, error) {
	if user == nil {
		return nil, domainerrors.Unauthorized("sign in to submit items")
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if !req.Force && !req.Draft {
		if err := s.checkDuplicates(ctx, name, ""); err != nil {
			return nil, err
		}
	}

	itemID, err := id.Generate(id.PrefixItem)
	if err != nil {
		return nil, fmt.Errorf("generate item ID: %w", err)
	}

	item := &domain.Item{
		Entity:      domain.Entity{ID: itemID},
		Name:        name,
		Tags:        req.Tags,
		Category:    strings.TrimSpace(req.Category),
		Scale:       strings.TrimSpace(req.Scale),
		AgeRating:   strings.TrimSpace(req.AgeRating),
		ReleaseDate: strings.TrimSpace(req.ReleaseDate),
		Images:      req.Images,
		UploaderID:  user.ID,
		Status:      initialStatus(user, req.Draft),
	}
	item.NormalizeTags()
	item.InitTimestamps()

	if err := s.store.CreateItem(ctx, item); err != nil {
		return nil, storeError(err, "create item", "item")
	}
	s.catalog.Invalidate()

	s.logger.Info("item created",
		"item_id", item.ID,
		"uploader_id", user.ID,
		"status", item.Status,
		"forced", req.Force,
	)

	return item, nil
}

func initialStatus(user *domain.User, draft bool) domain.ItemStatus {
	switch {
	case draft:
		return domain.ItemStatusDraft
	case user.IsModerator():
		return domain.ItemStatusPublished
	default:
		return domain.ItemStatusPending
	}
}

func (s *ItemService) checkDuplicates(ctx context.Context, name, excludeID string) error {
	report, err := s.catalog.findDuplicates(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if len(report.Candidates) == 0 {
		return nil
	}
	return domainerrors.DuplicateSuspected("similar items already exist", report)
}

// Get returns an item the user may see. Hidden items look missing.
func (s *ItemService) Get(ctx context.Context, user *domain.User, itemID string) (*domain.Item, error) {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, storeError(err, "get item", "item")
	}
	if !user.CanView(item) {
		return nil, domainerrors.NotFound("item not found")
	}
	return item, nil
}

// Update edits an item. Renames go through the duplicate check unless
// req.Force is set.
func (s *ItemService) Update(ctx context.Context, user *domain.User, itemID string, req UpdateItemRequest) (*domain.Item, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	item, err := s.modifiable(ctx, user, itemID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if !req.Force && !item.IsDraft() && !strings.EqualFold(name, item.Name) {
			if err := s.checkDuplicates(ctx, name, item.ID); err != nil {
				return nil, err
			}
		}
		item.Name = name
	}
	if req.Tags != nil {
		item.Tags = *req.Tags
		item.NormalizeTags()
	}
	if req.Category != nil {
		item.Category = strings.TrimSpace(*req.Category)
	}
	if req.Scale != nil {
		item.Scale = strings.TrimSpace(*req.Scale)
	}
	if req.AgeRating != nil {
		item.AgeRating = strings.TrimSpace(*req.AgeRating)
	}
	if req.ReleaseDate != nil {
		item.ReleaseDate = strings.TrimSpace(*req.ReleaseDate)
	}
	if req.Images != nil {
		item.Images = *req.Images
	}
	item.Touch()

	if err := s.store.UpdateItem(ctx, item); err != nil {
		return nil, storeError(err, "update item", "item")
	}
	s.catalog.Invalidate()

	s.logger.Info("item updated", "item_id", item.ID, "by", user.ID)
	return item, nil
}

// Delete removes an item and every annotation on it.
func (s *ItemService) Delete(ctx context.Context, user *domain.User, itemID string) error {
	item, err := s.modifiable(ctx, user, itemID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteItem(ctx, item.ID); err != nil {
		return storeError(err, "delete item", "item")
	}
	s.catalog.Invalidate()

	s.logger.Info("item deleted", "item_id", item.ID, "by", user.ID)
	return nil
}

// Submit sends a draft (new, or rejected in review) back into the catalog
// flow: pending for members, published for moderators. The duplicate check
// runs here since drafts skip it on creation.
func (s *ItemService) Submit(ctx context.Context, user *domain.User, itemID string, force bool) (*domain.Item, error) {
	item, err := s.modifiable(ctx, user, itemID)
	if err != nil {
		return nil, err
	}
	if !item.IsDraft() {
		return nil, domainerrors.Conflict("only drafts can be submitted")
	}
	if !force {
		if err := s.checkDuplicates(ctx, item.Name, item.ID); err != nil {
			return nil, err
		}
	}

	item.Status = initialStatus(user, false)
	item.Touch()
	if err := s.store.UpdateItem(ctx, item); err != nil {
		return nil, storeError(err, "update item", "item")
	}
	s.catalog.Invalidate()

	s.logger.Info("item submitted", "item_id", item.ID, "status", item.Status, "by", user.ID)
	return item, nil
}

// ListUploads returns the user's own submissions in every status, newest first.
func (s *ItemService) ListUploads(ctx context.Context, user *domain.User) ([]*domain.Item, error) {
	if user == nil {
		return nil, domainerrors.Unauthorized("sign in to list uploads")
	}
	items, err := s.store.ListItems(ctx, store.ItemFilter{UploaderID: user.ID})
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	return items, nil
}

// ListPending returns the review queue, newest first.
func (s *ItemService) ListPending(ctx context.Context, user *domain.User) ([]*domain.Item, error) {
	if !isModerator(user) {
		return nil, domainerrors.Forbidden("moderator access required")
	}
	items, err := s.store.ListItems(ctx, store.ItemFilter{
		Statuses: []domain.ItemStatus{domain.ItemStatusPending},
	})
	if err != nil {
		return nil, fmt.Errorf("list pending items: %w", err)
	}
	return items, nil
}

// Approve publishes a pending item.
func (s *ItemService) Approve(ctx context.Context, user *domain.User, itemID string) (*domain.Item, error) {
	return s.review(ctx, user, itemID, domain.ItemStatusPublished, "")
}

// Reject returns a pending item to its uploader as a draft.
func (s *ItemService) Reject(ctx context.Context, user *domain.User, itemID, reason string) (*domain.Item, error) {
	return s.review(ctx, user, itemID, domain.ItemStatusDraft, reason)
}

func (s *ItemService) review(ctx context.Context, user *domain.User, itemID string, to domain.ItemStatus, reason string) (*domain.Item, error) {
	if !isModerator(user) {
		return nil, domainerrors.Forbidden("moderator access required")
	}

	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, storeError(err, "get item", "item")
	}
	if item.Status != domain.ItemStatusPending {
		return nil, domainerrors.Conflict("item is not awaiting review")
	}

	item.Status = to
	item.Touch()
	if err := s.store.UpdateItem(ctx, item); err != nil {
		return nil, storeError(err, "update item", "item")
	}
	s.catalog.Invalidate()

	s.logger.Info("item reviewed",
		"item_id", item.ID,
		"status", to,
		"by", user.ID,
		"reason", reason,
	)
	return item, nil
}

func (s *ItemService) modifiable(ctx context.Context, user *domain.User, itemID string) (*domain.Item, error) {
	if user == nil {
		return nil, domainerrors.Unauthorized("sign in to edit items")
	}
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, storeError(err, "get item", "item")
	}
	if !user.CanView(item) {
		return nil, domainerrors.NotFound("item not found")
	}
	if !user.CanModify(item) {
		return nil, domainerrors.Forbidden("you cannot modify this item")
	}
	return item, nil
}

func isModerator(user *domain.User) bool {
	return user != nil && user.IsModerator()
}

package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/figureshelf/figureshelf-server/internal/domain"
	domainerrors "github.com/figureshelf/figureshelf-server/internal/errors"
	"github.com/figureshelf/figureshelf-server/internal/match"
	"github.com/figureshelf/figureshelf-server/internal/service"
)

func (s *Server) registerItemRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listItems",
		Method:      http.MethodGet,
		Path:        "/api/v1/items",
		Summary:     "List catalog items",
		Description: "Filters published items with a keyword query, sorts and paginates them",
		Tags:        []string{"Items"},
	}, s.handleListItems)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createItem",
		Method:        http.MethodPost,
		Path:          "/api/v1/items",
		Summary:       "Submit item",
		Description:   "Adds an item to the catalog. Names that look like existing items are rejected with DUPLICATE_SUSPECTED unless force is set.",
		Tags:          []string{"Items"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateItem)

	huma.Register(s.api, huma.Operation{
		OperationID: "findDuplicates",
		Method:      http.MethodPost,
		Path:        "/api/v1/items/duplicates",
		Summary:     "Find duplicates",
		Description: "Ranks existing items that look like the same collectible as the proposed name",
		Tags:        []string{"Items"},
	}, s.handleFindDuplicates)

	huma.Register(s.api, huma.Operation{
		OperationID: "getItem",
		Method:      http.MethodGet,
		Path:        "/api/v1/items/{id}",
		Summary:     "Get item",
		Description: "Returns an item. Drafts and pending items are only visible to their uploader and moderators.",
		Tags:        []string{"Items"},
	}, s.handleGetItem)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateItem",
		Method:      http.MethodPatch,
		Path:        "/api/v1/items/{id}",
		Summary:     "Update item",
		Description: "Edits an item. Renames go through the duplicate check unless force is set.",
		Tags:        []string{"Items"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateItem)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteItem",
		Method:        http.MethodDelete,
		Path:          "/api/v1/items/{id}",
		Summary:       "Delete item",
		Description:   "Deletes an item and every collection entry pointing at it",
		Tags:          []string{"Items"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteItem)

	huma.Register(s.api, huma.Operation{
		OperationID: "submitItem",
		Method:      http.MethodPost,
		Path:        "/api/v1/items/{id}/submit",
		Summary:     "Submit draft",
		Description: "Sends a draft into review (or straight to the catalog for moderators)",
		Tags:        []string{"Items"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSubmitItem)

	huma.Register(s.api, huma.Operation{
		OperationID: "listUploads",
		Method:      http.MethodGet,
		Path:        "/api/v1/me/uploads",
		Summary:     "List my uploads",
		Description: "Returns the caller's submissions in every status, newest first",
		Tags:        []string{"Items"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListUploads)
}

// === DTOs ===

// ListItemsInput contains catalog listing parameters.
type ListItemsInput struct {
	Query    string `query:"q" doc:"Keywords; wrap a phrase in {braces}"`
	Logic    string `query:"logic" doc:"and (default) or or"`
	Sort     string `query:"sort" doc:"Sort order, e.g. name_asc, price_desc, created_desc"`
	Page     int    `query:"page" doc:"1-based page number"`
	PageSize int    `query:"page_size" doc:"Items per page"`
}

// ItemListOutput wraps a catalog page for Huma.
type ItemListOutput struct {
	Body *service.SearchResult
}

// CreateItemRequest is the request body for submitting an item.
type CreateItemRequest struct {
	Name        string            `json:"name" maxLength:"200" doc:"Display name"`
	Tags        []string          `json:"tags,omitempty" maxItems:"30" doc:"Series, character and maker tags"`
	Category    string            `json:"category,omitempty" maxLength:"100" doc:"Product line, e.g. Scale Figure"`
	Scale       string            `json:"scale,omitempty" maxLength:"50" doc:"Scale, e.g. 1/7"`
	AgeRating   string            `json:"age_rating,omitempty" maxLength:"20" doc:"Age rating"`
	ReleaseDate string            `json:"release_date,omitempty" maxLength:"32" doc:"Release date as typed, e.g. 2024-05"`
	Images      []domain.ImageRef `json:"images,omitempty" maxItems:"10" doc:"Uploaded images"`
	Draft       bool              `json:"draft,omitempty" doc:"Keep the item private to the uploader"`
	Force       bool              `json:"force,omitempty" doc:"Skip the duplicate check"`
}

// CreateItemInput wraps the create request for Huma.
type CreateItemInput struct {
	Body CreateItemRequest
}

// UpdateItemRequest is the request body for editing an item. Omitted fields
// are left alone.
type UpdateItemRequest struct {
	Name        *string            `json:"name,omitempty" maxLength:"200" doc:"Display name"`
	Tags        *[]string          `json:"tags,omitempty" maxItems:"30" doc:"Replacement tag list"`
	Category    *string            `json:"category,omitempty" maxLength:"100" doc:"Product line"`
	Scale       *string            `json:"scale,omitempty" maxLength:"50" doc:"Scale"`
	AgeRating   *string            `json:"age_rating,omitempty" maxLength:"20" doc:"Age rating"`
	ReleaseDate *string            `json:"release_date,omitempty" maxLength:"32" doc:"Release date"`
	Images      *[]domain.ImageRef `json:"images,omitempty" maxItems:"10" doc:"Replacement image list"`
	Force       bool               `json:"force,omitempty" doc:"Skip the duplicate check on rename"`
}

// UpdateItemInput wraps the update request for Huma.
type UpdateItemInput struct {
	ID   string `path:"id" doc:"Item ID"`
	Body UpdateItemRequest
}

// ItemIDInput addresses a single item.
type ItemIDInput struct {
	ID string `path:"id" doc:"Item ID"`
}

// SubmitItemInput addresses a draft to submit.
type SubmitItemInput struct {
	ID    string `path:"id" doc:"Item ID"`
	Force bool   `query:"force" doc:"Skip the duplicate check"`
}

// ItemOutput wraps an item for Huma.
type ItemOutput struct {
	Body *domain.Item
}

// ItemsResponse is a plain list of items.
type ItemsResponse struct {
	Items []*domain.Item `json:"items" doc:"Items"`
}

// ItemsOutput wraps an item list for Huma.
type ItemsOutput struct {
	Body ItemsResponse
}

// DuplicatesRequest is the request body for a duplicate check.
type DuplicatesRequest struct {
	Name string `json:"name" minLength:"1" maxLength:"200" doc:"Proposed item name"`
}

// DuplicatesInput wraps the duplicate check request for Huma.
type DuplicatesInput struct {
	Body DuplicatesRequest
}

// DuplicatesOutput wraps the duplicate report for Huma.
type DuplicatesOutput struct {
	Body *service.DuplicateReport
}

// === Handlers ===

func (s *Server) handleListItems(ctx context.Context, input *ListItemsInput) (*ItemListOutput, error) {
	logic, err := parseLogic(input.Logic)
	if err != nil {
		return nil, err
	}

	res, err := s.services.Catalog.Search(ctx, service.SearchRequest{
		Query:    input.Query,
		Logic:    logic,
		Sort:     match.SortSpec(input.Sort),
		Page:     input.Page,
		PageSize: input.PageSize,
	})
	if err != nil {
		return nil, err
	}
	return &ItemListOutput{Body: res}, nil
}

func (s *Server) handleCreateItem(ctx context.Context, input *CreateItemInput) (*ItemOutput, error) {
	user, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	b := input.Body
	item, err := s.services.Item.Create(ctx, user, service.CreateItemRequest{
		Name:        b.Name,
		Tags:        b.Tags,
		Category:    b.Category,
		Scale:       b.Scale,
		AgeRating:   b.AgeRating,
		ReleaseDate: b.ReleaseDate,
		Images:      b.Images,
		Draft:       b.Draft,
		Force:       b.Force,
	})
	if err != nil {
		return nil, err
	}
	return &ItemOutput{Body: item}, nil
}

func (s *Server) handleFindDuplicates(ctx context.Context, input *DuplicatesInput) (*DuplicatesOutput, error) {
	report, err := s.services.Catalog.FindDuplicates(ctx, input.Body.Name)
	if err != nil {
		return nil, err
	}
	return &DuplicatesOutput{Body: report}, nil
}

func (s *Server) handleGetItem(ctx context.Context, input *ItemIDInput) (*ItemOutput, error) {
	item, err := s.services.Item.Get(ctx, currentUser(ctx), input.ID)
	if err != nil {
		return nil, err
	}
	return &ItemOutput{Body: item}, nil
}

func (s *Server) handleUpdateItem(ctx context.Context, input *UpdateItemInput) (*ItemOutput, error) {
	user, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	b := input.Body
	item, err := s.services.Item.Update(ctx, user, input.ID, service.UpdateItemRequest{
		Name:        b.Name,
		Tags:        b.Tags,
		Category:    b.Category,
		Scale:       b.Scale,
		AgeRating:   b.AgeRating,
		ReleaseDate: b.ReleaseDate,
		Images:      b.Images,
		Force:       b.Force,
	})
	if err != nil {
		return nil, err
	}
	return &ItemOutput{Body: item}, nil
}

func (s *Server) handleDeleteItem(ctx context.Context, input *ItemIDInput) (*struct{}, error) {
	user, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.services.Item.Delete(ctx, user, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Server) handleSubmitItem(ctx context.Context, input *SubmitItemInput) (*ItemOutput, error) {
	user, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	item, err := s.services.Item.Submit(ctx, user, input.ID, input.Force)
	if err != nil {
		return nil, err
	}
	return &ItemOutput{Body: item}, nil
}

func (s *Server) handleListUploads(ctx context.Context, _ *struct{}) (*ItemsOutput, error) {
	user, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.services.Item.ListUploads(ctx, user)
	if err != nil {
		return nil, err
	}
	return &ItemsOutput{Body: ItemsResponse{Items: items}}, nil
}

// === Helpers ===

func parseLogic(s string) (match.Logic, error) {
	logic, err := match.ParseLogic(s)
	if err != nil {
		return "", domainerrors.Validation(err.Error())
	}
	return logic, nil
}

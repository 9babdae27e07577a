package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/figureshelf/figureshelf-server/internal/domain"
	"github.com/figureshelf/figureshelf-server/internal/match"
	"github.com/figureshelf/figureshelf-server/internal/service"
)

func (s *Server) registerCollectionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listCollection",
		Method:      http.MethodGet,
		Path:        "/api/v1/me/collection",
		Summary:     "List my collection",
		Description: "Filters the caller's owned, ordered and wished items. Keywords also match store and price.",
		Tags:        []string{"Collection"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListCollection)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCollectionEntry",
		Method:      http.MethodGet,
		Path:        "/api/v1/me/collection/{itemID}",
		Summary:     "Get collection entry",
		Tags:        []string{"Collection"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCollectionEntry)

	huma.Register(s.api, huma.Operation{
		OperationID: "putCollectionEntry",
		Method:      http.MethodPut,
		Path:        "/api/v1/me/collection/{itemID}",
		Summary:     "Add or update collection entry",
		Tags:        []string{"Collection"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handlePutCollectionEntry)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteCollectionEntry",
		Method:        http.MethodDelete,
		Path:          "/api/v1/me/collection/{itemID}",
		Summary:       "Remove collection entry",
		Tags:          []string{"Collection"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteCollectionEntry)
}

// === DTOs ===

// ListCollectionInput contains collection query parameters.
type ListCollectionInput struct {
	Query    string `query:"q" doc:"Keywords; wrap a phrase in {braces}"`
	Logic    string `query:"logic" doc:"and (default) or or"`
	Status   string `query:"status" enum:"owned,ordered,wished" doc:"Only entries with this status"`
	Sort     string `query:"sort" doc:"Sort order, e.g. price_desc, score_desc, purchase_date_desc"`
	Page     int    `query:"page" doc:"1-based page number"`
	PageSize int    `query:"page_size" doc:"Entries per page"`
}

// CollectionOutput wraps a collection page for Huma.
type CollectionOutput struct {
	Body *service.CollectionResult
}

// CollectionEntryInput addresses one entry.
type CollectionEntryInput struct {
	ItemID string `path:"itemID" doc:"Item ID"`
}

// AnnotationBody is the request body for a collection entry.
type AnnotationBody struct {
	Status       string `json:"status" enum:"owned,ordered,wished" doc:"Collection status"`
	Price        string `json:"price,omitempty" maxLength:"64" doc:"Price as typed, e.g. ¥24,800"`
	Store        string `json:"store,omitempty" maxLength:"100" doc:"Where it was bought"`
	Score        string `json:"score,omitempty" maxLength:"32" doc:"Personal score, e.g. 9/10"`
	PurchaseDate string `json:"purchase_date,omitempty" maxLength:"32" doc:"Purchase date as typed"`
	Notes        string `json:"notes,omitempty" maxLength:"2000" doc:"Free-form notes"`
}

// PutCollectionEntryInput wraps the upsert request for Huma.
type PutCollectionEntryInput struct {
	ItemID string `path:"itemID" doc:"Item ID"`
	Body   AnnotationBody
}

// AnnotationOutput wraps an annotation for Huma.
type AnnotationOutput struct {
	Body *domain.Annotation
}

// === Handlers ===

func (s *Server) handleListCollection(ctx context.Context, input *ListCollectionInput) (*CollectionOutput, error) {
	user, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	logic, err := parseLogic(input.Logic)
	if err != nil {
		return nil, err
	}

	res, err := s.services.Catalog.Collection(ctx, user, service.CollectionRequest{
		Query:    input.Query,
		Logic:    logic,
		Status:   domain.AnnotationStatus(input.Status),
		Sort:     match.SortSpec(input.Sort),
		Page:     input.Page,
		PageSize: input.PageSize,
	})
	if err != nil {
		return nil, err
	}
	return &CollectionOutput{Body: res}, nil
}

func (s *Server) handleGetCollectionEntry(ctx context.Context, input *CollectionEntryInput) (*AnnotationOutput, error) {
	user, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	a, err := s.services.Annotation.Get(ctx, user, input.ItemID)
	if err != nil {
		return nil, err
	}
	return &AnnotationOutput{Body: a}, nil
}

func (s *Server) handlePutCollectionEntry(ctx context.Context, input *PutCollectionEntryInput) (*AnnotationOutput, error) {
	user, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	b := input.Body
	a, err := s.services.Annotation.Upsert(ctx, user, input.ItemID, service.AnnotationRequest{
		Status:       domain.AnnotationStatus(b.Status),
		Price:        b.Price,
		Store:        b.Store,
		Score:        b.Score,
		PurchaseDate: b.PurchaseDate,
		Notes:        b.Notes,
	})
	if err != nil {
		return nil, err
	}
	return &AnnotationOutput{Body: a}, nil
}

func (s *Server) handleDeleteCollectionEntry(ctx context.Context, input *CollectionEntryInput) (*struct{}, error) {
	user, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.services.Annotation.Delete(ctx, user, input.ItemID); err != nil {
		return nil, err
	}
	return nil, nil
}

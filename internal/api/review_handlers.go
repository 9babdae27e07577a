package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerReviewRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listPendingItems",
		Method:      http.MethodGet,
		Path:        "/api/v1/review/items",
		Summary:     "List review queue",
		Description: "Returns items waiting for moderation, oldest first. Moderators only.",
		Tags:        []string{"Review"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListPending)

	huma.Register(s.api, huma.Operation{
		OperationID: "approveItem",
		Method:      http.MethodPost,
		Path:        "/api/v1/review/items/{id}/approve",
		Summary:     "Approve item",
		Description: "Publishes a pending item",
		Tags:        []string{"Review"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleApproveItem)

	huma.Register(s.api, huma.Operation{
		OperationID: "rejectItem",
		Method:      http.MethodPost,
		Path:        "/api/v1/review/items/{id}/reject",
		Summary:     "Reject item",
		Description: "Sends a pending item back to its uploader as a draft",
		Tags:        []string{"Review"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRejectItem)
}

// RejectItemRequest carries an optional reason shown in the server log.
type RejectItemRequest struct {
	Reason string `json:"reason,omitempty" maxLength:"500" doc:"Why the item was rejected"`
}

// RejectItemInput wraps the reject request for Huma.
type RejectItemInput struct {
	ID   string             `path:"id" doc:"Item ID"`
	Body *RejectItemRequest `required:"false"`
}

func (s *Server) handleListPending(ctx context.Context, _ *struct{}) (*ItemsOutput, error) {
	user, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.services.Item.ListPending(ctx, user)
	if err != nil {
		return nil, err
	}
	return &ItemsOutput{Body: ItemsResponse{Items: items}}, nil
}

func (s *Server) handleApproveItem(ctx context.Context, input *ItemIDInput) (*ItemOutput, error) {
	user, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	item, err := s.services.Item.Approve(ctx, user, input.ID)
	if err != nil {
		return nil, err
	}
	return &ItemOutput{Body: item}, nil
}

func (s *Server) handleRejectItem(ctx context.Context, input *RejectItemInput) (*ItemOutput, error) {
	user, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	var reason string
	if input.Body != nil {
		reason = input.Body.Reason
	}
	item, err := s.services.Item.Reject(ctx, user, input.ID, reason)
	if err != nil {
		return nil, err
	}
	return &ItemOutput{Body: item}, nil
}

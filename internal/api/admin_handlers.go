package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/figureshelf/figureshelf-server/internal/domain"
)

func (s *Server) registerAdminRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "setUserRole",
		Method:      http.MethodPut,
		Path:        "/api/v1/admin/users/{id}/role",
		Summary:     "Set user role",
		Description: "Promotes or demotes a user. Admins cannot change their own role.",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSetUserRole)

	huma.Register(s.api, huma.Operation{
		OperationID: "reindexSearch",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/search/reindex",
		Summary:     "Rebuild search index",
		Description: "Drops the full-text index and re-indexes every published item",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleReindexSearch)
}

// SetRoleRequest is the request body for changing a role.
type SetRoleRequest struct {
	Role string `json:"role" enum:"member,moderator,admin" doc:"New role"`
}

// SetRoleInput wraps the role change for Huma.
type SetRoleInput struct {
	ID   string `path:"id" doc:"User ID"`
	Body SetRoleRequest
}

// ReindexResponse reports how many items were indexed.
type ReindexResponse struct {
	Indexed int `json:"indexed" doc:"Items indexed"`
}

// ReindexOutput wraps the reindex result for Huma.
type ReindexOutput struct {
	Body ReindexResponse
}

func (s *Server) handleSetUserRole(ctx context.Context, input *SetRoleInput) (*UserOutput, error) {
	admin, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.services.Auth.SetRole(ctx, admin, input.ID, domain.Role(input.Body.Role))
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: user}, nil
}

func (s *Server) handleReindexSearch(ctx context.Context, _ *struct{}) (*ReindexOutput, error) {
	admin, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	n, err := s.services.Search.ReindexAll(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("search index rebuilt", "items", n, "admin_id", admin.ID)
	return &ReindexOutput{Body: ReindexResponse{Indexed: n}}, nil
}

package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/figureshelf/figureshelf-server/internal/domain"
)

func TestAdmin_SetRole(t *testing.T) {
	ts := setupTestServer(t)
	_, adminAuth := ts.createUser(t, "user-admin", domain.RoleAdmin)
	member, memberAuth := ts.createUser(t, "user-member", domain.RoleMember)

	resp := ts.api.Put("/api/v1/admin/users/"+member.ID+"/role", memberAuth, map[string]any{"role": "admin"})
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Put("/api/v1/admin/users/"+member.ID+"/role", adminAuth, map[string]any{"role": "moderator"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, domain.RoleModerator, decode[domain.User](t, resp).Role)

	resp = ts.api.Put("/api/v1/admin/users/"+member.ID+"/role", adminAuth, map[string]any{"role": "overlord"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = ts.api.Put("/api/v1/admin/users/user-missing/role", adminAuth, map[string]any{"role": "member"})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestAdmin_Reindex(t *testing.T) {
	ts := setupTestServer(t)
	admin, adminAuth := ts.createUser(t, "user-admin", domain.RoleAdmin)
	ts.publish(t, "item-1", "Yae Miko", admin)
	ts.publish(t, "item-2", "Nahida", admin)

	resp := ts.api.Post("/api/v1/admin/search/reindex")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Post("/api/v1/admin/search/reindex", adminAuth)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, 2, decode[ReindexResponse](t, resp).Indexed)
}

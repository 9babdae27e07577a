package api

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/figureshelf/figureshelf-server/internal/domain"
	"github.com/figureshelf/figureshelf-server/internal/match"
	"github.com/figureshelf/figureshelf-server/internal/search"
)

func TestSuggest(t *testing.T) {
	ts := setupTestServer(t)
	user, auth := ts.createUser(t, "user-1", domain.RoleModerator)
	ts.publish(t, "item-1", "Hatsune Miku Racing 2019", user, "Vocaloid")
	ts.publish(t, "item-2", "Rem Wedding Dress", user, "Re:Zero")

	resp := ts.api.Get("/api/v1/suggest?q=voca")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t,
		[]match.Suggestion{{Type: match.FieldTag, Text: "Vocaloid"}},
		decode[SuggestResponse](t, resp).Suggestions)

	resp = ts.api.Get("/api/v1/suggest?q=zzz")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"suggestions":[]}`, resp.Body.String())

	// Collection suggestions only draw from the caller's entries.
	resp = ts.api.Get("/api/v1/suggest?q=re&context=collection")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Put("/api/v1/me/collection/item-2", auth, map[string]any{"status": "owned"})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/suggest?q=re&context=collection", auth)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t,
		[]match.Suggestion{{Type: match.FieldTag, Text: "Re:Zero"}},
		decode[SuggestResponse](t, resp).Suggestions)

	resp = ts.api.Get("/api/v1/suggest?q=re&context=elsewhere")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestSuggest_MatchesWholeQuery(t *testing.T) {
	ts := setupTestServer(t)
	user, _ := ts.createUser(t, "user-1", domain.RoleModerator)
	ts.publish(t, "item-1", "Hatsune Miku Racing 2019", user, "Vocaloid")

	resp := ts.api.Get("/api/v1/suggest?q=" + url.QueryEscape("  miku rac "))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t,
		[]match.Suggestion{{Type: match.FieldName, Text: "Hatsune Miku Racing 2019"}},
		decode[SuggestResponse](t, resp).Suggestions)

	// Only the whole query counts, not its last word.
	resp = ts.api.Get("/api/v1/suggest?q=" + url.QueryEscape("saber voca"))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, decode[SuggestResponse](t, resp).Suggestions)

	op := ts.api.OpenAPI().Paths["/api/v1/suggest"].Get
	assert.Contains(t, op.Description, "whole trimmed query")
}

func TestSuggest_RateLimited(t *testing.T) {
	ts := setupTestServer(t, func(o *Options) {
		o.SuggestLimiter = NewRateLimiter(1, time.Hour, 1)
	})

	assert.Equal(t, http.StatusOK, ts.api.Get("/api/v1/suggest?q=a").Code)
	assert.Equal(t, http.StatusTooManyRequests, ts.api.Get("/api/v1/suggest?q=ab").Code)
}

func TestFullTextSearch(t *testing.T) {
	ts := setupTestServer(t)
	user, _ := ts.createUser(t, "user-1", domain.RoleModerator)
	ts.publish(t, "item-1", "Hatsune Miku Racing 2019", user, "Vocaloid", "Racing")
	ts.publish(t, "item-2", "Hatsune Miku Snow", user, "Vocaloid")
	ts.publish(t, "item-3", "Rem Wedding Dress", user, "Re:Zero")

	resp := ts.api.Get("/api/v1/search?q=miku&facets=true")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	res := decode[search.Result](t, resp)
	assert.Equal(t, uint64(2), res.Total)
	assert.NotEmpty(t, res.Facets.Tags)

	resp = ts.api.Get("/api/v1/search?q=miku&tags=Racing")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	res = decode[search.Result](t, resp)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, "item-1", res.Hits[0].ID)

	resp = ts.api.Get("/api/v1/search?sort=random")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

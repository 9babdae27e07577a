package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/figureshelf/figureshelf-server/internal/domain"
	domainerrors "github.com/figureshelf/figureshelf-server/internal/errors"
	"github.com/figureshelf/figureshelf-server/internal/match"
)

func itemNames(items []*domain.Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Name
	}
	return out
}

func seedCatalog(t *testing.T, env *testEnv) *domain.User {
	t.Helper()
	uploader := env.createUser(t, "user-up", domain.RoleModerator)
	env.publish(t, "item-1", "Hatsune Miku Racing 2019", uploader, "Vocaloid", "Racing")
	env.publish(t, "item-2", "Rem Wedding Dress", uploader, "Re:Zero")
	env.publish(t, "item-3", "Saber Lily", uploader, "Fate")
	env.storeItem(t, "item-4", "Hatsune Miku Snow", uploader, domain.ItemStatusPending, "Vocaloid")
	env.storeItem(t, "item-5", "Secret Draft Miku", uploader, domain.ItemStatusDraft, "Vocaloid")
	return uploader
}

func TestCatalogService_Search(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(t, env)
	ctx := context.Background()

	tests := []struct {
		name string
		req  SearchRequest
		want []string
	}{
		{"empty query lists published newest first", SearchRequest{}, []string{"Saber Lily", "Rem Wedding Dress", "Hatsune Miku Racing 2019"}},
		{"keyword", SearchRequest{Query: "miku"}, []string{"Hatsune Miku Racing 2019"}},
		{"tag match", SearchRequest{Query: "fate"}, []string{"Saber Lily"}},
		{"and", SearchRequest{Query: "rem lily"}, []string{}},
		{"or", SearchRequest{Query: "rem lily", Logic: match.LogicOr, Sort: match.SortNameAsc}, []string{"Rem Wedding Dress", "Saber Lily"}},
		{"phrase", SearchRequest{Query: "{wedding dress}"}, []string{"Rem Wedding Dress"}},
		{"name sort", SearchRequest{Sort: match.SortNameAsc}, []string{"Hatsune Miku Racing 2019", "Rem Wedding Dress", "Saber Lily"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := env.catalog.Search(ctx, tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, itemNames(res.Items))
			assert.Equal(t, len(tt.want), res.Total)
		})
	}
}

func TestCatalogService_Search_Paging(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(t, env)
	ctx := context.Background()

	res, err := env.catalog.Search(ctx, SearchRequest{Sort: match.SortNameAsc, Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"Saber Lily"}, itemNames(res.Items))
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.TotalPages)

	res, err = env.catalog.Search(ctx, SearchRequest{Page: 9, PageSize: 2})
	require.NoError(t, err)
	assert.Empty(t, res.Items)

	_, err = env.catalog.Search(ctx, SearchRequest{Page: -1})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = env.catalog.Search(ctx, SearchRequest{Sort: "sideways"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestCatalogService_Search_ReturnsCopies(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(t, env)
	ctx := context.Background()

	res, err := env.catalog.Search(ctx, SearchRequest{Query: "saber"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	res.Items[0].Name = "mutated"

	res, err = env.catalog.Search(ctx, SearchRequest{Query: "saber"})
	require.NoError(t, err)
	assert.Equal(t, "Saber Lily", res.Items[0].Name)
}

func TestCatalogService_Invalidate(t *testing.T) {
	env := newTestEnv(t)
	uploader := seedCatalog(t, env)
	ctx := context.Background()

	res, err := env.catalog.Search(ctx, SearchRequest{})
	require.NoError(t, err)
	require.Equal(t, 3, res.Total)

	// Direct store write: the snapshot is stale until invalidated.
	item := &domain.Item{Entity: domain.Entity{ID: "item-9"}, Name: "Asuna", UploaderID: uploader.ID, Status: domain.ItemStatusPublished}
	item.InitTimestamps()
	require.NoError(t, env.store.CreateItem(ctx, item))

	res, err = env.catalog.Search(ctx, SearchRequest{})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)

	env.catalog.Invalidate()
	res, err = env.catalog.Search(ctx, SearchRequest{})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Total)
}

func TestCatalogService_Suggest(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(t, env)
	ctx := context.Background()

	got, err := env.catalog.Suggest(ctx, "voca")
	require.NoError(t, err)
	// Pending and draft items never show up in catalog suggestions.
	assert.Equal(t, []match.Suggestion{{Type: match.FieldTag, Text: "Vocaloid"}}, got)

	got, err = env.catalog.Suggest(ctx, "  ")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCatalogService_FindDuplicates(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(t, env)
	ctx := context.Background()

	report, err := env.catalog.FindDuplicates(ctx, "Racing Miku 2019 figure")
	require.NoError(t, err)
	require.Len(t, report.Candidates, 1)
	assert.Equal(t, "item-1", report.Candidates[0].Item.ID)
	assert.Equal(t, 3, report.Candidates[0].CoreMatchCount)
	assert.True(t, report.Converged)

	// Pending items take part in duplicate detection; drafts do not.
	report, err = env.catalog.FindDuplicates(ctx, "Hatsune Miku Snow")
	require.NoError(t, err)
	ids := make([]string, len(report.Candidates))
	for i, c := range report.Candidates {
		ids[i] = c.Item.ID
	}
	assert.Equal(t, []string{"item-4", "item-1"}, ids)

	report, err = env.catalog.FindDuplicates(ctx, "Rem Swimsuit")
	require.NoError(t, err)
	assert.Empty(t, report.Candidates)
}

func TestCatalogService_Collection(t *testing.T) {
	env := newTestEnv(t)
	uploader := seedCatalog(t, env)
	ctx := context.Background()

	annotate := func(itemID string, status domain.AnnotationStatus, price, shop string) {
		_, err := env.annotations.Upsert(ctx, uploader, itemID, AnnotationRequest{Status: status, Price: price, Store: shop})
		require.NoError(t, err)
	}
	annotate("item-1", domain.AnnotationOwned, "¥18,000", "AmiAmi")
	annotate("item-2", domain.AnnotationWished, "$120", "")
	annotate("item-5", domain.AnnotationOrdered, "9,800", "Mandarake")

	res, err := env.catalog.Collection(ctx, uploader, CollectionRequest{Sort: match.SortPriceDesc})
	require.NoError(t, err)
	names := make([]string, len(res.Entries))
	for i, e := range res.Entries {
		names[i] = e.Item.Name
	}
	assert.Equal(t, []string{"Hatsune Miku Racing 2019", "Secret Draft Miku", "Rem Wedding Dress"}, names)

	res, err = env.catalog.Collection(ctx, uploader, CollectionRequest{Query: "amiami"})
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "item-1", res.Entries[0].Item.ID)
	assert.Equal(t, "AmiAmi", res.Entries[0].Annotation.Store)

	res, err = env.catalog.Collection(ctx, uploader, CollectionRequest{Status: domain.AnnotationWished})
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "item-2", res.Entries[0].Item.ID)

	_, err = env.catalog.Collection(ctx, uploader, CollectionRequest{Status: "borrowed"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	nobody := &domain.User{Entity: domain.Entity{ID: "user-nobody"}, Role: domain.RoleMember}
	res, err = env.catalog.Collection(ctx, nobody, CollectionRequest{})
	require.NoError(t, err)
	assert.Empty(t, res.Entries)
	assert.Equal(t, 0, res.TotalPages)
}

func TestCatalogService_CollectionSuggest(t *testing.T) {
	env := newTestEnv(t)
	uploader := seedCatalog(t, env)
	ctx := context.Background()

	_, err := env.annotations.Upsert(ctx, uploader, "item-2", AnnotationRequest{Status: domain.AnnotationOwned})
	require.NoError(t, err)

	got, err := env.catalog.CollectionSuggest(ctx, uploader, "re")
	require.NoError(t, err)
	assert.Equal(t, []match.Suggestion{{Type: match.FieldTag, Text: "Re:Zero"}}, got)

	got, err = env.catalog.CollectionSuggest(ctx, uploader, "miku")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCatalogService_CollectionHidesItemsNoLongerVisible(t *testing.T) {
	env := newTestEnv(t)
	uploader := seedCatalog(t, env)
	member := env.createUser(t, "user-member", domain.RoleMember)
	ctx := context.Background()

	for _, u := range []*domain.User{member, uploader} {
		_, err := env.annotations.Upsert(ctx, u, "item-1", AnnotationRequest{Status: domain.AnnotationOwned})
		require.NoError(t, err)
	}

	// The item goes back to its uploader's drafts.
	item, err := env.store.GetItem(ctx, "item-1")
	require.NoError(t, err)
	item.Status = domain.ItemStatusDraft
	require.NoError(t, env.store.UpdateItem(ctx, item))
	env.catalog.Invalidate()

	res, err := env.catalog.Collection(ctx, member, CollectionRequest{})
	require.NoError(t, err)
	assert.Empty(t, res.Entries)
	assert.Equal(t, 0, res.Total)

	got, err := env.catalog.CollectionSuggest(ctx, member, "racing")
	require.NoError(t, err)
	assert.Empty(t, got)

	res, err = env.catalog.Collection(ctx, uploader, CollectionRequest{})
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "item-1", res.Entries[0].Item.ID)

	_, err = env.catalog.Collection(ctx, nil, CollectionRequest{})
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestCatalogService_SetVocabulary(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(t, env)
	ctx := context.Background()

	report, err := env.catalog.FindDuplicates(ctx, "Miku Snow")
	require.NoError(t, err)
	require.NotEmpty(t, report.Candidates)
	assert.Equal(t, "item-4", report.Candidates[0].Item.ID)
	assert.Equal(t, 2, report.Candidates[0].CoreMatchCount)

	// With "miku" as a stop word only "snow" is left to match on.
	env.catalog.SetVocabulary(match.NewVocabulary([]string{"miku"}, nil))

	report, err = env.catalog.FindDuplicates(ctx, "Miku Snow")
	require.NoError(t, err)
	require.Len(t, report.Candidates, 1)
	assert.Equal(t, "item-4", report.Candidates[0].Item.ID)
	assert.Equal(t, 1, report.Candidates[0].CoreMatchCount)
}

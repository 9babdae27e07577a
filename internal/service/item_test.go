package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/figureshelf/figureshelf-server/internal/domain"
	domainerrors "github.com/figureshelf/figureshelf-server/internal/errors"
)

func ptr[T any](v T) *T { return &v }

func TestItemService_Create_Status(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	mod := env.createUser(t, "user-mod", domain.RoleModerator)
	member := env.createUser(t, "user-member", domain.RoleMember)

	tests := []struct {
		name string
		user *domain.User
		req  CreateItemRequest
		want domain.ItemStatus
	}{
		{"moderator publishes", mod, CreateItemRequest{Name: "Asuna Summer Queens"}, domain.ItemStatusPublished},
		{"member goes to review", member, CreateItemRequest{Name: "Megumin Explosion"}, domain.ItemStatusPending},
		{"draft stays private", member, CreateItemRequest{Name: "Yor Forger Thorn Princess", Draft: true}, domain.ItemStatusDraft},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := env.items.Create(ctx, tt.user, tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, item.Status)
			assert.Equal(t, tt.user.ID, item.UploaderID)
			assert.NotEmpty(t, item.ID)
		})
	}
}

func TestItemService_Create_NormalizesFields(t *testing.T) {
	env := newTestEnv(t)
	mod := env.createUser(t, "user-mod", domain.RoleModerator)

	item, err := env.items.Create(context.Background(), mod, CreateItemRequest{
		Name:     "  Frieren Cafe  ",
		Tags:     []string{"Frieren", " frieren ", "Sousou no Frieren"},
		Category: " Scale Figure ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Frieren Cafe", item.Name)
	assert.Equal(t, []string{"Frieren", "Sousou no Frieren"}, item.Tags)
	assert.Equal(t, "Scale Figure", item.Category)
}

func TestItemService_Create_Validation(t *testing.T) {
	env := newTestEnv(t)
	mod := env.createUser(t, "user-mod", domain.RoleModerator)

	_, err := env.items.Create(context.Background(), mod, CreateItemRequest{Name: "   "})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = env.items.Create(context.Background(), nil, CreateItemRequest{Name: "Anything"})
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestItemService_Create_DuplicateSuspected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	mod := env.createUser(t, "user-mod", domain.RoleModerator)
	env.publish(t, "item-1", "Hatsune Miku Racing 2019", mod, "Vocaloid")

	_, err := env.items.Create(ctx, mod, CreateItemRequest{Name: "Racing Miku 2019 figure"})
	require.ErrorIs(t, err, domainerrors.ErrDuplicateSuspected)

	var de *domainerrors.Error
	require.ErrorAs(t, err, &de)
	report, ok := de.Details.(*DuplicateReport)
	require.True(t, ok)
	require.Len(t, report.Candidates, 1)
	assert.Equal(t, "item-1", report.Candidates[0].Item.ID)

	// The user saw the candidates and insists.
	item, err := env.items.Create(ctx, mod, CreateItemRequest{Name: "Racing Miku 2019 figure", Force: true})
	require.NoError(t, err)
	assert.Equal(t, domain.ItemStatusPublished, item.Status)

	// Drafts skip the check.
	_, err = env.items.Create(ctx, mod, CreateItemRequest{Name: "Hatsune Miku Racing 2019", Draft: true})
	require.NoError(t, err)
}

func TestItemService_Create_InvalidatesCatalog(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	mod := env.createUser(t, "user-mod", domain.RoleModerator)

	res, err := env.catalog.Search(ctx, SearchRequest{})
	require.NoError(t, err)
	require.Zero(t, res.Total)

	_, err = env.items.Create(ctx, mod, CreateItemRequest{Name: "Makima Chainsaw Man"})
	require.NoError(t, err)

	res, err = env.catalog.Search(ctx, SearchRequest{Query: "makima"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
}

func TestItemService_Get_Visibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "user-owner", domain.RoleMember)
	other := env.createUser(t, "user-other", domain.RoleMember)
	mod := env.createUser(t, "user-mod", domain.RoleModerator)

	env.storeItem(t, "item-draft", "Nezuko Bamboo", owner, domain.ItemStatusDraft)
	env.publish(t, "item-pub", "Tanjiro Water Breathing", owner)

	_, err := env.items.Get(ctx, owner, "item-draft")
	require.NoError(t, err)
	_, err = env.items.Get(ctx, mod, "item-draft")
	require.NoError(t, err)
	_, err = env.items.Get(ctx, other, "item-draft")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	_, err = env.items.Get(ctx, nil, "item-draft")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	got, err := env.items.Get(ctx, nil, "item-pub")
	require.NoError(t, err)
	assert.Equal(t, "Tanjiro Water Breathing", got.Name)

	_, err = env.items.Get(ctx, owner, "item-missing")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestItemService_Update(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "user-owner", domain.RoleMember)
	other := env.createUser(t, "user-other", domain.RoleMember)
	env.publish(t, "item-1", "Hatsune Miku Racing 2019", owner, "Vocaloid")
	env.publish(t, "item-2", "Rem Wedding Dress", owner, "Re:Zero")

	updated, err := env.items.Update(ctx, owner, "item-2", UpdateItemRequest{
		Tags:  ptr([]string{"Re:Zero", "Wedding"}),
		Scale: ptr(" 1/7 "),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Re:Zero", "Wedding"}, updated.Tags)
	assert.Equal(t, "1/7", updated.Scale)
	assert.Equal(t, "Rem Wedding Dress", updated.Name)

	// Renaming onto an existing item trips the duplicate check...
	_, err = env.items.Update(ctx, owner, "item-2", UpdateItemRequest{Name: ptr("Miku Racing 2019")})
	assert.ErrorIs(t, err, domainerrors.ErrDuplicateSuspected)

	// ...but an item never duplicates itself.
	_, err = env.items.Update(ctx, owner, "item-1", UpdateItemRequest{Name: ptr("Hatsune Miku Racing 2019 Good Smile")})
	require.NoError(t, err)

	_, err = env.items.Update(ctx, other, "item-2", UpdateItemRequest{Scale: ptr("1/8")})
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	_, err = env.items.Update(ctx, owner, "item-2", UpdateItemRequest{Name: ptr(" ")})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestItemService_Delete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "user-owner", domain.RoleMember)
	other := env.createUser(t, "user-other", domain.RoleMember)
	env.publish(t, "item-1", "Power Chainsaw Man", owner)

	_, err := env.annotations.Upsert(ctx, other, "item-1", AnnotationRequest{Status: domain.AnnotationOwned})
	require.NoError(t, err)

	err = env.items.Delete(ctx, other, "item-1")
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	require.NoError(t, env.items.Delete(ctx, owner, "item-1"))

	_, err = env.items.Get(ctx, owner, "item-1")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	_, err = env.annotations.Get(ctx, other, "item-1")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestItemService_Submit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	member := env.createUser(t, "user-member", domain.RoleMember)
	env.publish(t, "item-1", "Hatsune Miku Racing 2019", member)
	env.storeItem(t, "item-draft", "Miku Racing 2019", member, domain.ItemStatusDraft)
	env.storeItem(t, "item-fresh", "Chika Fujiwara Love Detective", member, domain.ItemStatusDraft)

	_, err := env.items.Submit(ctx, member, "item-draft", false)
	assert.ErrorIs(t, err, domainerrors.ErrDuplicateSuspected)

	item, err := env.items.Submit(ctx, member, "item-draft", true)
	require.NoError(t, err)
	assert.Equal(t, domain.ItemStatusPending, item.Status)

	item, err = env.items.Submit(ctx, member, "item-fresh", false)
	require.NoError(t, err)
	assert.Equal(t, domain.ItemStatusPending, item.Status)

	_, err = env.items.Submit(ctx, member, "item-fresh", false)
	assert.ErrorIs(t, err, domainerrors.ErrConflict)
}

func TestItemService_ReviewQueue(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	member := env.createUser(t, "user-member", domain.RoleMember)
	mod := env.createUser(t, "user-mod", domain.RoleModerator)

	a, err := env.items.Create(ctx, member, CreateItemRequest{Name: "Marin Kitagawa Swimsuit"})
	require.NoError(t, err)
	b, err := env.items.Create(ctx, member, CreateItemRequest{Name: "Anya Forger Peanuts"})
	require.NoError(t, err)

	_, err = env.items.ListPending(ctx, member)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	pending, err := env.items.ListPending(ctx, mod)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	// Pending items are not in the public catalog yet.
	res, err := env.catalog.Search(ctx, SearchRequest{Query: "marin"})
	require.NoError(t, err)
	assert.Zero(t, res.Total)

	approved, err := env.items.Approve(ctx, mod, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ItemStatusPublished, approved.Status)

	res, err = env.catalog.Search(ctx, SearchRequest{Query: "marin"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)

	rejected, err := env.items.Reject(ctx, mod, b.ID, "blurry photos")
	require.NoError(t, err)
	assert.Equal(t, domain.ItemStatusDraft, rejected.Status)

	_, err = env.items.Approve(ctx, mod, a.ID)
	assert.ErrorIs(t, err, domainerrors.ErrConflict)
	_, err = env.items.Approve(ctx, member, b.ID)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	pending, err = env.items.ListPending(ctx, mod)
	require.NoError(t, err)
	assert.Empty(t, pending)

	uploads, err := env.items.ListUploads(ctx, member)
	require.NoError(t, err)
	assert.Len(t, uploads, 2)
}

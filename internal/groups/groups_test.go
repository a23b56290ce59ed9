package groups_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanhoff/apostrophe-people/internal/groups"
	"github.com/alanhoff/apostrophe-people/internal/model"
	"github.com/alanhoff/apostrophe-people/internal/storage"
	"github.com/alanhoff/apostrophe-people/internal/testutil"
)

func newService(t *testing.T) (*groups.Service, *storage.Memory) {
	t.Helper()
	store := storage.NewMemory()
	return groups.NewService(store, testutil.TestLogger()), store
}

func TestGetOneNotFound(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.GetOne(context.Background(), model.GroupCriteria{Slug: "ghost"}, model.GroupOptions{})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGetAttachesPermalinkFromLockedPage(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	g, err := store.SaveGroup(ctx, model.Group{Title: "Engineering", Slug: "engineering"})
	require.NoError(t, err)
	_, err = store.SavePage(ctx, model.Page{Slug: "engineering-dir", Title: "Engineering", GroupID: g.ID})
	require.NoError(t, err)

	got, err := svc.GetOne(ctx, model.GroupCriteria{ID: g.ID}, model.GroupOptions{Permalink: true})
	require.NoError(t, err)
	assert.Equal(t, "/engineering-dir", got.URL)
}

func TestGetPermalinkFallsBackToGenericPage(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	g, err := store.SaveGroup(ctx, model.Group{Title: "Engineering", Slug: "engineering"})
	require.NoError(t, err)
	_, err = store.SavePage(ctx, model.Page{Slug: "people", Title: "People"})
	require.NoError(t, err)

	got, err := svc.GetOne(ctx, model.GroupCriteria{ID: g.ID}, model.GroupOptions{Permalink: true})
	require.NoError(t, err)
	assert.Equal(t, "/people", got.URL)
}

func TestGetPermalinkToleratedWhenNoPagesExist(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	g, err := store.SaveGroup(ctx, model.Group{Title: "Engineering", Slug: "engineering"})
	require.NoError(t, err)

	got, err := svc.GetOne(ctx, model.GroupCriteria{ID: g.ID}, model.GroupOptions{Permalink: true})
	require.NoError(t, err)
	assert.Empty(t, got.URL)
}

func TestGetPeopleAttachesRedactedMembers(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	g, err := store.SaveGroup(ctx, model.Group{Title: "Engineering", Slug: "engineering"})
	require.NoError(t, err)
	_, err = store.SavePerson(ctx, model.Person{
		LastName: "Doe", Slug: "doe", GroupIDs: []string{g.ID},
		PasswordHash: "argon2id$c2FsdA==$ZGlnZXN0",
	})
	require.NoError(t, err)
	_, err = store.SavePerson(ctx, model.Person{LastName: "Roe", Slug: "roe"})
	require.NoError(t, err)

	got, err := svc.GetOne(ctx, model.GroupCriteria{ID: g.ID}, model.GroupOptions{GetPeople: true})
	require.NoError(t, err)
	require.Len(t, got.People, 1)
	assert.Equal(t, "doe", got.People[0].Slug)
	assert.Empty(t, got.People[0].PasswordHash)
}

func TestFindBestPagePlaceholderSkipsLockedLookup(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	_, err := store.SavePage(ctx, model.Page{Slug: "people", Title: "People"})
	require.NoError(t, err)

	page, err := svc.FindBestPage(ctx, model.PlaceholderGroup())
	require.NoError(t, err)
	assert.Equal(t, "people", page.Slug)
}

func TestFindBestPageNoPages(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.FindBestPage(context.Background(), model.PlaceholderGroup())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

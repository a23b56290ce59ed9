package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanhoff/apostrophe-people/internal/model"
	"github.com/alanhoff/apostrophe-people/internal/storage"
)

func TestMemorySavePersonAssignsIDAndTimestamps(t *testing.T) {
	m := storage.NewMemory()
	ctx := context.Background()

	saved, err := m.SavePerson(ctx, model.Person{LastName: "Doe", Slug: "doe"})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())
	assert.False(t, saved.UpdatedAt.IsZero())
}

func TestMemoryLoginUsernameUniqueness(t *testing.T) {
	m := storage.NewMemory()
	ctx := context.Background()

	_, err := m.SavePerson(ctx, model.Person{Slug: "a", Login: true, Username: "jdoe"})
	require.NoError(t, err)

	// A second login-enabled record with the same username conflicts.
	_, err = m.SavePerson(ctx, model.Person{Slug: "b", Login: true, Username: "jdoe"})
	assert.ErrorIs(t, err, storage.ErrConflict)

	// The same username without login is fine: uniqueness is partial.
	_, err = m.SavePerson(ctx, model.Person{Slug: "c", Login: false, Username: "jdoe"})
	assert.NoError(t, err)
}

func TestMemorySlugUniqueness(t *testing.T) {
	m := storage.NewMemory()
	ctx := context.Background()

	_, err := m.SavePerson(ctx, model.Person{Slug: "doe"})
	require.NoError(t, err)
	_, err = m.SavePerson(ctx, model.Person{Slug: "doe"})
	assert.ErrorIs(t, err, storage.ErrConflict)
}

func TestMemoryQueryPeopleFilters(t *testing.T) {
	m := storage.NewMemory()
	ctx := context.Background()

	_, err := m.SavePerson(ctx, model.Person{LastName: "Doe", Slug: "doe", Login: true, Username: "doe", GroupIDs: []string{"g1"}})
	require.NoError(t, err)
	_, err = m.SavePerson(ctx, model.Person{LastName: "dunn", Slug: "dunn"})
	require.NoError(t, err)
	_, err = m.SavePerson(ctx, model.Person{LastName: "Smith", Slug: "smith"})
	require.NoError(t, err)

	// Case-insensitive prefix match.
	rs, err := m.QueryPeople(ctx, model.Criteria{LastNamePrefix: "D"}, model.QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, rs.Total)

	login := true
	rs, err = m.QueryPeople(ctx, model.Criteria{Login: &login}, model.QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, rs.Total)

	rs, err = m.QueryPeople(ctx, model.Criteria{GroupID: "g1"}, model.QueryOptions{})
	require.NoError(t, err)
	require.Len(t, rs.People, 1)
	assert.Equal(t, "doe", rs.People[0].Slug)
}

func TestMemoryQueryPeopleTotalIgnoresPagination(t *testing.T) {
	m := storage.NewMemory()
	ctx := context.Background()

	for _, slug := range []string{"a", "b", "c", "d"} {
		_, err := m.SavePerson(ctx, model.Person{LastName: slug, Slug: slug})
		require.NoError(t, err)
	}

	rs, err := m.QueryPeople(ctx, model.Criteria{}, model.QueryOptions{Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 4, rs.Total)
	require.Len(t, rs.People, 2)
	assert.Equal(t, "b", rs.People[0].Slug)
	assert.Equal(t, "c", rs.People[1].Slug)
}

func TestMemoryQueryPeopleRejectsUnknownSortField(t *testing.T) {
	m := storage.NewMemory()
	_, err := m.QueryPeople(context.Background(), model.Criteria{}, model.QueryOptions{
		Sort: []model.SortField{{Field: "passwordHash"}},
	})
	assert.Error(t, err)
}

func TestMemoryPages(t *testing.T) {
	m := storage.NewMemory()
	ctx := context.Background()

	_, err := m.FallbackPage(ctx)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	fallback, err := m.SavePage(ctx, model.Page{Slug: "people", Title: "People"})
	require.NoError(t, err)

	locked, err := m.SavePage(ctx, model.Page{Slug: "engineering", Title: "Engineering", GroupID: "g1"})
	require.NoError(t, err)

	page, err := m.PageForGroup(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, locked.ID, page.ID)

	_, err = m.PageForGroup(ctx, "g2")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	page, err = m.FallbackPage(ctx)
	require.NoError(t, err)
	assert.Equal(t, fallback.ID, page.ID)
}

func TestMemoryGroups(t *testing.T) {
	m := storage.NewMemory()
	ctx := context.Background()

	g1, err := m.SaveGroup(ctx, model.Group{Title: "Engineering", Slug: "engineering"})
	require.NoError(t, err)
	assert.Equal(t, "group", g1.Type)

	_, err = m.SaveGroup(ctx, model.Group{Title: "Other", Slug: "engineering"})
	assert.ErrorIs(t, err, storage.ErrConflict)

	_, err = m.SaveGroup(ctx, model.Group{Title: "Admins", Slug: "admins"})
	require.NoError(t, err)

	groups, err := m.QueryGroups(ctx, model.GroupCriteria{})
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "Admins", groups[0].Title)
	assert.Equal(t, "Engineering", groups[1].Title)

	groups, err = m.QueryGroups(ctx, model.GroupCriteria{ID: g1.ID})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "Engineering", groups[0].Title)
}

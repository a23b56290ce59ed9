package storage_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanhoff/apostrophe-people/internal/model"
	"github.com/alanhoff/apostrophe-people/internal/storage"
	"github.com/alanhoff/apostrophe-people/internal/testutil"
)

// testDB is the shared database for all integration tests in this file.
var testDB *storage.DB

func TestMain(m *testing.M) {
	if os.Getenv("SKIP_INTEGRATION") != "" {
		os.Exit(m.Run())
	}

	tc := testutil.MustStartPostgres()
	defer tc.Terminate()

	var err error
	testDB, err = tc.NewTestDB(context.Background(), testutil.TestLogger())
	if err != nil {
		tc.Terminate()
		panic(err)
	}
	code := m.Run()
	testDB.Close()
	tc.Terminate()
	os.Exit(code)
}

func requireDB(t *testing.T) {
	t.Helper()
	if testDB == nil {
		t.Skip("integration tests skipped")
	}
}

func TestDBSaveAndQueryPeople(t *testing.T) {
	requireDB(t)
	ctx := context.Background()

	saved, err := testDB.SavePerson(ctx, model.Person{
		Title: "Jane Doe", FirstName: "Jane", LastName: "Doe",
		Slug: "it-jane-doe", Login: true, Username: "it-jdoe",
		PasswordHash: "argon2id$c2FsdA==$ZGlnZXN0",
		GroupIDs:     []string{"g1", "g2"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)

	rs, err := testDB.QueryPeople(ctx, model.Criteria{ID: saved.ID}, model.QueryOptions{})
	require.NoError(t, err)
	require.Len(t, rs.People, 1)
	got := rs.People[0]
	assert.Equal(t, "it-jane-doe", got.Slug)
	assert.Equal(t, []string{"g1", "g2"}, got.GroupIDs)
	assert.Equal(t, "argon2id$c2FsdA==$ZGlnZXN0", got.PasswordHash)

	// Case-insensitive prefix match with escaped metacharacters.
	rs, err = testDB.QueryPeople(ctx, model.Criteria{LastNamePrefix: "d"}, model.QueryOptions{})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, rs.Total, 1)

	rs, err = testDB.QueryPeople(ctx, model.Criteria{LastNamePrefix: "%"}, model.QueryOptions{})
	require.NoError(t, err)
	assert.Zero(t, rs.Total)
}

func TestDBPartialUsernameIndex(t *testing.T) {
	requireDB(t)
	ctx := context.Background()

	_, err := testDB.SavePerson(ctx, model.Person{
		Slug: "it-unique-a", Login: true, Username: "it-unique",
	})
	require.NoError(t, err)

	// A second login-enabled claim on the username conflicts.
	_, err = testDB.SavePerson(ctx, model.Person{
		Slug: "it-unique-b", Login: true, Username: "it-unique",
	})
	assert.ErrorIs(t, err, storage.ErrConflict)

	// Login-disabled records are outside the partial index.
	_, err = testDB.SavePerson(ctx, model.Person{
		Slug: "it-unique-c", Login: false, Username: "it-unique",
	})
	assert.NoError(t, err)
}

func TestDBUpsertPerson(t *testing.T) {
	requireDB(t)
	ctx := context.Background()

	saved, err := testDB.SavePerson(ctx, model.Person{Slug: "it-upsert", LastName: "Before"})
	require.NoError(t, err)

	saved.LastName = "After"
	updated, err := testDB.SavePerson(ctx, saved)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, updated.ID)

	rs, err := testDB.QueryPeople(ctx, model.Criteria{ID: saved.ID}, model.QueryOptions{})
	require.NoError(t, err)
	require.Len(t, rs.People, 1)
	assert.Equal(t, "After", rs.People[0].LastName)
	assert.Equal(t, saved.CreatedAt.Unix(), rs.People[0].CreatedAt.Unix())
}

func TestDBGroupsAndPages(t *testing.T) {
	requireDB(t)
	ctx := context.Background()

	group, err := testDB.SaveGroup(ctx, model.Group{Title: "IT Engineering", Slug: "it-engineering"})
	require.NoError(t, err)

	groups, err := testDB.QueryGroups(ctx, model.GroupCriteria{ID: group.ID})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "IT Engineering", groups[0].Title)

	_, err = testDB.PageForGroup(ctx, group.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)

	locked, err := testDB.SavePage(ctx, model.Page{
		Slug: "it-engineering-page", Title: "Engineering", GroupID: group.ID,
	})
	require.NoError(t, err)

	page, err := testDB.PageForGroup(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, locked.ID, page.ID)

	fallback, err := testDB.SavePage(ctx, model.Page{Slug: "it-people", Title: "People"})
	require.NoError(t, err)

	page, err = testDB.FallbackPage(ctx)
	require.NoError(t, err)
	assert.Equal(t, fallback.ID, page.ID)
}

func TestDBQueryPeopleSortWhitelist(t *testing.T) {
	requireDB(t)
	_, err := testDB.QueryPeople(context.Background(), model.Criteria{}, model.QueryOptions{
		Sort: []model.SortField{{Field: "password_hash"}},
	})
	assert.Error(t, err)
}

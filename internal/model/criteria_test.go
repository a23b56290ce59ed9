package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanhoff/apostrophe-people/internal/model"
)

func boolPtr(v bool) *bool { return &v }

func TestMergeCriteriaDisjointFields(t *testing.T) {
	merged, ok := model.MergeCriteria(
		model.Criteria{Slug: "jane-doe"},
		model.Criteria{Login: boolPtr(true), LastNamePrefix: "d"},
	)
	require.True(t, ok)
	assert.Equal(t, "jane-doe", merged.Slug)
	assert.Equal(t, "d", merged.LastNamePrefix)
	require.NotNil(t, merged.Login)
	assert.True(t, *merged.Login)
}

func TestMergeCriteriaSameValueAgrees(t *testing.T) {
	merged, ok := model.MergeCriteria(
		model.Criteria{Username: "jdoe"},
		model.Criteria{Username: "jdoe"},
	)
	require.True(t, ok)
	assert.Equal(t, "jdoe", merged.Username)
}

func TestMergeCriteriaConflictingExactIsUnsatisfiable(t *testing.T) {
	_, ok := model.MergeCriteria(
		model.Criteria{Username: "jdoe"},
		model.Criteria{Username: "other"},
	)
	assert.False(t, ok)
}

func TestMergeCriteriaConflictingLoginIsUnsatisfiable(t *testing.T) {
	_, ok := model.MergeCriteria(
		model.Criteria{Login: boolPtr(true)},
		model.Criteria{Login: boolPtr(false)},
	)
	assert.False(t, ok)
}

func TestMergeCriteriaPrefixKeepsMoreSpecific(t *testing.T) {
	merged, ok := model.MergeCriteria(
		model.Criteria{LastNamePrefix: "Do"},
		model.Criteria{LastNamePrefix: "d"},
	)
	require.True(t, ok)
	assert.Equal(t, "Do", merged.LastNamePrefix)

	merged, ok = model.MergeCriteria(
		model.Criteria{LastNamePrefix: "d"},
		model.Criteria{LastNamePrefix: "Doe"},
	)
	require.True(t, ok)
	assert.Equal(t, "Doe", merged.LastNamePrefix)
}

func TestMergeCriteriaIncompatiblePrefixes(t *testing.T) {
	_, ok := model.MergeCriteria(
		model.Criteria{LastNamePrefix: "sm"},
		model.Criteria{LastNamePrefix: "do"},
	)
	assert.False(t, ok)
}

func TestMergeCriteriaIDIntersection(t *testing.T) {
	merged, ok := model.MergeCriteria(
		model.Criteria{IDs: []string{"a", "b", "c"}},
		model.Criteria{IDs: []string{"b", "c", "d"}},
	)
	require.True(t, ok)
	assert.Equal(t, []string{"b", "c"}, merged.IDs)

	_, ok = model.MergeCriteria(
		model.Criteria{IDs: []string{"a"}},
		model.Criteria{IDs: []string{"z"}},
	)
	assert.False(t, ok)
}

func TestDefaultPersonSort(t *testing.T) {
	sort := model.DefaultPersonSort()
	require.Len(t, sort, 2)
	assert.Equal(t, "lastName", sort[0].Field)
	assert.Equal(t, "firstName", sort[1].Field)
	assert.False(t, sort[0].Desc)
}

func TestAutocompleteTitle(t *testing.T) {
	login := model.Person{Title: "Jane Doe", Login: true, Username: "jdoe", Slug: "jane-doe"}
	assert.Equal(t, "Jane Doe (jdoe)", model.AutocompleteTitle(login))

	noLogin := model.Person{Title: "Jane Doe", Login: false, Username: "jdoe", Slug: "jane-doe"}
	assert.Equal(t, "Jane Doe (jane-doe)", model.AutocompleteTitle(noLogin))
}

func TestIdentityAdminAndHas(t *testing.T) {
	var anon *model.Identity
	assert.False(t, anon.Admin())
	assert.False(t, anon.Has("edit-people"))

	admin := &model.Identity{Username: "root", Permissions: map[string]bool{"admin": true}}
	assert.True(t, admin.Admin())
	assert.True(t, admin.Has("anything-at-all"))

	editor := &model.Identity{Username: "ed", Permissions: map[string]bool{"edit-profile": true}}
	assert.False(t, editor.Admin())
	assert.True(t, editor.Has("edit-profile"))
	assert.False(t, editor.Has("edit-people"))
}

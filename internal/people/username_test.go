package people_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanhoff/apostrophe-people/internal/groups"
	"github.com/alanhoff/apostrophe-people/internal/model"
	"github.com/alanhoff/apostrophe-people/internal/people"
	"github.com/alanhoff/apostrophe-people/internal/permission"
	"github.com/alanhoff/apostrophe-people/internal/testutil"
)

func TestUniqueUsernameFreeCandidateUnchanged(t *testing.T) {
	svc, store := newTestService(t)
	seedPerson(t, store, model.Person{LastName: "Doe", Slug: "doe", Login: true, Username: "alice"})

	username, err := svc.UniqueUsername(adminContext(), "bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", username)
}

func TestUniqueUsernameAppendsDigitOnCollision(t *testing.T) {
	svc, store := newTestService(t)
	seedPerson(t, store, model.Person{LastName: "Doe", Slug: "doe", Login: true, Username: "alice"})

	username, err := svc.UniqueUsername(adminContext(), "alice")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^alice[0-9]+$`), username)
	assert.NotEqual(t, "alice", username)
}

func TestUniqueUsernameRejectsEmptyCandidate(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.UniqueUsername(adminContext(), "")
	assert.Error(t, err)
}

func TestUniqueUsernameForbiddenForNonAdmins(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.UniqueUsername(context.Background(), "bob")
	assert.ErrorIs(t, err, permission.ErrForbidden)
}

// saturatedStore reports every username as taken.
type saturatedStore struct{}

func (saturatedStore) QueryPeople(ctx context.Context, c model.Criteria, opts model.QueryOptions) (model.ResultSet, error) {
	return model.ResultSet{People: []model.Person{{Username: c.Username}}, Total: 1}, nil
}

func (saturatedStore) SavePerson(ctx context.Context, p model.Person) (model.Person, error) {
	return p, nil
}

func TestUniqueUsernameExhaustsAttemptBudget(t *testing.T) {
	logger := testutil.TestLogger()
	perms := permission.NewService(logger)
	people.RegisterGate(perms)
	svc := people.NewService(saturatedStore{}, groups.NewService(nil, logger), perms, logger)

	_, err := svc.UniqueUsername(adminContext(), "alice")
	assert.ErrorIs(t, err, people.ErrGenerationExhausted)
}

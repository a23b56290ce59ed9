package people_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanhoff/apostrophe-people/internal/ctxutil"
	"github.com/alanhoff/apostrophe-people/internal/model"
	"github.com/alanhoff/apostrophe-people/internal/people"
	"github.com/alanhoff/apostrophe-people/internal/permission"
	"github.com/alanhoff/apostrophe-people/internal/storage"
	"github.com/alanhoff/apostrophe-people/internal/testutil"
)

// countingGroups records how often page resolution hits the group layer.
type countingGroups struct {
	resolutions int
	fail        bool
	page        model.PageRef
}

func (g *countingGroups) Get(ctx context.Context, c model.GroupCriteria, opts model.GroupOptions) ([]model.Group, error) {
	return nil, nil
}

func (g *countingGroups) GetOne(ctx context.Context, c model.GroupCriteria, opts model.GroupOptions) (model.Group, error) {
	if c.ID != "" {
		return model.Group{ID: c.ID, Type: "group"}, nil
	}
	return model.Group{}, storage.ErrNotFound
}

func (g *countingGroups) FindBestPage(ctx context.Context, group model.Group) (model.PageRef, error) {
	g.resolutions++
	if g.fail {
		return model.PageRef{}, errors.New("page store unavailable")
	}
	return g.page, nil
}

func newBestPageService(g people.GroupService) *people.Service {
	logger := testutil.TestLogger()
	perms := permission.NewService(logger)
	people.RegisterGate(perms)
	return people.NewService(storage.NewMemory(), g, perms, logger)
}

func TestFindBestPageCachesPerGroup(t *testing.T) {
	stub := &countingGroups{page: model.PageRef{ID: "pg", Slug: "people"}}
	svc := newBestPageService(stub)
	ctx := ctxutil.WithBestPages(context.Background())

	// Two groupless persons share the placeholder resolution.
	a := model.Person{ID: "a", Slug: "a"}
	b := model.Person{ID: "b", Slug: "b"}

	page, err := svc.FindBestPage(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, "people", page.Slug)

	_, err = svc.FindBestPage(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, 1, stub.resolutions)

	// A person with a group resolves separately, once.
	c := model.Person{ID: "c", Slug: "c", GroupIDs: []string{"g1"}}
	_, err = svc.FindBestPage(ctx, c)
	require.NoError(t, err)
	_, err = svc.FindBestPage(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, 2, stub.resolutions)
}

func TestFindBestPageWithoutCacheResolvesEveryTime(t *testing.T) {
	stub := &countingGroups{page: model.PageRef{ID: "pg", Slug: "people"}}
	svc := newBestPageService(stub)
	ctx := context.Background()

	p := model.Person{ID: "a", Slug: "a"}
	_, err := svc.FindBestPage(ctx, p)
	require.NoError(t, err)
	_, err = svc.FindBestPage(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, 2, stub.resolutions)
}

func TestFindBestPageFailureIsNotCached(t *testing.T) {
	stub := &countingGroups{fail: true}
	svc := newBestPageService(stub)
	ctx := ctxutil.WithBestPages(context.Background())

	p := model.Person{ID: "a", Slug: "a"}
	_, err := svc.FindBestPage(ctx, p)
	require.Error(t, err)

	// The failure was not pinned: recovery on the next call goes through.
	stub.fail = false
	stub.page = model.PageRef{ID: "pg", Slug: "people"}
	page, err := svc.FindBestPage(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, "people", page.Slug)
	assert.Equal(t, 2, stub.resolutions)
}

// pagesByGroup resolves a distinct page per group so tests can tell which
// group anchored a resolution.
type pagesByGroup struct {
	missing map[string]bool
}

func (g *pagesByGroup) Get(ctx context.Context, c model.GroupCriteria, opts model.GroupOptions) ([]model.Group, error) {
	return nil, nil
}

func (g *pagesByGroup) GetOne(ctx context.Context, c model.GroupCriteria, opts model.GroupOptions) (model.Group, error) {
	if c.ID == "" || g.missing[c.ID] {
		return model.Group{}, storage.ErrNotFound
	}
	return model.Group{ID: c.ID, Type: "group"}, nil
}

func (g *pagesByGroup) FindBestPage(ctx context.Context, group model.Group) (model.PageRef, error) {
	return model.PageRef{ID: group.ID, Slug: "dir-" + group.ID}, nil
}

func TestFindBestPageDanglingFirstIDDoesNotShareCache(t *testing.T) {
	stub := &pagesByGroup{missing: map[string]bool{"gone": true}}
	svc := newBestPageService(stub)
	ctx := ctxutil.WithBestPages(context.Background())

	// Both persons lead with the same dangling id but belong to different
	// real groups; the enricher attached only the surviving groups. The
	// cache must key by the resolved group, not the raw first id.
	a := model.Person{
		ID: "a", Slug: "a",
		GroupIDs: []string{"gone", "g2"},
		Groups:   []model.Group{{ID: "g2"}},
	}
	b := model.Person{
		ID: "b", Slug: "b",
		GroupIDs: []string{"gone", "g3"},
		Groups:   []model.Group{{ID: "g3"}},
	}

	page, err := svc.FindBestPage(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, "dir-g2", page.Slug)

	page, err = svc.FindBestPage(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, "dir-g3", page.Slug)
}

func TestFindBestPagePrefersAttachedGroup(t *testing.T) {
	stub := &countingGroups{page: model.PageRef{ID: "pg", Slug: "engineering"}}
	svc := newBestPageService(stub)

	p := model.Person{
		ID: "a", Slug: "a",
		GroupIDs: []string{"g1"},
		Groups:   []model.Group{{ID: "g1", Title: "Engineering"}},
	}
	page, err := svc.FindBestPage(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "engineering", page.Slug)
}

func TestPermalink(t *testing.T) {
	p := model.Person{Slug: "jane-doe"}
	people.Permalink(&p, model.PageRef{Slug: "people"})
	assert.Equal(t, "/people/jane-doe", p.URL)
}

package people

import (
	"context"
	"errors"
	"fmt"

	"github.com/alanhoff/apostrophe-people/internal/ctxutil"
	"github.com/alanhoff/apostrophe-people/internal/model"
	"github.com/alanhoff/apostrophe-people/internal/storage"
)

// FindBestPage resolves the directory page a person's permalink hangs under.
// The person's first group decides; a person with no groups resolves through
// the placeholder group to the generic fallback page.
//
// When the request context carries a best-page cache, successful resolutions
// are memoized for the life of the request, keyed by the resolved group's ID.
// The key must come from the resolved group, not the raw id list: a dangling
// first id resolves to a different group, and keying by the raw id would let
// two persons with different real groups collide on one cache slot. Failures
// are never cached, so a transient error does not pin a bad result.
func (s *Service) FindBestPage(ctx context.Context, p model.Person) (model.PageRef, error) {
	group, err := s.resolveGroup(ctx, p)
	if err != nil {
		return model.PageRef{}, fmt.Errorf("people: best page: %w", err)
	}

	cache := ctxutil.BestPagesFromContext(ctx)
	if page, ok := cache[group.ID]; ok {
		return page, nil
	}

	page, err := s.groups.FindBestPage(ctx, group)
	if err != nil {
		return model.PageRef{}, fmt.Errorf("people: best page: %w", err)
	}

	if cache != nil {
		cache[group.ID] = page
	}
	return page, nil
}

// resolveGroup picks the group that anchors the person's permalink: an
// already-attached group first, then a store lookup of the first group id,
// then the placeholder. A dangling group id also falls back to the
// placeholder rather than failing the whole resolution.
func (s *Service) resolveGroup(ctx context.Context, p model.Person) (model.Group, error) {
	if len(p.Groups) > 0 {
		return p.Groups[0], nil
	}
	if len(p.GroupIDs) > 0 {
		group, err := s.groups.GetOne(ctx, model.GroupCriteria{ID: p.GroupIDs[0]}, model.GroupOptions{})
		if err == nil {
			return group, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return model.Group{}, err
		}
	}
	return model.PlaceholderGroup(), nil
}

// Permalink sets the person's URL under the given directory page.
func Permalink(p *model.Person, page model.PageRef) {
	p.URL = "/" + page.Slug + "/" + p.Slug
}

// Package groups serves group records and resolves the directory pages that
// anchor group and person permalinks.
package groups

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alanhoff/apostrophe-people/internal/model"
	"github.com/alanhoff/apostrophe-people/internal/storage"
)

// Store is the persistence the group service needs.
type Store interface {
	QueryGroups(ctx context.Context, c model.GroupCriteria) ([]model.Group, error)
	QueryPeople(ctx context.Context, c model.Criteria, opts model.QueryOptions) (model.ResultSet, error)
	PageForGroup(ctx context.Context, groupID string) (model.Page, error)
	FallbackPage(ctx context.Context) (model.Page, error)
}

// Service reads groups and attaches related data on request.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService creates a group service.
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Get returns groups matching the criteria. Options control whether each
// group carries its permalink URL and its membership.
func (s *Service) Get(ctx context.Context, c model.GroupCriteria, opts model.GroupOptions) ([]model.Group, error) {
	groups, err := s.store.QueryGroups(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("groups: get: %w", err)
	}

	for i := range groups {
		if opts.Permalink {
			page, err := s.FindBestPage(ctx, groups[i])
			if err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					continue
				}
				return nil, fmt.Errorf("groups: permalink for %q: %w", groups[i].ID, err)
			}
			groups[i].URL = "/" + page.Slug
		}
		if opts.GetPeople {
			if err := s.attachPeople(ctx, &groups[i]); err != nil {
				return nil, err
			}
		}
	}
	return groups, nil
}

// GetOne returns the first group matching the criteria, or
// storage.ErrNotFound when none does.
func (s *Service) GetOne(ctx context.Context, c model.GroupCriteria, opts model.GroupOptions) (model.Group, error) {
	groups, err := s.Get(ctx, c, opts)
	if err != nil {
		return model.Group{}, err
	}
	if len(groups) == 0 {
		return model.Group{}, fmt.Errorf("groups: get one: %w", storage.ErrNotFound)
	}
	return groups[0], nil
}

// FindBestPage resolves the directory page for a group. A page locked to the
// group wins; otherwise the generic fallback page serves. The placeholder
// group never has a locked page, so it resolves straight to the fallback.
func (s *Service) FindBestPage(ctx context.Context, group model.Group) (model.PageRef, error) {
	if group.ID != model.PlaceholderGroupID {
		page, err := s.store.PageForGroup(ctx, group.ID)
		if err == nil {
			return page.Ref(), nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return model.PageRef{}, fmt.Errorf("groups: best page for %q: %w", group.ID, err)
		}
	}

	page, err := s.store.FallbackPage(ctx)
	if err != nil {
		return model.PageRef{}, fmt.Errorf("groups: best page for %q: %w", group.ID, err)
	}
	return page.Ref(), nil
}

// attachPeople loads the group's membership. Password hashes are stripped
// before the records leave the store layer.
func (s *Service) attachPeople(ctx context.Context, g *model.Group) error {
	rs, err := s.store.QueryPeople(ctx, model.Criteria{GroupID: g.ID}, model.QueryOptions{})
	if err != nil {
		return fmt.Errorf("groups: people for %q: %w", g.ID, err)
	}
	for i := range rs.People {
		rs.People[i].PasswordHash = ""
	}
	g.People = rs.People
	return nil
}

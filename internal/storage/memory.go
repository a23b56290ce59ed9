package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alanhoff/apostrophe-people/internal/model"
)

// Memory is an in-process store with the same behavior as DB, including the
// uniqueness guarantees the database enforces with indexes. Safe for
// concurrent use.
type Memory struct {
	mu     sync.RWMutex
	people map[string]model.Person
	groups map[string]model.Group
	pages  map[string]model.Page
}

// NewMemory creates an empty in-process store.
func NewMemory() *Memory {
	return &Memory{
		people: make(map[string]model.Person),
		groups: make(map[string]model.Group),
		pages:  make(map[string]model.Page),
	}
}

// QueryPeople returns person records matching the criteria. Total counts all
// matches before pagination.
func (m *Memory) QueryPeople(ctx context.Context, c model.Criteria, opts model.QueryOptions) (model.ResultSet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := []model.Person{}
	for _, p := range m.people {
		if personMatches(p, c) {
			matched = append(matched, p)
		}
	}

	sortFields := opts.Sort
	if len(sortFields) == 0 {
		sortFields = model.DefaultPersonSort()
	}
	for _, s := range sortFields {
		if _, ok := personSortColumns[s.Field]; !ok {
			return model.ResultSet{}, fmt.Errorf("storage: unsortable field %q", s.Field)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		for _, s := range sortFields {
			a, b := personSortKey(matched[i], s.Field), personSortKey(matched[j], s.Field)
			if a == b {
				continue
			}
			if s.Desc {
				return a > b
			}
			return a < b
		}
		return false
	})

	total := len(matched)
	if opts.Offset > 0 {
		if opts.Offset >= len(matched) {
			matched = []model.Person{}
		} else {
			matched = matched[opts.Offset:]
		}
	}
	if opts.Limit > 0 && opts.Limit < len(matched) {
		matched = matched[:opts.Limit]
	}

	out := make([]model.Person, len(matched))
	copy(out, matched)
	return model.ResultSet{People: out, Total: total}, nil
}

// SavePerson upserts a person record, enforcing the login-username and slug
// uniqueness the database enforces with indexes.
func (m *Memory) SavePerson(ctx context.Context, p model.Person) (model.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	for _, other := range m.people {
		if other.ID == p.ID {
			continue
		}
		if p.Login && other.Login && other.Username == p.Username {
			return model.Person{}, fmt.Errorf("storage: save person %q: %w", p.ID, ErrConflict)
		}
		if p.Slug != "" && other.Slug == p.Slug {
			return model.Person{}, fmt.Errorf("storage: save person %q: %w", p.ID, ErrConflict)
		}
	}

	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	if p.GroupIDs == nil {
		p.GroupIDs = []string{}
	}

	m.people[p.ID] = p
	return p, nil
}

// QueryGroups returns groups matching the criteria, ordered by title.
func (m *Memory) QueryGroups(ctx context.Context, c model.GroupCriteria) ([]model.Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	groups := []model.Group{}
	for _, g := range m.groups {
		if c.ID != "" && g.ID != c.ID {
			continue
		}
		if len(c.IDs) > 0 && !containsString(c.IDs, g.ID) {
			continue
		}
		if c.Slug != "" && g.Slug != c.Slug {
			continue
		}
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Title < groups[j].Title })
	return groups, nil
}

// SaveGroup upserts a group record.
func (m *Memory) SaveGroup(ctx context.Context, g model.Group) (model.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.Type == "" {
		g.Type = "group"
	}
	for _, other := range m.groups {
		if other.ID != g.ID && g.Slug != "" && other.Slug == g.Slug {
			return model.Group{}, fmt.Errorf("storage: save group %q: %w", g.ID, ErrConflict)
		}
	}

	now := time.Now().UTC()
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}
	g.UpdatedAt = now

	m.groups[g.ID] = g
	return g, nil
}

// PageForGroup returns the directory page locked to the given group.
func (m *Memory) PageForGroup(ctx context.Context, groupID string) (model.Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var found *model.Page
	for _, p := range m.pages {
		if p.GroupID != groupID {
			continue
		}
		if found == nil || p.CreatedAt.Before(found.CreatedAt) {
			page := p
			found = &page
		}
	}
	if found == nil {
		return model.Page{}, fmt.Errorf("storage: page for group %q: %w", groupID, ErrNotFound)
	}
	return *found, nil
}

// FallbackPage returns the oldest directory page not locked to any group.
func (m *Memory) FallbackPage(ctx context.Context) (model.Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var found *model.Page
	for _, p := range m.pages {
		if p.GroupID != "" || p.Type != "directory" {
			continue
		}
		if found == nil || p.CreatedAt.Before(found.CreatedAt) {
			page := p
			found = &page
		}
	}
	if found == nil {
		return model.Page{}, fmt.Errorf("storage: fallback page: %w", ErrNotFound)
	}
	return *found, nil
}

// SavePage upserts a directory page.
func (m *Memory) SavePage(ctx context.Context, p model.Page) (model.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Type == "" {
		p.Type = "directory"
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	m.pages[p.ID] = p
	return p, nil
}

func personMatches(p model.Person, c model.Criteria) bool {
	if c.ID != "" && p.ID != c.ID {
		return false
	}
	if len(c.IDs) > 0 && !containsString(c.IDs, p.ID) {
		return false
	}
	if c.Slug != "" && p.Slug != c.Slug {
		return false
	}
	if c.Username != "" && p.Username != c.Username {
		return false
	}
	if c.GroupID != "" && !containsString(p.GroupIDs, c.GroupID) {
		return false
	}
	if c.Login != nil && p.Login != *c.Login {
		return false
	}
	if c.LastNamePrefix != "" && !hasFoldPrefix(p.LastName, c.LastNamePrefix) {
		return false
	}
	if c.TitlePrefix != "" && !hasFoldPrefix(p.Title, c.TitlePrefix) {
		return false
	}
	return true
}

func personSortKey(p model.Person, field string) string {
	switch field {
	case "lastName":
		return strings.ToLower(p.LastName)
	case "firstName":
		return strings.ToLower(p.FirstName)
	case "title":
		return strings.ToLower(p.Title)
	case "username":
		return strings.ToLower(p.Username)
	case "createdAt":
		return p.CreatedAt.Format(time.RFC3339Nano)
	default:
		return ""
	}
}

func hasFoldPrefix(s, prefix string) bool {
	if len(s) < len(prefix) {
		return false
	}
	return strings.EqualFold(s[:len(prefix)], prefix)
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

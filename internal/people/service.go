// Package people implements the account record layer: query composition over
// the record store, credential handling, username negotiation, group
// enrichment, and permalink resolution.
package people

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alanhoff/apostrophe-people/internal/credential"
	"github.com/alanhoff/apostrophe-people/internal/ctxutil"
	"github.com/alanhoff/apostrophe-people/internal/model"
	"github.com/alanhoff/apostrophe-people/internal/permission"
	"github.com/alanhoff/apostrophe-people/internal/storage"
)

const defaultAutocompleteLimit = 10

// RecordStore is the persistence the people service needs.
type RecordStore interface {
	QueryPeople(ctx context.Context, c model.Criteria, opts model.QueryOptions) (model.ResultSet, error)
	SavePerson(ctx context.Context, p model.Person) (model.Person, error)
}

// GroupService joins group content onto person records and resolves
// directory pages.
type GroupService interface {
	Get(ctx context.Context, c model.GroupCriteria, opts model.GroupOptions) ([]model.Group, error)
	GetOne(ctx context.Context, c model.GroupCriteria, opts model.GroupOptions) (model.Group, error)
	FindBestPage(ctx context.Context, group model.Group) (model.PageRef, error)
}

// Service is the account record access layer.
type Service struct {
	store  RecordStore
	groups GroupService
	perms  *permission.Service
	logger *slog.Logger
}

// NewService creates a people service.
func NewService(store RecordStore, groups GroupService, perms *permission.Service, logger *slog.Logger) *Service {
	return &Service{store: store, groups: groups, perms: perms, logger: logger}
}

// Get returns person records matching the caller's criteria AND the filter
// criteria derived from opts. When the two sides constrain a field
// incompatibly the conjunction matches nothing and an empty result is
// returned without touching the store.
//
// Password hashes are cleared on every returned record, and each record
// carries its groups unless opts.SkipGroups is set.
func (s *Service) Get(ctx context.Context, c model.Criteria, opts model.GetOptions) (model.ResultSet, error) {
	derived := model.Criteria{
		Login:          opts.Login,
		LastNamePrefix: opts.Letter,
	}

	merged, ok := model.MergeCriteria(c, derived)
	if !ok {
		return model.ResultSet{People: []model.Person{}}, nil
	}

	sort := opts.Sort
	if len(sort) == 0 {
		sort = model.DefaultPersonSort()
	}

	rs, err := s.store.QueryPeople(ctx, merged, model.QueryOptions{
		Sort:   sort,
		Limit:  opts.Limit,
		Offset: opts.Offset,
	})
	if err != nil {
		return model.ResultSet{}, fmt.Errorf("people: get: %w", err)
	}

	for i := range rs.People {
		rs.People[i].PasswordHash = ""
	}

	if !opts.SkipGroups {
		if err := s.attachGroups(ctx, rs.People); err != nil {
			return model.ResultSet{}, fmt.Errorf("people: get: %w", err)
		}
	}
	return rs, nil
}

// GetOne returns the first person matching the criteria, or
// storage.ErrNotFound when none does.
func (s *Service) GetOne(ctx context.Context, c model.Criteria, opts model.GetOptions) (model.Person, error) {
	opts.Limit = 1
	rs, err := s.Get(ctx, c, opts)
	if err != nil {
		return model.Person{}, err
	}
	if len(rs.People) == 0 {
		return model.Person{}, fmt.Errorf("people: get one: %w", storage.ErrNotFound)
	}
	return rs.People[0], nil
}

// Save creates or updates a person record. Cosmetic fields are sanitized to
// safe defaults, the slug is derived from the title and uniqued, and the
// password is hashed before it reaches the store. An update that supplies no
// new password keeps the existing hash byte for byte.
func (s *Service) Save(ctx context.Context, p model.Person, password string) (model.Person, error) {
	id := ctxutil.IdentityFromContext(ctx)
	if err := s.perms.Can(ctx, id, "edit-people"); err != nil {
		return model.Person{}, err
	}

	var existing *model.Person
	if p.ID != "" {
		rs, err := s.store.QueryPeople(ctx, model.Criteria{ID: p.ID}, model.QueryOptions{Limit: 1})
		if err != nil {
			return model.Person{}, fmt.Errorf("people: save: load existing: %w", err)
		}
		if len(rs.People) > 0 {
			existing = &rs.People[0]
		}
	}

	sanitizePerson(&p)

	hash, err := s.resolveHash(existing, password)
	if err != nil {
		return model.Person{}, fmt.Errorf("people: save: %w", err)
	}
	p.PasswordHash = hash

	if existing != nil && p.Slug == "" {
		p.Slug = existing.Slug
	}
	if p.Slug == "" {
		slug, err := s.uniqueSlug(ctx, slugify(p.Title), p.ID)
		if err != nil {
			return model.Person{}, fmt.Errorf("people: save: %w", err)
		}
		p.Slug = slug
	}
	if existing != nil {
		p.CreatedAt = existing.CreatedAt
	}

	saved, err := s.store.SavePerson(ctx, p)
	if err != nil {
		return model.Person{}, fmt.Errorf("people: save: %w", err)
	}

	s.logger.Info("person saved", "id", saved.ID, "slug", saved.Slug, "login", saved.Login)

	saved.PasswordHash = ""
	return saved, nil
}

// resolveHash decides what hash the stored record carries. A new password
// always rehashes. Without one, an existing hash is kept unchanged, and a
// brand-new record gets a hash of a random secret so the column is never
// empty and the account is not enterable by any guessable value.
func (s *Service) resolveHash(existing *model.Person, password string) (string, error) {
	if password != "" {
		return credential.Hash(password)
	}
	if existing != nil && existing.PasswordHash != "" {
		return existing.PasswordHash, nil
	}
	secret, err := credential.RandomSecret()
	if err != nil {
		return "", err
	}
	return credential.Hash(secret)
}

// Autocomplete returns typeahead entries for persons whose title starts with
// the term. The projection is fixed; no other person data leaves this path.
func (s *Service) Autocomplete(ctx context.Context, term string, limit int) ([]model.AutocompleteEntry, error) {
	if limit <= 0 {
		limit = defaultAutocompleteLimit
	}

	rs, err := s.Get(ctx, model.Criteria{TitlePrefix: term}, model.GetOptions{
		Sort:       []model.SortField{{Field: "title"}},
		Limit:      limit,
		SkipGroups: true,
	})
	if err != nil {
		return nil, fmt.Errorf("people: autocomplete: %w", err)
	}

	entries := make([]model.AutocompleteEntry, 0, len(rs.People))
	for _, p := range rs.People {
		entries = append(entries, model.AutocompleteEntryFor(p))
	}
	return entries, nil
}

// GeneratePassword returns a fresh memorable passphrase. Gated on the
// edit-profile permission so only account-editing callers can mint them.
func (s *Service) GeneratePassword(ctx context.Context) (string, error) {
	id := ctxutil.IdentityFromContext(ctx)
	if err := s.perms.Can(ctx, id, "edit-profile"); err != nil {
		return "", err
	}
	return credential.GeneratePassphrase()
}

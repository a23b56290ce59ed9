package model

import "time"

// Person is an account record layered on the generic content-record store.
// It may or may not be login-enabled; a username is stored regardless, but
// only login-enabled usernames are subject to the store's uniqueness index.
type Person struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Slug      string   `json:"slug"`
	Login     bool     `json:"login"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	Phone     string   `json:"phone"`
	GroupIDs  []string `json:"group_ids"`

	// PasswordHash is write-only: the read path clears it before a record
	// leaves the service, and it is never serialized.
	PasswordHash string `json:"-"`

	// Groups is attached by the enricher in GroupIDs order. Never persisted.
	Groups []Group `json:"groups,omitempty"`

	// URL is the permalink under the person's best directory page. Derived,
	// never persisted.
	URL string `json:"url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AutocompleteEntry is the fixed field projection served to typeahead
// consumers. Nothing else from the person record is exposed on this path.
type AutocompleteEntry struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Login     bool   `json:"login"`
	Username  string `json:"username"`
	Slug      string `json:"slug"`
}

// AutocompleteTitle disambiguates a person's display title for typeahead:
// login-enabled persons show their username, others their slug.
func AutocompleteTitle(p Person) string {
	if p.Login {
		return p.Title + " (" + p.Username + ")"
	}
	return p.Title + " (" + p.Slug + ")"
}

// AutocompleteEntryFor builds the projection for one person.
func AutocompleteEntryFor(p Person) AutocompleteEntry {
	return AutocompleteEntry{
		ID:        p.ID,
		Title:     AutocompleteTitle(p),
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Login:     p.Login,
		Username:  p.Username,
		Slug:      p.Slug,
	}
}

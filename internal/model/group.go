package model

import "time"

// PlaceholderGroupID identifies the synthetic stand-in group used to resolve
// a best page for persons with no groups. No persisted page is ever locked to
// this identifier, so resolution falls through to the generic directory page.
const PlaceholderGroupID = "placeholder"

// Group is a referenced entity owned by the group subsystem. The people layer
// holds only GroupIDs on person records; group content is joined at read time.
type Group struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title"`
	Slug  string `json:"slug"`

	// URL is the group's permalink to its best directory page, attached when
	// requested via GroupOptions.Permalink. Never persisted.
	URL string `json:"url,omitempty"`

	// People is the group's membership, attached only when
	// GroupOptions.GetPeople is set. Never persisted.
	People []Person `json:"people,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PlaceholderGroup returns the non-persisted stand-in group. It guarantees
// the group service always has a concrete input for best-page resolution.
func PlaceholderGroup() Group {
	return Group{ID: PlaceholderGroupID, Type: "group"}
}

// PageRef identifies a navigable directory page.
type PageRef struct {
	ID    string `json:"id"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

// Page is a stored directory page. A page locked to a group (GroupID set)
// is that group's best page; pages with no lock serve as the generic
// fallback the placeholder group resolves to.
type Page struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Type      string    `json:"type"`
	GroupID   string    `json:"group_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Ref returns the navigable reference for a page.
func (p Page) Ref() PageRef {
	return PageRef{ID: p.ID, Slug: p.Slug, Title: p.Title}
}

// GroupCriteria selects groups. Zero-valued fields are not constrained.
type GroupCriteria struct {
	ID   string
	IDs  []string
	Slug string
}

// GroupOptions controls how much related data the group service attaches.
type GroupOptions struct {
	// GetPeople attaches group membership. The people layer always passes
	// false here to break the mutual person<->group enrichment recursion.
	GetPeople bool

	// Permalink attaches each group's best directory page URL.
	Permalink bool
}

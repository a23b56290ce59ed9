package model

import "strings"

// Criteria selects person records. Zero-valued fields are not constrained;
// all set fields must hold (conjunction). The store applies exact matches
// case-sensitively and prefix matches case-insensitively.
type Criteria struct {
	ID       string
	IDs      []string
	Slug     string
	Username string
	GroupID  string // matches persons whose GroupIDs contain this id

	// Login filters on the login flag. nil accepts any value — absence of
	// the flag never means "false".
	Login *bool

	// LastNamePrefix is a case-insensitive "starts with" match on lastName.
	LastNamePrefix string

	// TitlePrefix is a case-insensitive "starts with" match on title,
	// used by the autocomplete path.
	TitlePrefix string
}

// MergeCriteria combines caller-supplied criteria with derived filter
// criteria as a logical AND. Neither side overrides the other: when the two
// constrain the same field incompatibly, ok is false and the conjunction
// matches nothing.
func MergeCriteria(a, b Criteria) (merged Criteria, ok bool) {
	merged = a
	ok = true

	if merged.ID, ok = mergeExact(a.ID, b.ID); !ok {
		return Criteria{}, false
	}
	if merged.Slug, ok = mergeExact(a.Slug, b.Slug); !ok {
		return Criteria{}, false
	}
	if merged.Username, ok = mergeExact(a.Username, b.Username); !ok {
		return Criteria{}, false
	}
	if merged.GroupID, ok = mergeExact(a.GroupID, b.GroupID); !ok {
		return Criteria{}, false
	}
	if merged.Login, ok = mergeBool(a.Login, b.Login); !ok {
		return Criteria{}, false
	}
	if merged.LastNamePrefix, ok = mergePrefix(a.LastNamePrefix, b.LastNamePrefix); !ok {
		return Criteria{}, false
	}
	if merged.TitlePrefix, ok = mergePrefix(a.TitlePrefix, b.TitlePrefix); !ok {
		return Criteria{}, false
	}
	if merged.IDs, ok = mergeIDs(a.IDs, b.IDs); !ok {
		return Criteria{}, false
	}
	return merged, true
}

func mergeExact(a, b string) (string, bool) {
	switch {
	case a == "":
		return b, true
	case b == "" || a == b:
		return a, true
	default:
		return "", false
	}
}

func mergeBool(a, b *bool) (*bool, bool) {
	switch {
	case a == nil:
		return b, true
	case b == nil || *a == *b:
		return a, true
	default:
		return nil, false
	}
}

// mergePrefix keeps the more specific of two prefix constraints. Two
// prefixes are compatible only when one is a (case-insensitive) prefix of
// the other.
func mergePrefix(a, b string) (string, bool) {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	switch {
	case a == "":
		return b, true
	case b == "" || strings.HasPrefix(la, lb):
		return a, true
	case strings.HasPrefix(lb, la):
		return b, true
	default:
		return "", false
	}
}

// mergeIDs intersects two id lists. An empty list means unconstrained; a
// non-empty intersection of two non-empty lists must itself be non-empty.
func mergeIDs(a, b []string) ([]string, bool) {
	if len(a) == 0 {
		return b, true
	}
	if len(b) == 0 {
		return a, true
	}
	inB := make(map[string]bool, len(b))
	for _, id := range b {
		inB[id] = true
	}
	var out []string
	for _, id := range a {
		if inB[id] {
			out = append(out, id)
		}
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

// SortField orders a result set by a named person field.
type SortField struct {
	Field string
	Desc  bool
}

// DefaultPersonSort orders by lastName then firstName, ascending. The
// firstName tie-break keeps the ordering stable and deterministic.
func DefaultPersonSort() []SortField {
	return []SortField{{Field: "lastName"}, {Field: "firstName"}}
}

// QueryOptions is the store-level options structure.
type QueryOptions struct {
	Sort   []SortField
	Limit  int
	Offset int
}

// ResultSet is a page of person records plus the pagination metadata the
// store emits.
type ResultSet struct {
	People []Person `json:"people"`
	Total  int      `json:"total"`
}

// GetOptions is the composer-level options structure for listing and
// fetching person records.
type GetOptions struct {
	// Login narrows to login-enabled (true) or login-disabled (false)
	// persons. nil accepts any value.
	Login *bool

	// Letter narrows to persons whose lastName starts with the given
	// letter, case-insensitively.
	Letter string

	Sort   []SortField
	Limit  int
	Offset int

	// SkipGroups disables group enrichment. The group service passes this
	// when it needs person data itself, to avoid recursive enrichment.
	SkipGroups bool
}

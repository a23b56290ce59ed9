package people

import (
	"context"
	"fmt"

	"github.com/alanhoff/apostrophe-people/internal/model"
)

// attachGroups joins group content onto person records in place. All groups
// referenced by the batch are fetched in one query and mapped back onto each
// person in GroupIDs order. Dangling ids are skipped silently.
//
// The join requests permalinks but never membership, which would recurse
// back into person queries.
func (s *Service) attachGroups(ctx context.Context, people []model.Person) error {
	var ids []string
	seen := make(map[string]bool)
	for _, p := range people {
		for _, id := range p.GroupIDs {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	if len(ids) == 0 {
		return nil
	}

	groups, err := s.groups.Get(ctx, model.GroupCriteria{IDs: ids}, model.GroupOptions{
		GetPeople: false,
		Permalink: true,
	})
	if err != nil {
		return fmt.Errorf("people: attach groups: %w", err)
	}

	byID := make(map[string]model.Group, len(groups))
	for _, g := range groups {
		byID[g.ID] = g
	}

	for i := range people {
		var attached []model.Group
		for _, id := range people[i].GroupIDs {
			if g, ok := byID[id]; ok {
				attached = append(attached, g)
			}
		}
		people[i].Groups = attached
	}
	return nil
}

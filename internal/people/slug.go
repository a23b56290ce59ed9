package people

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/alanhoff/apostrophe-people/internal/model"
)

// uniqueSlug negotiates a free slug starting from the candidate, using the
// same digit-append strategy as username negotiation. A match on selfID does
// not count as a collision, so re-saving a record keeps its slug.
func (s *Service) uniqueSlug(ctx context.Context, candidate, selfID string) (string, error) {
	if candidate == "" {
		candidate = "person"
	}

	for attempt := 0; attempt < maxUsernameAttempts; attempt++ {
		rs, err := s.store.QueryPeople(ctx, model.Criteria{Slug: candidate}, model.QueryOptions{Limit: 1})
		if err != nil {
			return "", fmt.Errorf("people: unique slug: %w", err)
		}
		if rs.Total == 0 || (len(rs.People) > 0 && rs.People[0].ID == selfID) {
			return candidate, nil
		}
		candidate += strconv.Itoa(rand.IntN(10))
	}
	return "", ErrGenerationExhausted
}

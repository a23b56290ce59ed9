package people

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/alanhoff/apostrophe-people/internal/ctxutil"
	"github.com/alanhoff/apostrophe-people/internal/model"
)

// maxUsernameAttempts bounds the mutation loop. With single random digits
// appended per round, a hundred rounds failing means the namespace around
// the candidate is effectively saturated.
const maxUsernameAttempts = 100

// ErrGenerationExhausted is returned when no free username was found within
// the attempt budget.
var ErrGenerationExhausted = errors.New("people: username generation exhausted")

// UniqueUsername negotiates a free username starting from the candidate. The
// candidate is returned unchanged when no person holds it; otherwise random
// digits are appended one per round until a free value is found.
//
// The result is advisory. Between this check and the subsequent save another
// writer can claim the value; the store's partial unique index is the
// authoritative guarantee and surfaces such races as a conflict at save time.
func (s *Service) UniqueUsername(ctx context.Context, candidate string) (string, error) {
	id := ctxutil.IdentityFromContext(ctx)
	if err := s.perms.Can(ctx, id, "edit-people"); err != nil {
		return "", err
	}
	if candidate == "" {
		return "", fmt.Errorf("people: unique username: empty candidate")
	}

	for attempt := 0; attempt < maxUsernameAttempts; attempt++ {
		rs, err := s.store.QueryPeople(ctx, model.Criteria{Username: candidate}, model.QueryOptions{Limit: 1})
		if err != nil {
			return "", fmt.Errorf("people: unique username: %w", err)
		}
		if rs.Total == 0 {
			return candidate, nil
		}
		candidate += strconv.Itoa(rand.IntN(10))
	}
	return "", ErrGenerationExhausted
}

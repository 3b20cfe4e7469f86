package matchmaking

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/jason-s-yu/apdebate/internal/models"
)

func makeParticipants(prefix string, n int) []models.Participant {
	ps := make([]models.Participant, n)
	for i := range ps {
		ps[i] = models.Participant{ID: uuid.New(), Name: fmt.Sprintf("%s%d", prefix, i+1)}
	}
	return ps
}

func newTestAllocator(seed int64) *Allocator {
	return NewAllocator(rand.New(rand.NewSource(seed)))
}

// newStandardRound allocates a 3v3 round with three judges.
func newStandardRound(seed int64) *Round {
	return newTestAllocator(seed).Allocate(makeParticipants("d", 6), makeParticipants("j", 3), FormatStandard)
}

func ids(ps []models.Participant) map[uuid.UUID]bool {
	out := make(map[uuid.UUID]bool, len(ps))
	for _, p := range ps {
		out[p.ID] = true
	}
	return out
}

// verify checks that nobody holds two seats and both benches are within
// capacity. Assumes lock is held.
func (r *Round) verify() error {
	seen := make(map[uuid.UUID]bool)
	check := func(p models.Participant) error {
		if seen[p.ID] {
			return fmt.Errorf("participant %s seated twice: %w", p.ID, ErrInvalidState)
		}
		seen[p.ID] = true
		return nil
	}
	for _, t := range []*Team{r.pro, r.con} {
		if t.Len() > t.Type.Capacity() {
			return fmt.Errorf("%s over capacity: %w", t.Side.Label(), ErrInvalidState)
		}
		for _, p := range t.slots {
			if err := check(p); err != nil {
				return err
			}
		}
	}
	if r.judges.chair == nil && len(r.judges.panelists) > 0 {
		return fmt.Errorf("panelists without a chair: %w", ErrInvalidState)
	}
	for _, p := range r.judges.All() {
		if err := check(p); err != nil {
			return err
		}
	}
	return nil
}

// internal/matchmaking/round.go
package matchmaking

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/apdebate/internal/models"
)

// RoundState is the lifecycle state of an allocation.
type RoundState string

const (
	RoundOpen      RoundState = "open"
	RoundSealed    RoundState = "sealed"
	RoundCancelled RoundState = "cancelled"
)

type locationKind int

const (
	locPro locationKind = iota
	locCon
	locChair
	locPanelist
)

// location is a single seat in a round: a team slot, the chair, or a panelist index.
type location struct {
	kind  locationKind
	index int
}

// Round is an allocation of participants to two teams and a judge panel.
// While open it can be adjusted; sealing or cancelling freezes it. Every
// exported method holds the round's lock for its full duration, so a
// participant occupies exactly one seat between calls.
type Round struct {
	ID        int64
	Format    RoundFormat
	Lobby     string
	HostID    uuid.UUID
	CreatedAt time.Time

	mu     sync.Mutex
	pro    *Team
	con    *Team
	judges JudgePanel
	topic  string
	state  RoundState
}

func (r *Round) team(side Side) *Team {
	if side == SideCon {
		return r.con
	}
	return r.pro
}

// locate finds the seat held by id. Assumes lock is held.
func (r *Round) locate(id uuid.UUID) (location, bool) {
	if i := r.pro.indexOf(id); i >= 0 {
		return location{kind: locPro, index: i}, true
	}
	if i := r.con.indexOf(id); i >= 0 {
		return location{kind: locCon, index: i}, true
	}
	if r.judges.chair != nil && r.judges.chair.ID == id {
		return location{kind: locChair}, true
	}
	if i := indexOf(r.judges.panelists, id); i >= 0 {
		return location{kind: locPanelist, index: i}, true
	}
	return location{}, false
}

// occupant returns the participant seated at loc. Assumes lock is held.
func (r *Round) occupant(loc location) models.Participant {
	switch loc.kind {
	case locPro:
		return r.pro.slots[loc.index]
	case locCon:
		return r.con.slots[loc.index]
	case locChair:
		return *r.judges.chair
	default:
		return r.judges.panelists[loc.index]
	}
}

// put seats p at an occupied loc, replacing whoever was there.
func (r *Round) put(loc location, p models.Participant) {
	switch loc.kind {
	case locPro:
		r.pro.slots[loc.index] = p
	case locCon:
		r.con.slots[loc.index] = p
	case locChair:
		r.judges.chair = &p
	default:
		r.judges.panelists[loc.index] = p
	}
}

func (r *Round) requireOpen() error {
	if r.state != RoundOpen {
		return fmt.Errorf("round %d is %s: %w", r.ID, r.state, ErrRoundClosed)
	}
	return nil
}

// Swap exchanges the seats of a and b. Team positions travel with the seat,
// so swapping a government whip with a panelist makes the panelist the whip.
func (r *Round) Swap(a, b uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.requireOpen(); err != nil {
		return err
	}
	locA, okA := r.locate(a)
	locB, okB := r.locate(b)
	if !okA || !okB {
		return ErrNotInRound
	}
	if a == b {
		return nil
	}
	pa, pb := r.occupant(locA), r.occupant(locB)
	r.put(locA, pb)
	r.put(locB, pa)
	return nil
}

// MoveToJudge takes a debater off its team and seats it on the judge panel.
func (r *Round) MoveToJudge(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.requireOpen(); err != nil {
		return err
	}
	loc, ok := r.locate(id)
	if !ok {
		return ErrNotInRound
	}
	var t *Team
	switch loc.kind {
	case locPro:
		t = r.pro
	case locCon:
		t = r.con
	default:
		return ErrNotOnTeam
	}
	r.judges.Add(t.removeAt(loc.index))
	return nil
}

// MoveToTeam moves a judge onto the given bench. A full bench rejects the
// move and the judge keeps its seat.
func (r *Round) MoveToTeam(id uuid.UUID, side Side) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.requireOpen(); err != nil {
		return err
	}
	if side != SidePro && side != SideCon {
		return ErrBadSide
	}
	loc, ok := r.locate(id)
	if !ok {
		return ErrNotInRound
	}
	if loc.kind != locChair && loc.kind != locPanelist {
		return ErrNotJudge
	}
	t := r.team(side)
	if t.IsFull() {
		return fmt.Errorf("%s: %w", side.Label(), ErrTeamFull)
	}
	p := r.occupant(loc)
	r.judges.Remove(id)
	t.append(p)
	return nil
}

// ResizeTeam sets a bench's capacity. Shrinking below the current member
// count evicts the last-indexed speakers to the judge panel; growing leaves
// the new slot empty. The evicted participants are returned.
func (r *Round) ResizeTeam(side Side, typ TeamType) ([]models.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.requireOpen(); err != nil {
		return nil, err
	}
	if side != SidePro && side != SideCon {
		return nil, ErrBadSide
	}
	if typ != TeamIron && typ != TeamFull {
		return nil, ErrBadTeamType
	}
	t := r.team(side)
	var evicted []models.Participant
	for t.Len() > typ.Capacity() {
		p := t.removeAt(t.Len() - 1)
		r.judges.Add(p)
		evicted = append(evicted, p)
	}
	t.Type = typ
	return evicted, nil
}

// Seal attaches the topic and freezes the round.
func (r *Round) Seal(topic string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.requireOpen(); err != nil {
		return err
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return ErrEmptyTopic
	}
	r.topic = topic
	r.state = RoundSealed
	return nil
}

// Cancel discards an open round.
func (r *Round) Cancel() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.requireOpen(); err != nil {
		return err
	}
	r.state = RoundCancelled
	return nil
}

func (r *Round) State() RoundState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Participants returns everyone seated in the round, benches first.
func (r *Round) Participants() []models.Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := append(r.pro.Members(), r.con.Members()...)
	return append(all, r.judges.All()...)
}

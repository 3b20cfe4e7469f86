package matchmaking

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/jason-s-yu/apdebate/internal/models"
)

// Side identifies one of the two benches.
type Side string

const (
	SidePro Side = "pro"
	SideCon Side = "con"
)

// Label returns the bench name used in the debate format.
func (s Side) Label() string {
	if s == SideCon {
		return "Opposition"
	}
	return "Government"
}

// ParseSide accepts pro/con as well as the government/opposition names.
func ParseSide(s string) (Side, error) {
	switch s {
	case "pro", "gov", "government":
		return SidePro, nil
	case "con", "opp", "opposition":
		return SideCon, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrBadSide)
}

// TeamType is a team's capacity configuration.
type TeamType string

const (
	TeamIron TeamType = "iron" // 2 speakers
	TeamFull TeamType = "full" // 3 speakers
)

func (t TeamType) Capacity() int {
	if t == TeamFull {
		return 3
	}
	return 2
}

func ParseTeamType(s string) (TeamType, error) {
	switch TeamType(s) {
	case TeamIron, TeamFull:
		return TeamType(s), nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrBadTeamType)
}

var positionNames = map[Side]map[TeamType][]string{
	SidePro: {
		TeamFull: {"Prime Minister", "Deputy Prime Minister", "Government Whip"},
		TeamIron: {"Prime Minister", "Government Whip"},
	},
	SideCon: {
		TeamFull: {"Leader of Opposition", "Deputy Leader of Opposition", "Opposition Whip"},
		TeamIron: {"Leader of Opposition", "Opposition Whip"},
	},
}

// Team is one bench of a round. len(slots) never exceeds Type.Capacity().
type Team struct {
	Side  Side
	Type  TeamType
	slots []models.Participant
}

func newTeam(side Side, typ TeamType, members []models.Participant) *Team {
	if len(members) > typ.Capacity() {
		panic(fmt.Sprintf("matchmaking: %d members exceed %s capacity %d", len(members), typ, typ.Capacity()))
	}
	return &Team{Side: side, Type: typ, slots: slices.Clone(members)}
}

// PositionName returns the speaking position for slot i.
func (t *Team) PositionName(i int) string {
	names := positionNames[t.Side][t.Type]
	if i >= 0 && i < len(names) {
		return names[i]
	}
	return fmt.Sprintf("Speaker %d", i+1)
}

func (t *Team) Members() []models.Participant { return slices.Clone(t.slots) }

func (t *Team) Len() int { return len(t.slots) }

func (t *Team) IsFull() bool { return len(t.slots) >= t.Type.Capacity() }

func (t *Team) indexOf(id uuid.UUID) int { return indexOf(t.slots, id) }

func (t *Team) append(p models.Participant) bool {
	if t.IsFull() {
		return false
	}
	t.slots = append(t.slots, p)
	return true
}

func (t *Team) removeAt(i int) models.Participant {
	p := t.slots[i]
	t.slots = slices.Delete(t.slots, i, i+1)
	return p
}

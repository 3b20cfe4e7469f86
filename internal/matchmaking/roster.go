package matchmaking

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/jason-s-yu/apdebate/internal/models"
)

// Role is the registration role a participant holds in a lobby roster.
type Role int

const (
	RoleNone Role = iota
	RoleDebater
	RoleJudge
)

func (r Role) String() string {
	switch r {
	case RoleDebater:
		return "debater"
	case RoleJudge:
		return "judge"
	default:
		return "none"
	}
}

// ParseRole maps "debater" / "judge" to a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "debater":
		return RoleDebater, nil
	case "judge":
		return RoleJudge, nil
	}
	return RoleNone, fmt.Errorf("unknown role %q: %w", s, ErrInvalidArgument)
}

// Roster holds a lobby's registered debaters and judges in join order.
// A participant is in at most one of the two lists. Roster is not safe for
// concurrent use; the owning lobby serializes access.
type Roster struct {
	debaters []models.Participant
	judges   []models.Participant
}

// NewRoster returns an empty roster.
func NewRoster() *Roster {
	return &Roster{}
}

// AddDebater registers p as a debater, removing it from the judges first.
// added is false when p was already a debater; previous is the role p held
// before the call.
func (r *Roster) AddDebater(p models.Participant) (added bool, previous Role) {
	return r.add(p, RoleDebater)
}

// AddJudge registers p as a judge, removing it from the debaters first.
func (r *Roster) AddJudge(p models.Participant) (added bool, previous Role) {
	return r.add(p, RoleJudge)
}

func (r *Roster) add(p models.Participant, role Role) (bool, Role) {
	previous := r.RoleOf(p.ID)
	if previous == role {
		return false, previous
	}
	if previous != RoleNone {
		r.Remove(p.ID)
	}
	if role == RoleDebater {
		r.debaters = append(r.debaters, p)
	} else {
		r.judges = append(r.judges, p)
	}
	return true, previous
}

// Remove drops id from whichever list holds it and reports whether it was present.
func (r *Roster) Remove(id uuid.UUID) bool {
	if i := indexOf(r.debaters, id); i >= 0 {
		r.debaters = slices.Delete(r.debaters, i, i+1)
		return true
	}
	if i := indexOf(r.judges, id); i >= 0 {
		r.judges = slices.Delete(r.judges, i, i+1)
		return true
	}
	return false
}

// RoleOf returns the role id is registered under, or RoleNone.
func (r *Roster) RoleOf(id uuid.UUID) Role {
	if indexOf(r.debaters, id) >= 0 {
		return RoleDebater
	}
	if indexOf(r.judges, id) >= 0 {
		return RoleJudge
	}
	return RoleNone
}

// Counts returns the number of debaters and judges.
func (r *Roster) Counts() (debaters, judges int) {
	return len(r.debaters), len(r.judges)
}

func (r *Roster) Len() int { return len(r.debaters) + len(r.judges) }

// Debaters returns a copy of the debater list in join order.
func (r *Roster) Debaters() []models.Participant { return slices.Clone(r.debaters) }

// Judges returns a copy of the judge list in join order.
func (r *Roster) Judges() []models.Participant { return slices.Clone(r.judges) }

func (r *Roster) Clear() {
	r.debaters = nil
	r.judges = nil
}

func indexOf(ps []models.Participant, id uuid.UUID) int {
	return slices.IndexFunc(ps, func(p models.Participant) bool { return p.ID == id })
}

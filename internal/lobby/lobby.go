// internal/lobby/lobby.go
package lobby

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/apdebate/internal/matchmaking"
	"github.com/jason-s-yu/apdebate/internal/models"
)

// Lobby is a named registration queue that feeds one debate round.
// The roster is guarded by Mu; ID, Name, Host and CreatedAt never change
// after construction and may be read without the lock.
type Lobby struct {
	ID        uuid.UUID          `json:"id"`
	Name      string             `json:"name"`
	Host      models.Participant `json:"host"`
	CreatedAt time.Time          `json:"createdAt"`

	roster *matchmaking.Roster
	// format is the round format the roster could start with after the last
	// mutation, used to report readiness transitions.
	format matchmaking.RoundFormat
	// closed is set once the roster is drained into a round or the lobby is ended.
	closed bool

	Mu sync.Mutex
}

// JoinOutcome describes what a join request did to the roster.
type JoinOutcome int

const (
	Unchanged JoinOutcome = iota
	Joined
	SwitchedRole
)

func (o JoinOutcome) String() string {
	switch o {
	case Joined:
		return "joined"
	case SwitchedRole:
		return "switched_role"
	default:
		return "unchanged"
	}
}

// FormatChange reports the achievable round format before and after a roster
// mutation.
type FormatChange struct {
	Before matchmaking.RoundFormat
	After  matchmaking.RoundFormat
}

// Changed reports whether the mutation moved the lobby across a threshold.
func (c FormatChange) Changed() bool { return c.Before != c.After }

// Change is the outcome of a roster mutation, captured under the lobby lock.
type Change struct {
	FormatChange
	Snapshot RosterSnapshot
}

// JoinResult is returned by Join.
type JoinResult struct {
	Outcome  JoinOutcome
	Previous matchmaking.Role
	Change
}

// RosterSnapshot is a copy of a lobby's state for presentation.
type RosterSnapshot struct {
	ID        uuid.UUID               `json:"id"`
	Name      string                  `json:"name"`
	Host      models.Participant      `json:"host"`
	CreatedAt time.Time               `json:"createdAt"`
	Debaters  []models.Participant    `json:"debaters"`
	Judges    []models.Participant    `json:"judges"`
	Format    matchmaking.RoundFormat `json:"format,omitempty"`
	Ready     bool                    `json:"ready"`
	Closed    bool                    `json:"closed"`
}

// NewLobby creates an open lobby with an empty roster.
func NewLobby(name string, host models.Participant) *Lobby {
	return &Lobby{
		ID:        uuid.New(),
		Name:      name,
		Host:      host,
		CreatedAt: time.Now(),
		roster:    matchmaking.NewRoster(),
	}
}

// IsHost reports whether id owns the lobby.
func (l *Lobby) IsHost(id uuid.UUID) bool {
	return l.Host.ID == id
}

// Join registers p in the given role, moving it out of the other role if
// needed. Acquires lock.
func (l *Lobby) Join(p models.Participant, role matchmaking.Role) (JoinResult, error) {
	l.Mu.Lock()
	defer l.Mu.Unlock()
	if l.closed {
		return JoinResult{}, fmt.Errorf("lobby %q: %w", l.Name, matchmaking.ErrLobbyClosed)
	}

	var added bool
	var previous matchmaking.Role
	switch role {
	case matchmaking.RoleDebater:
		added, previous = l.roster.AddDebater(p)
	case matchmaking.RoleJudge:
		added, previous = l.roster.AddJudge(p)
	default:
		return JoinResult{}, fmt.Errorf("cannot join as %s: %w", role, matchmaking.ErrInvalidArgument)
	}

	res := JoinResult{Previous: previous, Change: l.changeUnsafe(l.refreshFormatUnsafe())}
	switch {
	case !added:
		res.Outcome = Unchanged
	case previous == matchmaking.RoleNone:
		res.Outcome = Joined
	default:
		res.Outcome = SwitchedRole
	}
	return res, nil
}

// Leave removes id from the roster. It reports whether id was registered.
// Acquires lock.
func (l *Lobby) Leave(id uuid.UUID) (bool, Change, error) {
	l.Mu.Lock()
	defer l.Mu.Unlock()
	if l.closed {
		return false, Change{}, fmt.Errorf("lobby %q: %w", l.Name, matchmaking.ErrLobbyClosed)
	}
	if !l.roster.Remove(id) {
		return false, l.changeUnsafe(FormatChange{Before: l.format, After: l.format}), nil
	}
	return true, l.changeUnsafe(l.refreshFormatUnsafe()), nil
}

// Clear empties the roster and returns how many registrations were dropped.
// Acquires lock.
func (l *Lobby) Clear() (int, Change, error) {
	l.Mu.Lock()
	defer l.Mu.Unlock()
	if l.closed {
		return 0, Change{}, fmt.Errorf("lobby %q: %w", l.Name, matchmaking.ErrLobbyClosed)
	}
	n := l.roster.Len()
	l.roster.Clear()
	return n, l.changeUnsafe(l.refreshFormatUnsafe()), nil
}

// Contains reports whether id is the host or is registered in the roster.
// Acquires lock.
func (l *Lobby) Contains(id uuid.UUID) bool {
	if l.IsHost(id) {
		return true
	}
	l.Mu.Lock()
	defer l.Mu.Unlock()
	return l.roster.RoleOf(id) != matchmaking.RoleNone
}

// Drain resolves the round format from the current counts and, if one is
// achievable, hands the registrations to the caller, clears the roster and
// closes the lobby in a single step. On error the lobby is left untouched.
// Acquires lock.
func (l *Lobby) Drain() (debaters, judges []models.Participant, format matchmaking.RoundFormat, err error) {
	l.Mu.Lock()
	defer l.Mu.Unlock()
	if l.closed {
		return nil, nil, matchmaking.FormatNone, fmt.Errorf("lobby %q: %w", l.Name, matchmaking.ErrLobbyClosed)
	}

	d, j := l.roster.Counts()
	if j < 1 || d < matchmaking.MinimumDebaters() {
		return nil, nil, matchmaking.FormatNone, fmt.Errorf("lobby %q has %d debaters and %d judges: %w",
			l.Name, d, j, matchmaking.ErrInsufficientPlayers)
	}
	format, ok := matchmaking.Resolve(d, j)
	if !ok {
		return nil, nil, matchmaking.FormatNone, fmt.Errorf("lobby %q has %d debaters: %w",
			l.Name, d, matchmaking.ErrNoMatchingFormat)
	}

	debaters, judges = l.roster.Debaters(), l.roster.Judges()
	l.roster.Clear()
	l.format = matchmaking.FormatNone
	l.closed = true
	return debaters, judges, format, nil
}

// Close marks the lobby ended. It reports false if it was already closed.
// Acquires lock.
func (l *Lobby) Close() bool {
	l.Mu.Lock()
	defer l.Mu.Unlock()
	if l.closed {
		return false
	}
	l.closed = true
	l.roster.Clear()
	l.format = matchmaking.FormatNone
	return true
}

// Snapshot copies the lobby state. Acquires lock.
func (l *Lobby) Snapshot() RosterSnapshot {
	l.Mu.Lock()
	defer l.Mu.Unlock()
	return l.snapshotUnsafe()
}

// snapshotUnsafe assumes lock is held.
func (l *Lobby) snapshotUnsafe() RosterSnapshot {
	return RosterSnapshot{
		ID:        l.ID,
		Name:      l.Name,
		Host:      l.Host,
		CreatedAt: l.CreatedAt,
		Debaters:  l.roster.Debaters(),
		Judges:    l.roster.Judges(),
		Format:    l.format,
		Ready:     l.format != matchmaking.FormatNone,
		Closed:    l.closed,
	}
}

func (l *Lobby) changeUnsafe(fc FormatChange) Change {
	return Change{FormatChange: fc, Snapshot: l.snapshotUnsafe()}
}

// refreshFormatUnsafe re-resolves the achievable format. Assumes lock is held.
func (l *Lobby) refreshFormatUnsafe() FormatChange {
	before := l.format
	l.format, _ = matchmaking.Resolve(l.roster.Counts())
	return FormatChange{Before: before, After: l.format}
}

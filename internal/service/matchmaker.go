// internal/service/matchmaker.go
package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/apdebate/internal/lobby"
	"github.com/jason-s-yu/apdebate/internal/matchmaking"
	"github.com/jason-s-yu/apdebate/internal/models"
	"github.com/sirupsen/logrus"
)

const archiveTimeout = 5 * time.Second

// Options configures a Matchmaker. Zero values get working defaults.
type Options struct {
	Allocator *matchmaking.Allocator
	Notifier  Notifier
	Archiver  Archiver // nil disables archiving
	Logger    *logrus.Logger
	// AdjustmentTimeout abandons an open round that sees no adjustment for
	// this long. Zero disables the timeout.
	AdjustmentTimeout time.Duration
}

// Matchmaker is the entry point for every lobby and round operation. It owns
// the lobby registry and the rounds being adjusted, and publishes events
// once each mutation has committed.
type Matchmaker struct {
	Lobbies *lobby.LobbyStore
	Rounds  *RoundStore

	allocator *matchmaking.Allocator
	notifier  Notifier
	archiver  Archiver
	log       *logrus.Logger
	timeout   time.Duration
}

func NewMatchmaker(opts Options) *Matchmaker {
	m := &Matchmaker{
		Lobbies:   lobby.NewLobbyStore(),
		Rounds:    NewRoundStore(),
		allocator: opts.Allocator,
		notifier:  opts.Notifier,
		archiver:  opts.Archiver,
		log:       opts.Logger,
		timeout:   opts.AdjustmentTimeout,
	}
	if m.allocator == nil {
		m.allocator = matchmaking.NewAllocator(nil)
	}
	if m.notifier == nil {
		m.notifier = nopNotifier{}
	}
	if m.log == nil {
		m.log = logrus.New()
		m.log.SetOutput(io.Discard)
	}
	return m
}

// SetNotifier replaces the event sink. It must be called before the
// matchmaker serves requests.
func (m *Matchmaker) SetNotifier(n Notifier) {
	if n == nil {
		n = nopNotifier{}
	}
	m.notifier = n
}

// Close stops all adjustment timers.
func (m *Matchmaker) Close() {
	m.Rounds.StopAll()
}

func authorize(host, requester uuid.UUID, isOperator bool) error {
	if isOperator || host == requester {
		return nil
	}
	return matchmaking.ErrNotHost
}

func (m *Matchmaker) lobby(name string) (*lobby.Lobby, error) {
	l, ok := m.Lobbies.Get(name)
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, matchmaking.ErrLobbyNotFound)
	}
	return l, nil
}

func (m *Matchmaker) round(id int64) (*matchmaking.Round, error) {
	r, ok := m.Rounds.Get(id)
	if !ok {
		return nil, fmt.Errorf("round %d: %w", id, matchmaking.ErrRoundNotFound)
	}
	return r, nil
}

// CreateLobby registers a new lobby owned by host.
func (m *Matchmaker) CreateLobby(name string, host models.Participant) (lobby.RosterSnapshot, error) {
	l, err := m.Lobbies.Create(name, host)
	if err != nil {
		return lobby.RosterSnapshot{}, err
	}
	snap := l.Snapshot()
	m.log.WithFields(logrus.Fields{"lobby": l.Name, "participant": host.ID}).Info("lobby created")
	m.notifier.Notify(withActor(lobbyEvent(EventLobbyCreated, snap), host.ID))
	return snap, nil
}

// EndLobby disbands a lobby. Only its host or an operator may do so.
func (m *Matchmaker) EndLobby(name string, requester uuid.UUID, isOperator bool) (bool, error) {
	l, err := m.lobby(name)
	if err != nil {
		return false, err
	}
	if err := authorize(l.Host.ID, requester, isOperator); err != nil {
		return false, err
	}
	if !l.Close() {
		return false, nil
	}
	m.Lobbies.Discard(l)
	m.log.WithFields(logrus.Fields{"lobby": l.Name, "participant": requester}).Info("lobby ended")
	m.notifier.Notify(withActor(lobbyEvent(EventLobbyClosed, l.Snapshot()), requester))
	return true, nil
}

// Join registers p in the lobby's roster as role, switching roles if p was
// already registered in the other one.
func (m *Matchmaker) Join(name string, p models.Participant, role matchmaking.Role) (lobby.JoinResult, error) {
	l, err := m.lobby(name)
	if err != nil {
		return lobby.JoinResult{}, err
	}
	res, err := l.Join(p, role)
	if err != nil {
		return lobby.JoinResult{}, err
	}
	m.log.WithFields(logrus.Fields{
		"lobby":       l.Name,
		"participant": p.ID,
		"role":        role,
		"outcome":     res.Outcome,
	}).Debug("roster join")
	if res.Outcome != lobby.Unchanged {
		m.publishChange(l, res.Change, p.ID)
	}
	return res, nil
}

// Leave removes id from the lobby's roster. It reports whether id was
// registered.
func (m *Matchmaker) Leave(name string, id uuid.UUID) (bool, lobby.RosterSnapshot, error) {
	l, err := m.lobby(name)
	if err != nil {
		return false, lobby.RosterSnapshot{}, err
	}
	removed, change, err := l.Leave(id)
	if err != nil {
		return false, lobby.RosterSnapshot{}, err
	}
	if removed {
		m.log.WithFields(logrus.Fields{"lobby": l.Name, "participant": id}).Debug("roster leave")
		m.publishChange(l, change, id)
	}
	return removed, change.Snapshot, nil
}

// ClearLobby empties a lobby's roster. Host or operator only.
func (m *Matchmaker) ClearLobby(name string, requester uuid.UUID, isOperator bool) (int, lobby.RosterSnapshot, error) {
	l, err := m.lobby(name)
	if err != nil {
		return 0, lobby.RosterSnapshot{}, err
	}
	if err := authorize(l.Host.ID, requester, isOperator); err != nil {
		return 0, lobby.RosterSnapshot{}, err
	}
	n, change, err := l.Clear()
	if err != nil {
		return 0, lobby.RosterSnapshot{}, err
	}
	m.log.WithFields(logrus.Fields{"lobby": l.Name, "participant": requester, "dropped": n}).Info("roster cleared")
	m.publishChange(l, change, requester)
	return n, change.Snapshot, nil
}

// publishChange emits the roster update and, when the lobby crossed a
// threshold, tells the host which format is now achievable.
func (m *Matchmaker) publishChange(l *lobby.Lobby, c lobby.Change, actor uuid.UUID) {
	m.notifier.Notify(withActor(lobbyEvent(EventLobbyUpdate, c.Snapshot), actor))
	if !c.Changed() {
		return
	}
	typ := EventLobbyReady
	if c.After == matchmaking.FormatNone {
		typ = EventLobbyNotReady
	}
	ev := withActor(lobbyEvent(typ, c.Snapshot), actor)
	ev.Format = c.After
	ev.Recipients = []uuid.UUID{l.Host.ID}
	m.notifier.Notify(ev)
}

// GetLobby returns the current roster of the named lobby.
func (m *Matchmaker) GetLobby(name string) (lobby.RosterSnapshot, error) {
	l, err := m.lobby(name)
	if err != nil {
		return lobby.RosterSnapshot{}, err
	}
	return l.Snapshot(), nil
}

// ListLobbies returns the lobbies id hosts or is registered in.
func (m *Matchmaker) ListLobbies(id uuid.UUID) []lobby.RosterSnapshot {
	ls := m.Lobbies.LobbiesFor(id)
	out := make([]lobby.RosterSnapshot, len(ls))
	for i, l := range ls {
		out[i] = l.Snapshot()
	}
	return out
}

// LobbyNames lists the names of all live lobbies.
func (m *Matchmaker) LobbyNames() []string {
	return m.Lobbies.Names()
}

// StartRound consumes the lobby's roster into a new round. The lobby is
// removed from the registry once the round exists.
func (m *Matchmaker) StartRound(name string, requester uuid.UUID, isOperator bool) (matchmaking.RoundSnapshot, error) {
	l, err := m.lobby(name)
	if err != nil {
		return matchmaking.RoundSnapshot{}, err
	}
	if err := authorize(l.Host.ID, requester, isOperator); err != nil {
		return matchmaking.RoundSnapshot{}, err
	}
	debaters, judges, format, err := l.Drain()
	if err != nil {
		return matchmaking.RoundSnapshot{}, err
	}

	r := m.allocator.Allocate(debaters, judges, format)
	r.Lobby = l.Name
	r.HostID = l.Host.ID
	m.Rounds.Add(r)
	m.Lobbies.Discard(l)
	m.Rounds.Touch(r.ID, m.timeout, m.abandon)

	snap := r.Snapshot()
	m.log.WithFields(logrus.Fields{
		"lobby":    l.Name,
		"round":    r.ID,
		"format":   format,
		"debaters": len(debaters),
		"judges":   len(judges),
	}).Info("round started")
	m.notifier.Notify(withActor(lobbyEvent(EventLobbyClosed, l.Snapshot()), requester))
	m.notifier.Notify(withActor(roundEvent(EventRoundStarted, snap), requester))
	return snap, nil
}

// GetRound returns the current state of an open round.
func (m *Matchmaker) GetRound(id int64) (matchmaking.RoundSnapshot, error) {
	r, err := m.round(id)
	if err != nil {
		return matchmaking.RoundSnapshot{}, err
	}
	return r.Snapshot(), nil
}

// adjust runs op against an open round on behalf of the host or an operator,
// then restarts the inactivity timer and publishes the new state.
func (m *Matchmaker) adjust(id int64, requester uuid.UUID, isOperator bool, action string, op func(*matchmaking.Round) error) (matchmaking.RoundSnapshot, error) {
	var snap matchmaking.RoundSnapshot
	err := m.Rounds.Do(id, func(r *matchmaking.Round) error {
		if err := authorize(r.HostID, requester, isOperator); err != nil {
			return err
		}
		if err := op(r); err != nil {
			return err
		}
		snap = r.Snapshot()
		return nil
	})
	if err != nil {
		return matchmaking.RoundSnapshot{}, err
	}
	m.Rounds.Touch(id, m.timeout, m.abandon)
	m.log.WithFields(logrus.Fields{"lobby": snap.Lobby, "round": id, "participant": requester}).Debug(action)
	m.notifier.Notify(withActor(roundEvent(EventRoundUpdate, snap), requester))
	return snap, nil
}

// Swap exchanges the seats of two participants.
func (m *Matchmaker) Swap(id int64, requester uuid.UUID, isOperator bool, a, b uuid.UUID) (matchmaking.RoundSnapshot, error) {
	return m.adjust(id, requester, isOperator, "swap", func(r *matchmaking.Round) error {
		return r.Swap(a, b)
	})
}

// MoveToJudge moves a debater onto the judge panel.
func (m *Matchmaker) MoveToJudge(id int64, requester uuid.UUID, isOperator bool, p uuid.UUID) (matchmaking.RoundSnapshot, error) {
	return m.adjust(id, requester, isOperator, "move to judge", func(r *matchmaking.Round) error {
		return r.MoveToJudge(p)
	})
}

// MoveToTeam moves a judge onto the given team.
func (m *Matchmaker) MoveToTeam(id int64, requester uuid.UUID, isOperator bool, p uuid.UUID, side matchmaking.Side) (matchmaking.RoundSnapshot, error) {
	return m.adjust(id, requester, isOperator, "move to team", func(r *matchmaking.Round) error {
		return r.MoveToTeam(p, side)
	})
}

// ResizeTeam switches a team between iron and full capacity.
func (m *Matchmaker) ResizeTeam(id int64, requester uuid.UUID, isOperator bool, side matchmaking.Side, typ matchmaking.TeamType) (matchmaking.RoundSnapshot, error) {
	return m.adjust(id, requester, isOperator, "resize team", func(r *matchmaking.Round) error {
		_, err := r.ResizeTeam(side, typ)
		return err
	})
}

// Seal attaches the topic and freezes the round. The sealed round stays
// readable and, if an archiver is configured, its record is published.
// Archive failures are logged and do not undo the seal.
func (m *Matchmaker) Seal(ctx context.Context, id int64, requester uuid.UUID, isOperator bool, topic string) (matchmaking.RoundSnapshot, error) {
	snap, err := m.finish(id, requester, isOperator, func(r *matchmaking.Round) error {
		return r.Seal(topic)
	})
	if err != nil {
		return matchmaking.RoundSnapshot{}, err
	}
	logger := m.log.WithFields(logrus.Fields{"lobby": snap.Lobby, "round": id, "participant": requester})
	logger.Info("round sealed")

	if m.archiver != nil {
		actx, cancel := context.WithTimeout(ctx, archiveTimeout)
		if err := m.archiver.Archive(actx, snap.Record(time.Now())); err != nil {
			logger.WithError(err).Warn("failed to archive sealed round")
		}
		cancel()
	}
	m.notifier.Notify(withActor(roundEvent(EventRoundSealed, snap), requester))
	return snap, nil
}

// Cancel discards an open round. The cancelled round stays readable.
func (m *Matchmaker) Cancel(id int64, requester uuid.UUID, isOperator bool) (matchmaking.RoundSnapshot, error) {
	snap, err := m.finish(id, requester, isOperator, (*matchmaking.Round).Cancel)
	if err != nil {
		return matchmaking.RoundSnapshot{}, err
	}
	m.log.WithFields(logrus.Fields{"lobby": snap.Lobby, "round": id, "participant": requester}).Info("round cancelled")
	m.notifier.Notify(withActor(roundEvent(EventRoundCancelled, snap), requester))
	return snap, nil
}

// finish applies a terminal transition and retires the round's session.
func (m *Matchmaker) finish(id int64, requester uuid.UUID, isOperator bool, op func(*matchmaking.Round) error) (matchmaking.RoundSnapshot, error) {
	var snap matchmaking.RoundSnapshot
	err := m.Rounds.Do(id, func(r *matchmaking.Round) error {
		if err := authorize(r.HostID, requester, isOperator); err != nil {
			return err
		}
		if err := op(r); err != nil {
			return err
		}
		snap = r.Snapshot()
		return nil
	})
	if err != nil {
		return matchmaking.RoundSnapshot{}, err
	}
	m.Rounds.Close(id)
	return snap, nil
}

// abandon reports a round whose adjustment session went idle. The store has
// already dropped it; the round itself stays open.
func (m *Matchmaker) abandon(r *matchmaking.Round) {
	m.log.WithFields(logrus.Fields{"lobby": r.Lobby, "round": r.ID}).Warn("adjustment session timed out, round abandoned")
	m.notifier.Notify(roundEvent(EventRoundAbandoned, r.Snapshot()))
}

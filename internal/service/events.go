// internal/service/events.go
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/apdebate/internal/lobby"
	"github.com/jason-s-yu/apdebate/internal/matchmaking"
	"github.com/jason-s-yu/apdebate/internal/models"
)

// EventType names a notification published after a committed mutation.
type EventType string

const (
	EventLobbyCreated   EventType = "lobby_created"
	EventLobbyUpdate    EventType = "lobby_update"
	EventLobbyReady     EventType = "lobby_ready"
	EventLobbyNotReady  EventType = "lobby_not_ready"
	EventLobbyClosed    EventType = "lobby_closed"
	EventRoundStarted   EventType = "round_started"
	EventRoundUpdate    EventType = "round_update"
	EventRoundSealed    EventType = "round_sealed"
	EventRoundCancelled EventType = "round_cancelled"
	EventRoundAbandoned EventType = "round_abandoned"
)

// Event is what the presentation layer receives. Exactly one of Lobby or
// Round is set; lobby_ready/lobby_not_ready also carry the resolved format.
// Actor is the participant whose request caused the event and is unset for
// timer-driven events such as round_abandoned.
type Event struct {
	Type      EventType                  `json:"type"`
	Lobby     *lobby.RosterSnapshot      `json:"lobby,omitempty"`
	Round     *matchmaking.RoundSnapshot `json:"round,omitempty"`
	Format    matchmaking.RoundFormat    `json:"format,omitempty"`
	Actor     *uuid.UUID                 `json:"actor,omitempty"`
	Timestamp int64                      `json:"ts"`

	// Recipients limits delivery to these participants. Empty means every
	// connected subscriber.
	Recipients []uuid.UUID `json:"-"`
}

// Notifier delivers events to connected clients. Notify is called after the
// originating lock has been released and must not block for long.
type Notifier interface {
	Notify(ev Event)
}

// Archiver stores sealed rounds for later analysis.
type Archiver interface {
	Archive(ctx context.Context, rec models.RoundRecord) error
}

type nopNotifier struct{}

func (nopNotifier) Notify(Event) {}

func lobbyEvent(typ EventType, snap lobby.RosterSnapshot) Event {
	return Event{Type: typ, Lobby: &snap, Timestamp: time.Now().UnixMilli()}
}

func roundEvent(typ EventType, snap matchmaking.RoundSnapshot) Event {
	return Event{Type: typ, Round: &snap, Timestamp: time.Now().UnixMilli()}
}

func withActor(ev Event, actor uuid.UUID) Event {
	ev.Actor = &actor
	return ev
}

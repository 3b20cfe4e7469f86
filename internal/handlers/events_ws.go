// internal/handlers/events_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/jason-s-yu/apdebate/internal/middleware"
	"github.com/jason-s-yu/apdebate/internal/service"
	"github.com/sirupsen/logrus"
)

const eventsSubprotocol = "events"

// eventConn is a single subscriber to the events feed.
type eventConn struct {
	participant uuid.UUID
	out         chan service.Event
}

// Hub fans matchmaking events out to websocket subscribers. It implements
// service.Notifier.
type Hub struct {
	mu    sync.Mutex
	conns map[*eventConn]struct{}
	log   *logrus.Logger
}

func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		conns: make(map[*eventConn]struct{}),
		log:   logger,
	}
}

// Notify queues ev for every subscriber it is addressed to. A subscriber
// whose buffer is full misses the event rather than stalling the caller.
func (h *Hub) Notify(ev service.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.conns {
		if len(ev.Recipients) > 0 && !slices.Contains(ev.Recipients, c.participant) {
			continue
		}
		select {
		case c.out <- ev:
		default:
			h.log.WithFields(logrus.Fields{"participant": c.participant, "event": ev.Type}).
				Warn("events buffer full, dropping event")
		}
	}
}

func (h *Hub) register(participant uuid.UUID) *eventConn {
	c := &eventConn{participant: participant, out: make(chan service.Event, 32)}
	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()
	return c
}

func (h *Hub) unregister(c *eventConn) {
	h.mu.Lock()
	delete(h.conns, c)
	h.mu.Unlock()
}

// Len reports the number of connected subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// EventsWSHandler upgrades to a websocket speaking the "events" subprotocol
// and streams JSON events until the client goes away. The feed is
// server-to-client only; commands go through the HTTP routes.
func EventsWSHandler(logger *logrus.Logger, hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{eventsSubprotocol},
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != eventsSubprotocol {
			c.Close(BadSubprotocolError, "client must speak the events subprotocol")
			return
		}
		sess, err := authenticate(r)
		if err != nil {
			c.Close(InvalidAuthTokenError, "invalid session token")
			return
		}

		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)
		conn := hub.register(sess.Participant.ID)
		defer hub.unregister(conn)

		// CloseRead discards client frames and cancels ctx when the peer closes.
		ctx := c.CloseRead(r.Context())
		err = writePump(ctx, c, conn)
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, err)
		if err == nil {
			c.Close(websocket.StatusNormalClosure, "")
		}
	}
}

// writePump forwards queued events to the socket with periodic pings.
// It returns nil when ctx ends and the write error otherwise.
func writePump(ctx context.Context, c *websocket.Conn, conn *eventConn) error {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				return err
			}
		case ev := <-conn.out:
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				return err
			}
		}
	}
}

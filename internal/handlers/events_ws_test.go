// internal/handlers/events_ws_test.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/jason-s-yu/apdebate/internal/lobby"
	"github.com/jason-s-yu/apdebate/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialEvents(t *testing.T, ctx context.Context, srv *httptest.Server, token string, subprotocols ...string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/events/ws"
	header := http.Header{}
	header.Set("Cookie", "auth_token="+token)
	c, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{
		Subprotocols: subprotocols,
		HTTPHeader:   header,
	})
	require.NoError(t, err)
	return c
}

func readEvent(t *testing.T, ctx context.Context, c *websocket.Conn) service.Event {
	t.Helper()
	_, data, err := c.Read(ctx)
	require.NoError(t, err)
	var ev service.Event
	require.NoError(t, json.Unmarshal(data, &ev))
	return ev
}

func TestEventsFeed(t *testing.T) {
	ts := newTestServer(t, "")
	srv := httptest.NewServer(ts.handler)
	defer srv.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	host := ts.session(t, "H")
	c := dialEvents(t, ctx, srv, host.Token, "events")
	defer c.Close(websocket.StatusNormalClosure, "")
	require.Eventually(t, func() bool { return ts.hub.Len() == 1 }, time.Second, 5*time.Millisecond)

	_, err := ts.mm.CreateLobby("Finals", host.Participant)
	require.NoError(t, err)
	ev := readEvent(t, ctx, c)
	assert.Equal(t, service.EventLobbyCreated, ev.Type)
	require.NotNil(t, ev.Lobby)
	assert.Equal(t, "Finals", ev.Lobby.Name)
}

func TestEventsRecipientsFilter(t *testing.T) {
	ts := newTestServer(t, "")
	srv := httptest.NewServer(ts.handler)
	defer srv.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	host, other := ts.session(t, "H"), ts.session(t, "O")
	hc := dialEvents(t, ctx, srv, host.Token, "events")
	defer hc.Close(websocket.StatusNormalClosure, "")
	oc := dialEvents(t, ctx, srv, other.Token, "events")
	defer oc.Close(websocket.StatusNormalClosure, "")
	require.Eventually(t, func() bool { return ts.hub.Len() == 2 }, time.Second, 5*time.Millisecond)

	snap := lobby.RosterSnapshot{Name: "Finals", Host: host.Participant}
	ts.hub.Notify(service.Event{Type: service.EventLobbyReady, Lobby: &snap, Recipients: []uuid.UUID{host.Participant.ID}})
	ts.hub.Notify(service.Event{Type: service.EventLobbyUpdate, Lobby: &snap})

	assert.Equal(t, service.EventLobbyReady, readEvent(t, ctx, hc).Type)
	assert.Equal(t, service.EventLobbyUpdate, readEvent(t, ctx, hc).Type)
	assert.Equal(t, service.EventLobbyUpdate, readEvent(t, ctx, oc).Type, "other participants skip host-only events")
}

func TestEventsRejectsBadHandshake(t *testing.T) {
	ts := newTestServer(t, "")
	srv := httptest.NewServer(ts.handler)
	defer srv.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := dialEvents(t, ctx, srv, "bogus", "events")
	_, _, err := c.Read(ctx)
	assert.Equal(t, websocket.StatusCode(InvalidAuthTokenError), websocket.CloseStatus(err))

	s := ts.session(t, "H")
	c = dialEvents(t, ctx, srv, s.Token)
	_, _, err = c.Read(ctx)
	assert.Equal(t, websocket.StatusCode(BadSubprotocolError), websocket.CloseStatus(err))
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(quietLogger())
	conn := hub.register(uuid.New())
	for i := 0; i < cap(conn.out)+5; i++ {
		hub.Notify(service.Event{Type: service.EventRoundUpdate})
	}
	assert.Len(t, conn.out, cap(conn.out))
	hub.unregister(conn)
	assert.Zero(t, hub.Len())
}

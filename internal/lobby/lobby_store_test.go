// internal/lobby/lobby_store_test.go
package lobby

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jason-s-yu/apdebate/internal/matchmaking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRejectsCaseInsensitiveDuplicate(t *testing.T) {
	s := NewLobbyStore()
	host := participant("host")

	l, err := s.Create("  Finals ", host)
	require.NoError(t, err)
	assert.Equal(t, "Finals", l.Name)

	_, err = s.Create("FINALS", participant("other"))
	assert.ErrorIs(t, err, matchmaking.ErrLobbyExists)
	assert.ErrorIs(t, err, matchmaking.ErrAlreadyExists)

	got, ok := s.Get("finals")
	require.True(t, ok)
	assert.Same(t, l, got)

	_, err = s.Create("   ", host)
	assert.ErrorIs(t, err, matchmaking.ErrInvalidArgument)
}

func TestKeyFoldsCase(t *testing.T) {
	assert.Equal(t, Key("Σίσυφος"), Key("ΣΊΣΥΦΟΣ"))
	assert.Equal(t, Key("Finals"), Key(" finals "))
}

func TestRemoveAndDiscard(t *testing.T) {
	s := NewLobbyStore()
	old, err := s.Create("Finals", participant("host"))
	require.NoError(t, err)

	assert.True(t, s.Remove("FINALS"))
	assert.False(t, s.Remove("Finals"))

	fresh, err := s.Create("finals", participant("host"))
	require.NoError(t, err)
	assert.False(t, s.Discard(old), "stale lobby must not evict the new one")
	_, ok := s.Get("Finals")
	assert.True(t, ok)

	assert.True(t, s.Discard(fresh))
	_, ok = s.Get("Finals")
	assert.False(t, ok)
}

func TestLobbiesFor(t *testing.T) {
	s := NewLobbyStore()
	host := participant("host")
	debater := participant("d")
	judge := participant("j")

	a, err := s.Create("A", host)
	require.NoError(t, err)
	b, err := s.Create("B", participant("other host"))
	require.NoError(t, err)
	_, err = s.Create("C", participant("third host"))
	require.NoError(t, err)

	_, err = b.Join(debater, matchmaking.RoleDebater)
	require.NoError(t, err)
	_, err = a.Join(judge, matchmaking.RoleJudge)
	require.NoError(t, err)

	assert.Equal(t, []*Lobby{a}, s.LobbiesFor(host.ID))
	assert.Equal(t, []*Lobby{b}, s.LobbiesFor(debater.ID))
	assert.Equal(t, []*Lobby{a}, s.LobbiesFor(judge.ID))
	assert.Empty(t, s.LobbiesFor(uuid.New()))
	assert.Len(t, s.All(), 3)
}

func TestNamesSorted(t *testing.T) {
	s := NewLobbyStore()
	for _, n := range []string{"semis", "Finals", "octos"} {
		_, err := s.Create(n, participant("host"))
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"Finals", "octos", "semis"}, s.Names())
}

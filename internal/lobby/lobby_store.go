// internal/lobby/lobby_store.go
package lobby

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jason-s-yu/apdebate/internal/matchmaking"
	"github.com/jason-s-yu/apdebate/internal/models"
	"golang.org/x/text/cases"
)

// Key folds a lobby name into its registry key so "Finals" and "FINALS"
// refer to the same lobby.
func Key(name string) string {
	// Casers are stateful; build one per call.
	return cases.Fold().String(strings.TrimSpace(name))
}

// LobbyStore manages live lobbies in memory, keyed by folded name.
type LobbyStore struct {
	mu      sync.Mutex        // Protects access to the lobbies map.
	lobbies map[string]*Lobby // folded name -> lobby
}

// NewLobbyStore initializes and returns an empty LobbyStore.
func NewLobbyStore() *LobbyStore {
	return &LobbyStore{
		lobbies: make(map[string]*Lobby),
	}
}

// Create registers a new lobby owned by host. It fails with ErrLobbyExists
// if a lobby with the same case-insensitive name is live.
func (s *LobbyStore) Create(name string, host models.Participant) (*Lobby, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, matchmaking.ErrBlankLobbyName
	}
	key := Key(name)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.lobbies[key]; exists {
		return nil, fmt.Errorf("%q: %w", name, matchmaking.ErrLobbyExists)
	}
	l := NewLobby(name, host)
	s.lobbies[key] = l
	return l, nil
}

// Get retrieves a lobby by name, ignoring case.
func (s *LobbyStore) Get(name string) (*Lobby, bool) {
	key := Key(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lobbies[key]
	return l, ok
}

// Remove deletes the lobby registered under name. It reports whether one existed.
func (s *LobbyStore) Remove(name string) bool {
	key := Key(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lobbies[key]; !ok {
		return false
	}
	delete(s.lobbies, key)
	return true
}

// Discard removes l only if it is still the lobby registered under its name,
// so a stale reference never evicts a newer lobby that reused the name.
func (s *LobbyStore) Discard(l *Lobby) bool {
	key := Key(l.Name)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lobbies[key] != l {
		return false
	}
	delete(s.lobbies, key)
	return true
}

// All returns every live lobby, oldest first.
func (s *LobbyStore) All() []*Lobby {
	s.mu.Lock()
	out := make([]*Lobby, 0, len(s.lobbies))
	for _, l := range s.lobbies {
		out = append(out, l)
	}
	s.mu.Unlock()

	slices.SortFunc(out, func(a, b *Lobby) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(Key(a.Name), Key(b.Name))
	})
	return out
}

// LobbiesFor returns the lobbies id hosts or is registered in, oldest first.
// Each lobby is locked individually after the store lock is released.
func (s *LobbyStore) LobbiesFor(id uuid.UUID) []*Lobby {
	var out []*Lobby
	for _, l := range s.All() {
		if l.Contains(id) {
			out = append(out, l)
		}
	}
	return out
}

// Names returns the display names of all live lobbies in sorted order.
func (s *LobbyStore) Names() []string {
	s.mu.Lock()
	names := make([]string, 0, len(s.lobbies))
	for _, l := range s.lobbies {
		names = append(names, l.Name)
	}
	s.mu.Unlock()
	slices.SortFunc(names, func(a, b string) int { return strings.Compare(Key(a), Key(b)) })
	return names
}

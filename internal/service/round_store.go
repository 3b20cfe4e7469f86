// internal/service/round_store.go
package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/jason-s-yu/apdebate/internal/matchmaking"
)

// closedRetention bounds how many sealed or cancelled rounds stay readable.
const closedRetention = 256

// roundSession is a round plus its inactivity timer. mu serializes facade
// operations on the round against the idle timer; it is always taken before
// the store lock, never while holding it.
type roundSession struct {
	mu     sync.Mutex
	round  *matchmaking.Round
	timer  *time.Timer
	closed bool
	// gen increments on every touch so a timer that fired just before a reset
	// can tell it is stale.
	gen uint64
}

// RoundStore holds rounds that are being adjusted plus the most recently
// sealed or cancelled ones. Abandoned rounds are removed.
type RoundStore struct {
	mu          sync.Mutex
	sessions    map[int64]*roundSession
	closedOrder []int64
}

func NewRoundStore() *RoundStore {
	return &RoundStore{
		sessions: make(map[int64]*roundSession),
	}
}

func (s *RoundStore) Add(r *matchmaking.Round) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[r.ID] = &roundSession{round: r}
}

func (s *RoundStore) session(id int64) (*roundSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// Get returns an open or recently closed round.
func (s *RoundStore) Get(id int64) (*matchmaking.Round, bool) {
	sess, ok := s.session(id)
	if !ok {
		return nil, false
	}
	return sess.round, true
}

// Do runs fn against round id while holding the round's session, so the
// idle timer cannot abandon the round halfway through.
func (s *RoundStore) Do(id int64, fn func(*matchmaking.Round) error) error {
	sess, ok := s.session(id)
	if !ok {
		return fmt.Errorf("round %d: %w", id, matchmaking.ErrRoundNotFound)
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if cur, ok := s.session(id); !ok || cur != sess {
		return fmt.Errorf("round %d: %w", id, matchmaking.ErrRoundNotFound)
	}
	return fn(sess.round)
}

// Close stops the round's timer and keeps it readable as history. The
// oldest closed rounds are dropped beyond closedRetention.
func (s *RoundStore) Close(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok || sess.closed {
		return
	}
	if sess.timer != nil {
		sess.timer.Stop()
	}
	sess.closed = true
	s.closedOrder = append(s.closedOrder, id)
	for len(s.closedOrder) > closedRetention {
		delete(s.sessions, s.closedOrder[0])
		s.closedOrder = s.closedOrder[1:]
	}
}

// Len counts the rounds still open for adjustment.
func (s *RoundStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, sess := range s.sessions {
		if !sess.closed {
			n++
		}
	}
	return n
}

// Touch restarts the inactivity timer for round id. When d elapses with no
// further touch and the round is still open, the round is removed and
// onIdle runs on the timer's goroutine. A non-positive d disables the timer.
func (s *RoundStore) Touch(id int64, d time.Duration, onIdle func(*matchmaking.Round)) {
	if d <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok || sess.closed {
		return
	}
	if sess.timer != nil {
		sess.timer.Stop()
	}
	sess.gen++
	gen := sess.gen
	sess.timer = time.AfterFunc(d, func() {
		if s.expire(id, sess, gen) {
			onIdle(sess.round)
		}
	})
}

// expire removes an idle round if the timer that fired is still current and
// the round was neither sealed nor cancelled meanwhile.
func (s *RoundStore) expire(id int64, sess *roundSession, gen uint64) bool {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.sessions[id]
	if !ok || cur != sess || sess.gen != gen || sess.closed {
		return false
	}
	if sess.round.State() != matchmaking.RoundOpen {
		return false
	}
	delete(s.sessions, id)
	return true
}

// StopAll stops every pending timer. Rounds stay in the store.
func (s *RoundStore) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		if sess.timer != nil {
			sess.timer.Stop()
		}
	}
}

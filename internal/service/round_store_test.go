// internal/service/round_store_test.go
package service

import (
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/apdebate/internal/matchmaking"
	"github.com/jason-s-yu/apdebate/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func soloRound(t *testing.T) *matchmaking.Round {
	t.Helper()
	alloc := matchmaking.NewAllocator(rand.New(rand.NewSource(7)))
	debaters := []models.Participant{{ID: uuid.New(), Name: "A"}, {ID: uuid.New(), Name: "B"}}
	judges := []models.Participant{{ID: uuid.New(), Name: "J"}}
	return alloc.Allocate(debaters, judges, matchmaking.FormatSolo)
}

func TestRoundStoreAddGet(t *testing.T) {
	s := NewRoundStore()
	r := soloRound(t)
	s.Add(r)

	got, ok := s.Get(r.ID)
	require.True(t, ok)
	assert.Same(t, r, got)
	assert.Equal(t, 1, s.Len())

	_, ok = s.Get(r.ID + 1)
	assert.False(t, ok)
}

func TestRoundStoreTouchFiresOnce(t *testing.T) {
	s := NewRoundStore()
	r := soloRound(t)
	s.Add(r)

	var fired atomic.Int32
	onIdle := func(*matchmaking.Round) { fired.Add(1) }
	s.Touch(r.ID, 40*time.Millisecond, onIdle)
	time.Sleep(20 * time.Millisecond)
	s.Touch(r.ID, 40*time.Millisecond, onIdle)

	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, fired.Load(), "reset timer must not fire early")
	assert.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}

func TestRoundStoreTouchIgnoresDisabledAndMissing(t *testing.T) {
	s := NewRoundStore()
	r := soloRound(t)
	s.Add(r)

	var fired atomic.Int32
	onIdle := func(*matchmaking.Round) { fired.Add(1) }
	s.Touch(r.ID, 0, onIdle)
	s.Touch(r.ID+1, time.Millisecond, onIdle)

	s.Touch(r.ID, 10*time.Millisecond, onIdle)
	s.StopAll()
	time.Sleep(40 * time.Millisecond)
	assert.Zero(t, fired.Load())
	assert.Equal(t, 1, s.Len())
}

func TestRoundStoreCloseKeepsHistory(t *testing.T) {
	s := NewRoundStore()
	r := soloRound(t)
	s.Add(r)

	var fired atomic.Int32
	s.Touch(r.ID, 10*time.Millisecond, func(*matchmaking.Round) { fired.Add(1) })
	require.NoError(t, s.Do(r.ID, func(r *matchmaking.Round) error { return r.Seal("Motion") }))
	s.Close(r.ID)

	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, fired.Load(), "closing stops the idle timer")
	assert.Zero(t, s.Len())

	got, ok := s.Get(r.ID)
	require.True(t, ok)
	assert.Equal(t, matchmaking.RoundSealed, got.State())

	err := s.Do(r.ID, func(r *matchmaking.Round) error { return r.Cancel() })
	assert.ErrorIs(t, err, matchmaking.ErrRoundClosed)
}

func TestRoundStoreDoAfterExpiry(t *testing.T) {
	s := NewRoundStore()
	r := soloRound(t)
	s.Add(r)

	idle := make(chan *matchmaking.Round, 1)
	s.Touch(r.ID, time.Millisecond, func(r *matchmaking.Round) { idle <- r })
	select {
	case got := <-idle:
		assert.Same(t, r, got)
	case <-time.After(time.Second):
		t.Fatal("idle callback never ran")
	}

	err := s.Do(r.ID, func(*matchmaking.Round) error { return nil })
	assert.ErrorIs(t, err, matchmaking.ErrRoundNotFound)
	assert.Equal(t, matchmaking.RoundOpen, r.State())
}

func TestRoundStoreClosedRetentionIsBounded(t *testing.T) {
	s := NewRoundStore()
	alloc := matchmaking.NewAllocator(rand.New(rand.NewSource(3)))
	var first int64
	for i := 0; i < closedRetention+1; i++ {
		r := alloc.Allocate(
			[]models.Participant{{ID: uuid.New()}, {ID: uuid.New()}},
			[]models.Participant{{ID: uuid.New()}},
			matchmaking.FormatSolo,
		)
		if i == 0 {
			first = r.ID
		}
		s.Add(r)
		require.NoError(t, s.Do(r.ID, func(r *matchmaking.Round) error { return r.Cancel() }))
		s.Close(r.ID)
	}

	_, ok := s.Get(first)
	assert.False(t, ok, "oldest closed round is evicted")
	_, ok = s.Get(first + 1)
	assert.True(t, ok)
}

// internal/matchmaking/allocator.go
package matchmaking

import (
	"fmt"
	"math/rand"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jason-s-yu/apdebate/internal/models"
)

// Source is the randomness the allocator draws from. *rand.Rand satisfies it;
// tests pass a seeded one for reproducible allocations.
type Source interface {
	Shuffle(n int, swap func(i, j int))
	Intn(n int) int
}

// Allocator turns a drained roster into a fresh Round.
type Allocator struct {
	mu     sync.Mutex // guards src, which need not be safe for concurrent use
	src    Source
	lastID atomic.Int64
}

// NewAllocator returns an allocator drawing from src. A nil src uses a
// time-seeded generator.
func NewAllocator(src Source) *Allocator {
	if src == nil {
		src = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Allocator{src: src}
}

// NewSeededAllocator returns an allocator whose output is fixed by seed.
// A zero seed falls back to the current time.
func NewSeededAllocator(seed int64) *Allocator {
	if seed == 0 {
		return NewAllocator(nil)
	}
	return NewAllocator(rand.New(rand.NewSource(seed)))
}

// Allocate shuffles debaters and judges independently and partitions them
// according to format. The caller must have checked the counts with Resolve;
// too few debaters for the format is a programming error and panics.
func (a *Allocator) Allocate(debaters, judges []models.Participant, format RoundFormat) *Round {
	spec, ok := format.Spec()
	if !ok {
		panic(fmt.Sprintf("matchmaking: allocate with unknown format %q", format))
	}
	need := spec.ProSize + spec.ConSize
	if len(debaters) < need {
		panic(fmt.Sprintf("matchmaking: %s needs %d debaters, got %d", format, need, len(debaters)))
	}

	debaters = slices.Clone(debaters)
	judges = slices.Clone(judges)

	a.mu.Lock()
	a.src.Shuffle(len(debaters), func(i, j int) { debaters[i], debaters[j] = debaters[j], debaters[i] })
	a.src.Shuffle(len(judges), func(i, j int) { judges[i], judges[j] = judges[j], judges[i] })
	proSize, conSize := spec.ProSize, spec.ConSize
	proType, conType := spec.ProType, spec.ConType
	if spec.RandomIronSide && a.src.Intn(2) == 1 {
		proSize, conSize = conSize, proSize
		proType, conType = conType, proType
	}
	a.mu.Unlock()

	r := &Round{
		ID:        a.lastID.Add(1),
		Format:    format,
		CreatedAt: time.Now(),
		pro:       newTeam(SidePro, proType, debaters[:proSize]),
		con:       newTeam(SideCon, conType, debaters[proSize:proSize+conSize]),
		state:     RoundOpen,
	}
	for _, j := range judges {
		r.judges.Add(j)
	}
	// surplus debaters become panelists behind the registered judges
	for _, d := range debaters[proSize+conSize:] {
		r.judges.Add(d)
	}
	return r
}

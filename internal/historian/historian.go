// internal/historian/historian.go
package historian

import (
	"context"
	"sync"
	"time"

	"github.com/jason-s-yu/apdebate/internal/models"
	"github.com/sirupsen/logrus"
)

// Source yields archived rounds. Next waits up to wait and reports ok=false
// if nothing arrived.
type Source interface {
	Next(ctx context.Context, wait time.Duration) (models.RoundRecord, bool, error)
}

// Sink persists a batch of rounds atomically.
type Sink interface {
	InsertRounds(ctx context.Context, recs []models.RoundRecord) error
}

const (
	minBackoff = 100 * time.Millisecond
	maxBackoff = 5 * time.Second
	// maxPendingBatches caps how many batches worth of rounds are held while
	// the sink keeps failing; older rounds are dropped first.
	maxPendingBatches = 50
)

// Service pops sealed rounds off the archive queue, accumulates them in a
// batch, and flushes the batch when it is full or the flush interval passes.
type Service struct {
	src        Source
	sink       Sink
	log        *logrus.Logger
	batchSize  int
	flushDelay time.Duration
	pollWait   time.Duration

	batchMu sync.Mutex
	batch   []models.RoundRecord
}

func NewService(src Source, sink Sink, logger *logrus.Logger, batchSize int, flushDelay time.Duration) *Service {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Service{
		src:        src,
		sink:       sink,
		log:        logger,
		batchSize:  batchSize,
		flushDelay: flushDelay,
		pollWait:   3 * time.Second,
		batch:      make([]models.RoundRecord, 0, batchSize),
	}
}

// Run blocks until ctx is cancelled. Whatever is still batched at that point
// is flushed with a fresh context before returning.
func (s *Service) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.flushLoop(ctx)
	}()

	s.log.Info("historian started")
	s.readLoop(ctx)
	wg.Wait()

	flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.flush(flushCtx)
	s.log.Info("historian stopped")
}

func (s *Service) readLoop(ctx context.Context) {
	backoff := time.Duration(0)
	for ctx.Err() == nil {
		rec, ok, err := s.src.Next(ctx, s.pollWait)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			backoff = nextBackoff(backoff)
			s.log.WithError(err).WithField("retry_in", backoff).Error("failed to read archived round")
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			continue
		}
		backoff = 0
		if !ok {
			continue
		}
		if s.append(rec) {
			s.flush(ctx)
		}
	}
}

func (s *Service) flushLoop(ctx context.Context) {
	ticker := time.NewTicker(s.flushDelay)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.flush(ctx)
		}
	}
}

// append adds rec to the batch and reports whether the batch is full.
func (s *Service) append(rec models.RoundRecord) bool {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()
	s.batch = append(s.batch, rec)
	return len(s.batch) >= s.batchSize
}

// flush writes the current batch in one transaction. A failed batch is put
// back in front of anything that arrived meanwhile and retried on the next
// flush.
func (s *Service) flush(ctx context.Context) {
	s.batchMu.Lock()
	if len(s.batch) == 0 {
		s.batchMu.Unlock()
		return
	}
	pending := s.batch
	s.batch = make([]models.RoundRecord, 0, s.batchSize)
	s.batchMu.Unlock()

	if err := s.sink.InsertRounds(ctx, pending); err != nil {
		s.log.WithError(err).WithField("rounds", len(pending)).Error("failed to flush rounds")
		s.batchMu.Lock()
		s.batch = append(pending, s.batch...)
		if limit := s.batchSize * maxPendingBatches; len(s.batch) > limit {
			dropped := len(s.batch) - limit
			s.batch = append([]models.RoundRecord(nil), s.batch[dropped:]...)
			s.log.WithField("rounds", dropped).Error("pending rounds over limit, dropping oldest")
		}
		s.batchMu.Unlock()
		return
	}
	s.log.WithField("rounds", len(pending)).Debug("flushed rounds")
}

// nextBackoff doubles d within [minBackoff, maxBackoff].
func nextBackoff(d time.Duration) time.Duration {
	if d < minBackoff {
		return minBackoff
	}
	return min(2*d, maxBackoff)
}

// internal/historian/historian_test.go
package historian

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/apdebate/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chanSource feeds records from a channel the way BLPop would.
type chanSource chan models.RoundRecord

func (c chanSource) Next(ctx context.Context, wait time.Duration) (models.RoundRecord, bool, error) {
	select {
	case rec := <-c:
		return rec, true, nil
	case <-time.After(wait):
		return models.RoundRecord{}, false, nil
	case <-ctx.Done():
		return models.RoundRecord{}, false, ctx.Err()
	}
}

type mockSink struct {
	mu      sync.Mutex
	batches [][]models.RoundRecord
	failN   int // fail this many calls before succeeding
}

func (m *mockSink) InsertRounds(_ context.Context, recs []models.RoundRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failN > 0 {
		m.failN--
		return errors.New("db unavailable")
	}
	m.batches = append(m.batches, append([]models.RoundRecord(nil), recs...))
	return nil
}

func (m *mockSink) total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, b := range m.batches {
		n += len(b)
	}
	return n
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func record(i int) models.RoundRecord {
	return models.RoundRecord{RoundID: int64(i), Lobby: "Finals", HostID: uuid.New(), SealedAt: time.Now().UnixMilli()}
}

func startService(t *testing.T, src Source, sink Sink, batch int, flush time.Duration) (cancel func()) {
	s := NewService(src, sink, quietLogger(), batch, flush)
	s.pollWait = 10 * time.Millisecond
	ctx, cancelCtx := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	return func() {
		cancelCtx()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("historian did not stop")
		}
	}
}

func TestFlushWhenBatchFull(t *testing.T) {
	src := make(chanSource, 10)
	sink := &mockSink{}
	stop := startService(t, src, sink, 3, time.Hour)
	defer stop()

	for i := 1; i <= 3; i++ {
		src <- record(i)
	}
	assert.Eventually(t, func() bool { return sink.total() == 3 }, time.Second, 5*time.Millisecond)
	sink.mu.Lock()
	require.Len(t, sink.batches, 1)
	assert.Equal(t, int64(1), sink.batches[0][0].RoundID)
	sink.mu.Unlock()
}

func TestFlushOnInterval(t *testing.T) {
	src := make(chanSource, 10)
	sink := &mockSink{}
	stop := startService(t, src, sink, 100, 20*time.Millisecond)
	defer stop()

	src <- record(1)
	assert.Eventually(t, func() bool { return sink.total() == 1 }, time.Second, 5*time.Millisecond)
}

func TestFlushOnShutdown(t *testing.T) {
	src := make(chanSource, 10)
	sink := &mockSink{}
	stop := startService(t, src, sink, 100, time.Hour)

	src <- record(1)
	src <- record(2)
	assert.Eventually(t, func() bool { return len(src) == 0 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	stop()
	assert.Equal(t, 2, sink.total())
}

func TestFailedFlushIsRetried(t *testing.T) {
	src := make(chanSource, 10)
	sink := &mockSink{failN: 2}
	stop := startService(t, src, sink, 100, 15*time.Millisecond)
	defer stop()

	src <- record(1)
	assert.Eventually(t, func() bool { return sink.total() == 1 }, time.Second, 5*time.Millisecond)
}

// errSource always fails, counting how often it was polled.
type errSource struct {
	mu    sync.Mutex
	calls int
}

func (e *errSource) Next(ctx context.Context, _ time.Duration) (models.RoundRecord, bool, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	return models.RoundRecord{}, false, errors.New("connection refused")
}

func TestReadErrorsBackOff(t *testing.T) {
	src := &errSource{}
	cancel := startService(t, src, &mockSink{}, 5, time.Hour)
	time.Sleep(250 * time.Millisecond)
	cancel()

	src.mu.Lock()
	defer src.mu.Unlock()
	assert.LessOrEqual(t, src.calls, 4, "a failing source is not polled in a tight loop")
	assert.GreaterOrEqual(t, src.calls, 1)
}

func TestNextBackoff(t *testing.T) {
	assert.Equal(t, minBackoff, nextBackoff(0))
	assert.Equal(t, 2*minBackoff, nextBackoff(minBackoff))
	assert.Equal(t, maxBackoff, nextBackoff(maxBackoff))
}

func TestFailedFlushesAreCapped(t *testing.T) {
	sink := &mockSink{failN: 1000}
	s := NewService(chanSource(nil), sink, quietLogger(), 1, time.Hour)
	limit := maxPendingBatches
	for i := 0; i < limit+10; i++ {
		s.append(record(i))
		s.flush(context.Background())
	}

	s.batchMu.Lock()
	defer s.batchMu.Unlock()
	require.Len(t, s.batch, limit)
	assert.Equal(t, int64(10), s.batch[0].RoundID, "oldest rounds are dropped first")
	assert.Equal(t, int64(limit+9), s.batch[limit-1].RoundID)
}

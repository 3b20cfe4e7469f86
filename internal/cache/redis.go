// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jason-s-yu/apdebate/internal/models"
	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list sealed rounds are pushed onto.
const DefaultQueueName = "debate_rounds"

// Connect opens a Redis client and checks it with a ping.
func Connect(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// RoundArchive is a Redis list of sealed rounds. The server pushes onto the
// tail and the historian pops from the head.
type RoundArchive struct {
	rdb   *redis.Client
	queue string
}

func NewRoundArchive(rdb *redis.Client, queue string) *RoundArchive {
	if queue == "" {
		queue = DefaultQueueName
	}
	return &RoundArchive{rdb: rdb, queue: queue}
}

// Archive serializes the record to JSON and pushes it to the queue.
func (a *RoundArchive) Archive(ctx context.Context, rec models.RoundRecord) error {
	data, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	if err := a.rdb.RPush(ctx, a.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", a.queue, err)
	}
	return nil
}

// Next blocks up to wait for the next record. It returns ok=false when the
// wait elapsed with nothing queued. A payload that does not decode is
// returned as an error and dropped from the queue.
func (a *RoundArchive) Next(ctx context.Context, wait time.Duration) (rec models.RoundRecord, ok bool, err error) {
	res, err := a.rdb.BLPop(ctx, wait, a.queue).Result()
	if errors.Is(err, redis.Nil) {
		return rec, false, nil
	}
	if err != nil {
		return rec, false, fmt.Errorf("BLPop %s: %w", a.queue, err)
	}
	// res[0] is the queue name and res[1] the payload.
	if len(res) < 2 {
		return rec, false, nil
	}
	rec, err = decodeRecord([]byte(res[1]))
	if err != nil {
		return rec, false, err
	}
	return rec, true, nil
}

func (a *RoundArchive) Close() error {
	return a.rdb.Close()
}

func encodeRecord(rec models.RoundRecord) ([]byte, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal RoundRecord: %w", err)
	}
	return data, nil
}

func decodeRecord(data []byte) (models.RoundRecord, error) {
	var rec models.RoundRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("invalid round record: %w", err)
	}
	if rec.RoundID == 0 || rec.Lobby == "" {
		return rec, fmt.Errorf("invalid round record: missing round id or lobby")
	}
	return rec, nil
}

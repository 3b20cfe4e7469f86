// internal/cache/redis_test.go
package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/apdebate/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() models.RoundRecord {
	chair := models.Participant{ID: uuid.New(), Name: "E"}
	return models.RoundRecord{
		RoundID: 7,
		Lobby:   "Finals",
		Format:  "double_iron",
		Topic:   "Resolved: X",
		HostID:  uuid.New(),
		Government: []models.SpeakerRecord{
			{Participant: models.Participant{ID: uuid.New(), Name: "A"}, Position: "Prime Minister"},
		},
		Opposition: []models.SpeakerRecord{
			{Participant: models.Participant{ID: uuid.New(), Name: "C"}, Position: "Leader of Opposition"},
		},
		Chair:     &chair,
		Panelists: []models.Participant{},
		SealedAt:  1700000000000,
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := decodeRecord([]byte("{not json"))
	assert.Error(t, err)
	_, err = decodeRecord([]byte(`{"topic":"x"}`))
	assert.Error(t, err, "records need a round id and lobby")

	data, err := encodeRecord(sampleRecord())
	require.NoError(t, err)
	rec, err := decodeRecord(data)
	require.NoError(t, err)
	assert.Equal(t, sampleRecord().Topic, rec.Topic)
}

// TestArchiveQueue needs a real Redis; set REDIS_TEST_ADDR to run it.
func TestArchiveQueue(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	ctx := context.Background()
	rdb, err := Connect(ctx, addr, 0)
	require.NoError(t, err)

	queue := "test_rounds_" + uuid.NewString()
	a := NewRoundArchive(rdb, queue)
	defer a.Close()
	defer rdb.Del(ctx, queue)

	want := sampleRecord()
	require.NoError(t, a.Archive(ctx, want))

	got, ok, err := a.Next(ctx, time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	_, ok, err = a.Next(ctx, 100*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ok)
}

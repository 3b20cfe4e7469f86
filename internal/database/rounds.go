// internal/database/rounds.go
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/apdebate/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS debate_rounds (
	id          BIGSERIAL PRIMARY KEY,
	round_id    BIGINT      NOT NULL,
	lobby       TEXT        NOT NULL,
	format      TEXT        NOT NULL,
	topic       TEXT        NOT NULL,
	host_id     UUID        NOT NULL,
	government  JSONB       NOT NULL,
	opposition  JSONB       NOT NULL,
	chair       JSONB,
	panelists   JSONB       NOT NULL,
	sealed_at   TIMESTAMPTZ NOT NULL,
	archived_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (host_id, round_id, sealed_at)
)`

// RoundHistory writes sealed rounds to Postgres. It is append-only; nothing
// in the service reads rounds back.
type RoundHistory struct {
	pool *pgxpool.Pool
}

func NewRoundHistory(pool *pgxpool.Pool) *RoundHistory {
	return &RoundHistory{pool: pool}
}

// EnsureSchema creates the debate_rounds table if it is missing.
func (h *RoundHistory) EnsureSchema(ctx context.Context) error {
	if _, err := h.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create debate_rounds: %w", err)
	}
	return nil
}

// InsertRounds stores recs in one transaction. A record that was already
// stored (same host, round id and seal time) is skipped, so a redelivered
// queue entry is harmless.
func (h *RoundHistory) InsertRounds(ctx context.Context, recs []models.RoundRecord) error {
	if len(recs) == 0 {
		return nil
	}
	return beginTxFunc(ctx, h.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rec := range recs {
			if err := insertRoundTx(ctx, tx, rec); err != nil {
				return fmt.Errorf("insert round %d of %q: %w", rec.RoundID, rec.Lobby, err)
			}
		}
		return nil
	})
}

func insertRoundTx(ctx context.Context, tx pgx.Tx, rec models.RoundRecord) error {
	q := `
		INSERT INTO debate_rounds (
			round_id, lobby, format, topic, host_id,
			government, opposition, chair, panelists, sealed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (host_id, round_id, sealed_at) DO NOTHING
	`
	gov, err := json.Marshal(rec.Government)
	if err != nil {
		return err
	}
	opp, err := json.Marshal(rec.Opposition)
	if err != nil {
		return err
	}
	var chair []byte
	if rec.Chair != nil {
		if chair, err = json.Marshal(rec.Chair); err != nil {
			return err
		}
	}
	panelists := rec.Panelists
	if panelists == nil {
		panelists = []models.Participant{}
	}
	pan, err := json.Marshal(panelists)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, q,
		rec.RoundID, rec.Lobby, rec.Format, rec.Topic, rec.HostID,
		gov, opp, chair, pan, time.UnixMilli(rec.SealedAt).UTC(),
	)
	return err
}

package memory

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	fterrors "github.com/otherjamesbrown/feedback-triage/pkg/errors"
	"github.com/otherjamesbrown/feedback-triage/pkg/triage"
)

// PostgresLog keeps the memory log in an append-only Postgres table,
// ordered by a sequence column.
type PostgresLog struct {
	pool *pgxpool.Pool
}

// NewPostgresLog creates a memory log backed by pool.
func NewPostgresLog(pool *pgxpool.Pool) *PostgresLog {
	return &PostgresLog{pool: pool}
}

// Migrate creates the memory table if it does not exist.
func (l *PostgresLog) Migrate(ctx context.Context) error {
	_, err := l.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS triage_memory (
			seq             BIGSERIAL PRIMARY KEY,
			customer_id     TEXT NOT NULL,
			text            TEXT NOT NULL,
			sentiment_score INT NOT NULL,
			sentiment_label TEXT NOT NULL,
			recorded_at     TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS triage_memory_customer_idx
			ON triage_memory (customer_id, seq)`)
	if err != nil {
		return fmt.Errorf("migrate memory: %v: %w", err, fterrors.ErrStorageUnavailable)
	}
	return nil
}

// Append implements triage.MemoryLog.
func (l *PostgresLog) Append(ctx context.Context, customerID string, rec triage.MemoryRecord) error {
	_, err := l.pool.Exec(ctx, `
		INSERT INTO triage_memory (customer_id, text, sentiment_score, sentiment_label, recorded_at)
		VALUES ($1, $2, $3, $4, $5)`,
		customerID, rec.Text, rec.Sentiment.Score, string(rec.Sentiment.Label), rec.RecordedAt.UTC())
	if err != nil {
		return fmt.Errorf("postgres memory append: %v: %w", err, fterrors.ErrStorageUnavailable)
	}
	return nil
}

// ReadAll implements triage.MemoryLog.
func (l *PostgresLog) ReadAll(ctx context.Context, customerID string) ([]triage.MemoryRecord, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT text, sentiment_score, sentiment_label, recorded_at
		FROM triage_memory
		WHERE customer_id = $1
		ORDER BY seq`,
		customerID)
	if err != nil {
		return nil, fmt.Errorf("postgres memory read: %v: %w", err, fterrors.ErrStorageUnavailable)
	}
	defer rows.Close()

	var recs []triage.MemoryRecord
	for rows.Next() {
		var rec triage.MemoryRecord
		var label string
		if err := rows.Scan(&rec.Text, &rec.Sentiment.Score, &label, &rec.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan memory record: %w", err)
		}
		rec.Sentiment.Label = triage.SentimentLabel(label)
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres memory read: %v: %w", err, fterrors.ErrStorageUnavailable)
	}
	if recs == nil {
		recs = []triage.MemoryRecord{}
	}
	return recs, nil
}

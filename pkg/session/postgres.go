package session

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	fterrors "github.com/otherjamesbrown/feedback-triage/pkg/errors"
	"github.com/otherjamesbrown/feedback-triage/pkg/triage"
)

// PostgresStore keeps sessions in a Postgres table with upsert semantics.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a session store backed by pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the sessions table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS triage_sessions (
			customer_id      TEXT PRIMARY KEY,
			created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
			escalation_count INT NOT NULL DEFAULT 0,
			display_name     TEXT NOT NULL DEFAULT '',
			last_seen_at     TIMESTAMPTZ
		)`)
	if err != nil {
		return fmt.Errorf("migrate sessions: %v: %w", err, fterrors.ErrStorageUnavailable)
	}
	return nil
}

// GetOrCreate implements triage.SessionStore. The INSERT ... ON CONFLICT
// upsert makes lookup-or-create atomic per identity.
func (s *PostgresStore) GetOrCreate(ctx context.Context, customerID string) (*triage.Session, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO triage_sessions (customer_id)
		VALUES ($1)
		ON CONFLICT (customer_id) DO UPDATE SET customer_id = EXCLUDED.customer_id
		RETURNING customer_id, created_at, escalation_count, display_name, last_seen_at`,
		customerID)

	return scanSession(row)
}

// Update implements triage.SessionStore. COALESCE keeps unset patch
// fields at their current values; a minimal record is created if absent.
func (s *PostgresStore) Update(ctx context.Context, customerID string, patch triage.SessionPatch) (*triage.Session, error) {
	var lastSeen *time.Time
	if patch.LastSeenAt != nil {
		t := patch.LastSeenAt.UTC()
		lastSeen = &t
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO triage_sessions (customer_id, escalation_count, display_name, last_seen_at)
		VALUES ($1, COALESCE($2, 0), COALESCE($3, ''), $4)
		ON CONFLICT (customer_id) DO UPDATE SET
			escalation_count = COALESCE($2, triage_sessions.escalation_count),
			display_name     = COALESCE($3, triage_sessions.display_name),
			last_seen_at     = COALESCE($4, triage_sessions.last_seen_at)
		RETURNING customer_id, created_at, escalation_count, display_name, last_seen_at`,
		customerID, patch.EscalationCount, patch.DisplayName, lastSeen)

	return scanSession(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*triage.Session, error) {
	var sess triage.Session
	err := row.Scan(&sess.CustomerID, &sess.CreatedAt, &sess.EscalationCount, &sess.DisplayName, &sess.LastSeenAt)
	if err != nil {
		return nil, fmt.Errorf("scan session: %v: %w", err, fterrors.ErrStorageUnavailable)
	}
	return &sess, nil
}

package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	fterrors "github.com/otherjamesbrown/feedback-triage/pkg/errors"
	"github.com/otherjamesbrown/feedback-triage/pkg/triage"
)

// Redis key layout: one hash per customer under session:<customer_id>.
const sessionKeyPrefix = "session:"

// RedisStore keeps sessions in Redis hashes. Redis executes commands for
// a key serially, which gives the per-identity serialization the pipeline
// requires.
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisStore creates a session store backed by client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

// GetOrCreate implements triage.SessionStore. HSetNX on created_at makes
// the lookup-or-create atomic per identity.
func (s *RedisStore) GetOrCreate(ctx context.Context, customerID string) (*triage.Session, error) {
	key := sessionKeyPrefix + customerID

	created := s.now().UTC().Format(time.RFC3339Nano)
	if err := s.client.HSetNX(ctx, key, "created_at", created).Err(); err != nil {
		return nil, fmt.Errorf("redis session create: %v: %w", err, fterrors.ErrStorageUnavailable)
	}

	fields, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis session read: %v: %w", err, fterrors.ErrStorageUnavailable)
	}

	return sessionFromHash(customerID, fields)
}

// Update implements triage.SessionStore.
func (s *RedisStore) Update(ctx context.Context, customerID string, patch triage.SessionPatch) (*triage.Session, error) {
	key := sessionKeyPrefix + customerID

	pipe := s.client.TxPipeline()
	pipe.HSetNX(ctx, key, "created_at", s.now().UTC().Format(time.RFC3339Nano))
	if patch.EscalationCount != nil {
		pipe.HSet(ctx, key, "escalation_count", *patch.EscalationCount)
	}
	if patch.DisplayName != nil {
		pipe.HSet(ctx, key, "display_name", *patch.DisplayName)
	}
	if patch.LastSeenAt != nil {
		pipe.HSet(ctx, key, "last_seen_at", patch.LastSeenAt.UTC().Format(time.RFC3339Nano))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("redis session update: %v: %w", err, fterrors.ErrStorageUnavailable)
	}

	fields, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis session read: %v: %w", err, fterrors.ErrStorageUnavailable)
	}

	return sessionFromHash(customerID, fields)
}

func sessionFromHash(customerID string, fields map[string]string) (*triage.Session, error) {
	sess := &triage.Session{CustomerID: customerID}

	if v, ok := fields["created_at"]; ok {
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return nil, fmt.Errorf("parse session created_at: %w", err)
		}
		sess.CreatedAt = t
	}
	if v, ok := fields["escalation_count"]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parse session escalation_count: %w", err)
		}
		sess.EscalationCount = n
	}
	if v, ok := fields["display_name"]; ok {
		sess.DisplayName = v
	}
	if v, ok := fields["last_seen_at"]; ok {
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return nil, fmt.Errorf("parse session last_seen_at: %w", err)
		}
		sess.LastSeenAt = &t
	}

	return sess, nil
}

package memory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	fterrors "github.com/otherjamesbrown/feedback-triage/pkg/errors"
	"github.com/otherjamesbrown/feedback-triage/pkg/triage"
)

// Redis key layout: one list per customer under memrec:<customer_id>.
// RPUSH/LRANGE preserve append order, which is the only order the log
// guarantees.
const memoryKeyPrefix = "memrec:"

// RedisLog keeps the memory log in Redis lists.
type RedisLog struct {
	client *redis.Client
}

// NewRedisLog creates a memory log backed by client.
func NewRedisLog(client *redis.Client) *RedisLog {
	return &RedisLog{client: client}
}

// Append implements triage.MemoryLog.
func (l *RedisLog) Append(ctx context.Context, customerID string, rec triage.MemoryRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal memory record: %w", err)
	}
	if err := l.client.RPush(ctx, memoryKeyPrefix+customerID, payload).Err(); err != nil {
		return fmt.Errorf("redis memory append: %v: %w", err, fterrors.ErrStorageUnavailable)
	}
	return nil
}

// ReadAll implements triage.MemoryLog.
func (l *RedisLog) ReadAll(ctx context.Context, customerID string) ([]triage.MemoryRecord, error) {
	raw, err := l.client.LRange(ctx, memoryKeyPrefix+customerID, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis memory read: %v: %w", err, fterrors.ErrStorageUnavailable)
	}

	recs := make([]triage.MemoryRecord, 0, len(raw))
	for _, item := range raw {
		var rec triage.MemoryRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("unmarshal memory record: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

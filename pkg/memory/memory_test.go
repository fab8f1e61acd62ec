package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otherjamesbrown/feedback-triage/pkg/triage"
)

func record(text string) triage.MemoryRecord {
	return triage.MemoryRecord{
		Text:       text,
		Sentiment:  triage.SentimentResult{Score: -1, Label: triage.SentimentNegative},
		RecordedAt: time.Now().UTC(),
	}
}

func TestMemoryLog_EmptyWithoutAppends(t *testing.T) {
	log := NewMemoryLog()

	recs, err := log.ReadAll(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestMemoryLog_AppendOrderPreserved(t *testing.T) {
	log := NewMemoryLog()
	ctx := context.Background()

	const n = 10
	for i := 0; i < n; i++ {
		require.NoError(t, log.Append(ctx, "c1", record(fmt.Sprintf("message %d", i))))
	}

	recs, err := log.ReadAll(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, recs, n)
	for i, rec := range recs {
		assert.Equal(t, fmt.Sprintf("message %d", i), rec.Text)
	}
}

func TestMemoryLog_CustomersAreIndependent(t *testing.T) {
	log := NewMemoryLog()
	ctx := context.Background()

	require.NoError(t, log.Append(ctx, "c1", record("for c1")))

	recs, err := log.ReadAll(ctx, "c2")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestMemoryLog_ReadReturnsSnapshot(t *testing.T) {
	log := NewMemoryLog()
	ctx := context.Background()

	require.NoError(t, log.Append(ctx, "c1", record("original")))

	recs, err := log.ReadAll(ctx, "c1")
	require.NoError(t, err)
	recs[0].Text = "tampered"

	fresh, err := log.ReadAll(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "original", fresh[0].Text)
}

func TestMemoryLog_ConcurrentAppends(t *testing.T) {
	log := NewMemoryLog()
	ctx := context.Background()

	const workers = 16
	const perWorker = 20

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				if err := log.Append(ctx, "hot", record(fmt.Sprintf("w%d-%d", w, i))); err != nil {
					t.Error(err)
				}
			}
		}(w)
	}
	wg.Wait()

	recs, err := log.ReadAll(ctx, "hot")
	require.NoError(t, err)
	assert.Len(t, recs, workers*perWorker, "no append may be lost")
}

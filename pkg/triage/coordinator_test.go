package triage_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fterrors "github.com/otherjamesbrown/feedback-triage/pkg/errors"
	"github.com/otherjamesbrown/feedback-triage/pkg/memory"
	"github.com/otherjamesbrown/feedback-triage/pkg/session"
	"github.com/otherjamesbrown/feedback-triage/pkg/triage"
	"github.com/otherjamesbrown/feedback-triage/pkg/triage/heuristic"
)

func newTestCoordinator(t *testing.T, mutate func(*triage.CoordinatorConfig)) (*triage.Coordinator, *session.MemoryStore, *memory.MemoryLog) {
	t.Helper()

	sessions := session.NewMemoryStore()
	memlog := memory.NewMemoryLog()

	cfg := triage.CoordinatorConfig{
		Sessions: sessions,
		Memory:   memlog,
		Stages:   heuristic.DefaultStages(),
	}
	if mutate != nil {
		mutate(&cfg)
	}

	coord, err := triage.NewCoordinator(cfg)
	require.NoError(t, err)
	return coord, sessions, memlog
}

func feedbackItem(customerID, text string) triage.FeedbackItem {
	return triage.FeedbackItem{
		ID:         "item-1",
		CustomerID: customerID,
		Text:       text,
		Source:     "test",
		ReceivedAt: time.Now().UTC(),
	}
}

func TestNewCoordinator_RequiresDependencies(t *testing.T) {
	_, err := triage.NewCoordinator(triage.CoordinatorConfig{})
	assert.Error(t, err)

	_, err = triage.NewCoordinator(triage.CoordinatorConfig{
		Sessions: session.NewMemoryStore(),
		Memory:   memory.NewMemoryLog(),
	})
	assert.Error(t, err, "missing stages must be rejected")
}

func TestHandle_EmptyTextRejected(t *testing.T) {
	coord, _, memlog := newTestCoordinator(t, nil)

	for _, text := range []string{"", "   ", "\t\n"} {
		_, err := coord.Handle(context.Background(), feedbackItem("c1", text))
		require.Error(t, err)
		assert.True(t, fterrors.IsValidation(err))
	}

	// The pipeline never started, so nothing was persisted.
	recs, err := memlog.ReadAll(context.Background(), "c1")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestHandle_EndToEnd(t *testing.T) {
	coord, sessions, memlog := newTestCoordinator(t, nil)
	ctx := context.Background()

	res, err := coord.Handle(ctx, triage.FeedbackItem{
		ID:         "e2e-1",
		CustomerID: "c123",
		Text:       "My package arrived late and damaged",
		ReceivedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	assert.Equal(t, triage.SentimentNegative, res.Sentiment.Label)
	assert.Negative(t, res.Sentiment.Score)

	assert.Equal(t, triage.CauseDelivery, res.RootCause.Cause)
	assert.InDelta(t, 0.85, res.RootCause.Confidence, 0.0001)

	assert.True(t, res.Escalation.Escalate)
	assert.NotEmpty(t, res.Escalation.Reason)

	assert.Contains(t, res.Plan.Actions, "offer_refund_or_redelivery")
	assert.Contains(t, res.Plan.Actions, "priority_support_routing")

	assert.Equal(t, "negative", res.Draft.Tone)
	assert.NotEmpty(t, res.Draft.Subject)
	assert.NotEmpty(t, res.Draft.Body)

	// Exactly one memory record with the item's text and sentiment.
	recs, err := memlog.ReadAll(ctx, "c123")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "My package arrived late and damaged", recs[0].Text)
	assert.Equal(t, res.Sentiment, recs[0].Sentiment)

	// Session bookkeeping: last seen set, escalation counted.
	sess, err := sessions.GetOrCreate(ctx, "c123")
	require.NoError(t, err)
	require.NotNil(t, sess.LastSeenAt)
	assert.Equal(t, 1, sess.EscalationCount)
}

func TestHandle_AppendOnlyMemoryAcrossInvocations(t *testing.T) {
	coord, _, memlog := newTestCoordinator(t, nil)
	ctx := context.Background()

	texts := []string{
		"first message about my invoice",
		"second message, still unhappy and angry",
		"third message, thank you for the help",
	}
	for _, text := range texts {
		_, err := coord.Handle(ctx, feedbackItem("c9", text))
		require.NoError(t, err)
	}

	recs, err := memlog.ReadAll(ctx, "c9")
	require.NoError(t, err)
	require.Len(t, recs, len(texts))
	for i, rec := range recs {
		assert.Equal(t, texts[i], rec.Text, "records must keep invocation order")
	}
}

// slowClassifier delays classification so the memory append wins the
// concurrent region, then checkingPlanner verifies the barrier held.
type slowClassifier struct {
	delay time.Duration
	inner triage.RootCauseClassifier
}

func (s *slowClassifier) Classify(ctx context.Context, text string) (triage.RootCauseResult, error) {
	time.Sleep(s.delay)
	return s.inner.Classify(ctx, text)
}

// checkingPlanner records whether the memory append was visible when
// planning began.
type checkingPlanner struct {
	memlog     triage.MemoryLog
	customerID string
	inner      triage.ActionPlanner

	sawRecords []int
}

func (p *checkingPlanner) Plan(ctx context.Context, sentiment triage.SentimentResult, cause triage.RootCauseResult, sess *triage.Session) (triage.ActionPlan, error) {
	recs, err := p.memlog.ReadAll(ctx, p.customerID)
	if err != nil {
		return triage.ActionPlan{}, err
	}
	p.sawRecords = append(p.sawRecords, len(recs))
	return p.inner.Plan(ctx, sentiment, cause, sess)
}

func TestHandle_JoinBarrier(t *testing.T) {
	// Regardless of which concurrent task finishes first, the planner
	// must observe the committed memory record.
	for _, delay := range []time.Duration{0, 20 * time.Millisecond} {
		memlog := memory.NewMemoryLog()
		planner := &checkingPlanner{
			memlog:     memlog,
			customerID: "c-join",
			inner:      heuristic.NewPlanner(),
		}

		stages := heuristic.DefaultStages()
		stages.RootCause = &slowClassifier{delay: delay, inner: heuristic.NewRootCause()}
		stages.Planner = planner

		coord, err := triage.NewCoordinator(triage.CoordinatorConfig{
			Sessions: session.NewMemoryStore(),
			Memory:   memlog,
			Stages:   stages,
		})
		require.NoError(t, err)

		for i := 0; i < 5; i++ {
			_, err := coord.Handle(context.Background(), feedbackItem("c-join", "the delivery was late"))
			require.NoError(t, err)
		}

		require.Len(t, planner.sawRecords, 5)
		for i, n := range planner.sawRecords {
			assert.Equal(t, i+1, n, "planner must see every committed append (delay=%v)", delay)
		}
	}
}

// failingPlanner always errors.
type failingPlanner struct{ err error }

func (p *failingPlanner) Plan(context.Context, triage.SentimentResult, triage.RootCauseResult, *triage.Session) (triage.ActionPlan, error) {
	return triage.ActionPlan{}, p.err
}

func TestHandle_StageFailurePropagates(t *testing.T) {
	cause := errors.New("planner exploded")
	coord, _, memlog := newTestCoordinator(t, func(cfg *triage.CoordinatorConfig) {
		cfg.Stages.Planner = &failingPlanner{err: cause}
	})

	res, err := coord.Handle(context.Background(), feedbackItem("c-fail", "my package is late"))
	require.Error(t, err)
	assert.Nil(t, res, "no partial result on stage failure")

	se := fterrors.AsStageError(err)
	require.NotNil(t, se, "stage failures must surface as StageError")
	assert.Equal(t, fterrors.StagePlanner, se.Stage)
	assert.ErrorIs(t, err, cause)

	// The concurrent append committed before the planner ran; the record
	// stays even though the pipeline failed.
	recs, rerr := memlog.ReadAll(context.Background(), "c-fail")
	require.NoError(t, rerr)
	assert.Len(t, recs, 1)
}

// stuckAnalyzer blocks until its context is cancelled.
type stuckAnalyzer struct{}

func (stuckAnalyzer) Analyze(ctx context.Context, text string) (triage.SentimentResult, error) {
	<-ctx.Done()
	return triage.SentimentResult{}, ctx.Err()
}

func TestHandle_StageTimeout(t *testing.T) {
	coord, _, _ := newTestCoordinator(t, func(cfg *triage.CoordinatorConfig) {
		cfg.Stages.Sentiment = stuckAnalyzer{}
		cfg.StageTimeout = 10 * time.Millisecond
	})

	_, err := coord.Handle(context.Background(), feedbackItem("c-slow", "anything at all"))
	require.Error(t, err)

	se := fterrors.AsStageError(err)
	require.NotNil(t, se)
	assert.Equal(t, fterrors.StageSentiment, se.Stage)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHandle_SessionEscalationHistoryFeedsPlanner(t *testing.T) {
	coord, _, _ := newTestCoordinator(t, nil)
	ctx := context.Background()

	// First item escalates and bumps the session counter.
	_, err := coord.Handle(ctx, feedbackItem("c-hist", "package arrived late and damaged"))
	require.NoError(t, err)

	// Second item sees the prior escalation and widens the plan.
	res, err := coord.Handle(ctx, feedbackItem("c-hist", "package arrived late and damaged"))
	require.NoError(t, err)
	assert.Contains(t, res.Plan.Actions, "account_review")
}

package triage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	fterrors "github.com/otherjamesbrown/feedback-triage/pkg/errors"
	"github.com/otherjamesbrown/feedback-triage/pkg/logging"
	"github.com/otherjamesbrown/feedback-triage/pkg/observability"
)

// DefaultStageTimeout bounds a single analysis stage invocation.
const DefaultStageTimeout = 5 * time.Second

// Stages bundles the five analysis capabilities the coordinator invokes.
type Stages struct {
	Sentiment  SentimentAnalyzer
	RootCause  RootCauseClassifier
	Planner    ActionPlanner
	Escalation EscalationEvaluator
	Drafter    ReplyDrafter
}

// CoordinatorConfig wires a Coordinator. Sessions, Memory and all five
// stages are required; Logger and Metrics are optional.
type CoordinatorConfig struct {
	Sessions SessionStore
	Memory   MemoryLog
	Stages   Stages

	// Logger receives the start/finish events. Defaults to a no-op logger.
	Logger logging.Logger

	// Metrics is optional; a nil value records nothing.
	Metrics *observability.Metrics

	// StageTimeout bounds each stage invocation. Defaults to
	// DefaultStageTimeout when zero.
	StageTimeout time.Duration
}

// Coordinator runs the triage pipeline over one feedback item: resolve
// the session, invoke the stages in order (with the classifier and the
// memory append overlapped), persist the memory record, update the
// session, and assemble the result.
type Coordinator struct {
	sessions     SessionStore
	memory       MemoryLog
	stages       Stages
	log          logging.Logger
	metrics      *observability.Metrics
	stageTimeout time.Duration
}

// NewCoordinator creates a Coordinator from cfg.
func NewCoordinator(cfg CoordinatorConfig) (*Coordinator, error) {
	if cfg.Sessions == nil {
		return nil, fmt.Errorf("coordinator: session store is required")
	}
	if cfg.Memory == nil {
		return nil, fmt.Errorf("coordinator: memory log is required")
	}
	s := cfg.Stages
	if s.Sentiment == nil || s.RootCause == nil || s.Planner == nil || s.Escalation == nil || s.Drafter == nil {
		return nil, fmt.Errorf("coordinator: all five stages are required")
	}
	log := cfg.Logger
	if log == nil {
		log = logging.Nop()
	}
	timeout := cfg.StageTimeout
	if timeout <= 0 {
		timeout = DefaultStageTimeout
	}
	return &Coordinator{
		sessions:     cfg.Sessions,
		memory:       cfg.Memory,
		stages:       s,
		log:          log,
		metrics:      cfg.Metrics,
		stageTimeout: timeout,
	}, nil
}

// Handle runs the pipeline over item and returns the assembled result.
//
// Any stage failure aborts the remaining steps and propagates as a
// *fterrors.StageError; there is no retry and no partial result. The
// memory append runs concurrently with root-cause classification, so a
// record may already be persisted when a later stage fails. That
// at-least-once write is deliberate.
func (c *Coordinator) Handle(ctx context.Context, item FeedbackItem) (*PipelineResult, error) {
	if strings.TrimSpace(item.Text) == "" {
		return nil, fmt.Errorf("feedback item has no text: %w", fterrors.ErrValidation)
	}

	log := c.log.WithContext(ctx)
	log.Info("triage start", logging.F("item_id", item.ID))

	res, err := c.run(ctx, item)
	if err != nil {
		c.metrics.IncProcessed("error")
		log.Error("triage failed", logging.F("item_id", item.ID), logging.Err(err))
		return nil, err
	}

	c.metrics.IncProcessed("ok")
	c.metrics.IncSentiment(string(res.Sentiment.Label))
	if res.Escalation.Escalate {
		c.metrics.IncEscalation()
	}
	log.Info("triage finish",
		logging.F("item_id", item.ID),
		logging.F("sentiment", string(res.Sentiment.Label)),
		logging.F("escalate", res.Escalation.Escalate),
	)
	return res, nil
}

func (c *Coordinator) run(ctx context.Context, item FeedbackItem) (*PipelineResult, error) {
	// Step 1: resolve the session. The store serializes per identity.
	sess, err := c.sessions.GetOrCreate(ctx, item.CustomerID)
	if err != nil {
		return nil, fterrors.NewStageError(fterrors.StageSession, err)
	}

	// Step 2: sentiment, synchronous — everything downstream needs it.
	var sentiment SentimentResult
	err = c.timedStage(ctx, fterrors.StageSentiment, func(ctx context.Context) error {
		var serr error
		sentiment, serr = c.stages.Sentiment.Analyze(ctx, item.Text)
		return serr
	})
	if err != nil {
		return nil, err
	}

	// Steps 3/4: classify the root cause while appending to the memory
	// log. The two tasks are independent; both must complete before the
	// planner runs. On error the sibling still finishes, its result is
	// discarded and the first error propagates.
	var cause RootCauseResult
	var g errgroup.Group
	g.Go(func() error {
		return c.timedStage(ctx, fterrors.StageRootCause, func(ctx context.Context) error {
			var cerr error
			cause, cerr = c.stages.RootCause.Classify(ctx, item.Text)
			return cerr
		})
	})
	g.Go(func() error {
		rec := MemoryRecord{
			Text:       item.Text,
			Sentiment:  sentiment,
			RecordedAt: time.Now().UTC(),
		}
		if aerr := c.memory.Append(ctx, item.CustomerID, rec); aerr != nil {
			return fterrors.NewStageError(fterrors.StageMemory, aerr)
		}
		return nil
	})
	// Step 5: the join is a hard barrier.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Step 6: plan.
	var plan ActionPlan
	err = c.timedStage(ctx, fterrors.StagePlanner, func(ctx context.Context) error {
		var perr error
		plan, perr = c.stages.Planner.Plan(ctx, sentiment, cause, sess)
		return perr
	})
	if err != nil {
		return nil, err
	}

	// Step 7: escalation.
	var escalation EscalationDecision
	err = c.timedStage(ctx, fterrors.StageEscalation, func(ctx context.Context) error {
		var eerr error
		escalation, eerr = c.stages.Escalation.Evaluate(ctx, sentiment, cause)
		return eerr
	})
	if err != nil {
		return nil, err
	}

	// Step 8: draft the reply.
	var draft ResponseDraft
	err = c.timedStage(ctx, fterrors.StageDrafter, func(ctx context.Context) error {
		var derr error
		draft, derr = c.stages.Drafter.Draft(ctx, item.Text, sentiment, plan, sess)
		return derr
	})
	if err != nil {
		return nil, err
	}

	// Step 9: session bookkeeping.
	now := time.Now().UTC()
	patch := SessionPatch{LastSeenAt: &now}
	if escalation.Escalate {
		n := sess.EscalationCount + 1
		patch.EscalationCount = &n
	}
	if _, err := c.sessions.Update(ctx, item.CustomerID, patch); err != nil {
		return nil, fterrors.NewStageError(fterrors.StageSession, err)
	}

	// Step 10: assemble.
	return &PipelineResult{
		Sentiment:  sentiment,
		RootCause:  cause,
		Plan:       plan,
		Escalation: escalation,
		Draft:      draft,
	}, nil
}

// timedStage runs fn under the per-stage timeout, records its latency and
// wraps any failure with the stage name.
func (c *Coordinator) timedStage(ctx context.Context, stage string, fn func(context.Context) error) error {
	sctx, cancel := context.WithTimeout(ctx, c.stageTimeout)
	defer cancel()

	start := time.Now()
	err := fn(sctx)
	c.metrics.ObserveStage(stage, time.Since(start))
	return fterrors.NewStageError(stage, err)
}

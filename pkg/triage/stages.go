package triage

import "context"

// The analysis stages are single-method capabilities. Implementations may
// range from keyword heuristics to model-backed analyzers; the coordinator
// only depends on these contracts. Stages are pure over their declared
// inputs and must not mutate the session store or memory log — mutation is
// the coordinator's exclusive privilege.

// SentimentAnalyzer scores the emotional charge of feedback text.
type SentimentAnalyzer interface {
	Analyze(ctx context.Context, text string) (SentimentResult, error)
}

// RootCauseClassifier infers the driver behind the feedback. It depends
// only on the text, which is what lets the coordinator overlap it with the
// memory append.
type RootCauseClassifier interface {
	Classify(ctx context.Context, text string) (RootCauseResult, error)
}

// ActionPlanner recommends follow-up actions from the analysis so far and
// the customer's session history.
type ActionPlanner interface {
	Plan(ctx context.Context, sentiment SentimentResult, cause RootCauseResult, sess *Session) (ActionPlan, error)
}

// EscalationEvaluator decides whether the item needs human handling.
type EscalationEvaluator interface {
	Evaluate(ctx context.Context, sentiment SentimentResult, cause RootCauseResult) (EscalationDecision, error)
}

// ReplyDrafter produces the customer-facing reply draft.
type ReplyDrafter interface {
	Draft(ctx context.Context, text string, sentiment SentimentResult, plan ActionPlan, sess *Session) (ResponseDraft, error)
}

// SessionStore holds one mutable session record per customer identity.
// GetOrCreate is idempotent and atomic per identity; Update merges the set
// fields of the patch, creating a minimal record if none exists. There is
// no delete and no TTL.
type SessionStore interface {
	GetOrCreate(ctx context.Context, customerID string) (*Session, error)
	Update(ctx context.Context, customerID string, patch SessionPatch) (*Session, error)
}

// MemoryLog is the append-only per-customer feedback history. ReadAll
// returns records in append order, an empty slice when none exist.
type MemoryLog interface {
	Append(ctx context.Context, customerID string, rec MemoryRecord) error
	ReadAll(ctx context.Context, customerID string) ([]MemoryRecord, error)
}

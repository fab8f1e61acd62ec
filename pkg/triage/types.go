// Package triage implements the feedback triage pipeline: the coordinator
// that sequences and parallelizes the analysis stages over a single
// feedback item, threads per-customer session state through them, and
// assembles their outputs into one result.
package triage

import "time"

// SentimentLabel is the categorical sentiment of a feedback item.
type SentimentLabel string

const (
	SentimentNegative SentimentLabel = "negative"
	SentimentNeutral  SentimentLabel = "neutral"
	SentimentPositive SentimentLabel = "positive"
)

// RootCause identifies the inferred driver behind a piece of feedback.
type RootCause string

const (
	CauseDelivery       RootCause = "delivery"
	CauseProductQuality RootCause = "product_quality"
	CauseBilling        RootCause = "billing"
	CauseGeneralSupport RootCause = "general_support"
)

// AnonymousCustomerID is the sentinel identity assigned by the collector
// when a feedback item arrives without a customer id.
const AnonymousCustomerID = "anonymous"

// FeedbackItem is one customer-submitted text report. It is created by
// the collector at the ingestion boundary and consumed read-only by the
// coordinator.
type FeedbackItem struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customer_id"`
	Text       string    `json:"text"`
	Source     string    `json:"source,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

// Session is the per-customer mutable state tracked across feedback items.
// At most one live session exists per customer identity; sessions are
// never destroyed.
type Session struct {
	CustomerID      string     `json:"customer_id"`
	CreatedAt       time.Time  `json:"created_at"`
	EscalationCount int        `json:"escalation_count"`
	DisplayName     string     `json:"display_name,omitempty"`
	LastSeenAt      *time.Time `json:"last_seen_at,omitempty"`
}

// SessionPatch holds the fields a session update may merge into an
// existing record. Nil fields are left untouched.
type SessionPatch struct {
	EscalationCount *int
	DisplayName     *string
	LastSeenAt      *time.Time
}

// MemoryRecord is one append-only history entry for a customer: the
// feedback text together with the sentiment it scored. Records are never
// mutated after append.
type MemoryRecord struct {
	Text       string          `json:"text"`
	Sentiment  SentimentResult `json:"sentiment"`
	RecordedAt time.Time       `json:"recorded_at"`
}

// SentimentResult is a heuristic-derived signed score and its label.
// The label follows deterministically from the score's sign.
type SentimentResult struct {
	Score int            `json:"score"`
	Label SentimentLabel `json:"label"`
}

// LabelForScore maps a signed sentiment score to its categorical label:
// negative below zero, positive above zero, neutral at zero.
func LabelForScore(score int) SentimentLabel {
	switch {
	case score < 0:
		return SentimentNegative
	case score > 0:
		return SentimentPositive
	default:
		return SentimentNeutral
	}
}

// RootCauseResult is a classified cause with a confidence in [0, 1].
type RootCauseResult struct {
	Cause      RootCause `json:"cause"`
	Confidence float64   `json:"confidence"`
}

// ActionPlan is an ordered list of action tags plus a human-readable
// rationale.
type ActionPlan struct {
	Actions   []string `json:"actions"`
	Rationale string   `json:"rationale"`
}

// EscalationDecision says whether the item needs human/priority handling.
// Reason is set only when Escalate is true.
type EscalationDecision struct {
	Escalate bool   `json:"escalate"`
	Reason   string `json:"reason,omitempty"`
}

// ResponseDraft is the drafted customer reply. Tone mirrors the sentiment
// label.
type ResponseDraft struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Tone    string `json:"tone"`
}

// PipelineResult is the aggregate returned to the caller for one feedback
// item. It is transient; nothing beyond the memory record and session
// update is persisted.
type PipelineResult struct {
	Sentiment  SentimentResult    `json:"sentiment"`
	RootCause  RootCauseResult    `json:"root_cause"`
	Plan       ActionPlan         `json:"action_plan"`
	Escalation EscalationDecision `json:"escalation"`
	Draft      ResponseDraft      `json:"response_draft"`
}

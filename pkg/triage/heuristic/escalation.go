package heuristic

import (
	"context"

	"github.com/otherjamesbrown/feedback-triage/pkg/triage"
)

// Escalation reason tags.
const (
	ReasonHighConfidenceNegative = "high_confidence_negative"
	ReasonBillingDispute         = "billing_dispute"
)

// confidenceThreshold is the classifier confidence above which negative
// feedback escalates regardless of cause.
const confidenceThreshold = 0.8

// Escalation decides whether an item needs human handling.
type Escalation struct{}

// NewEscalation creates the rule-based escalation evaluator.
func NewEscalation() *Escalation {
	return &Escalation{}
}

// Evaluate implements triage.EscalationEvaluator. An item escalates when
// sentiment is negative and the classifier is confident, or when any
// negative feedback touches billing.
func (e *Escalation) Evaluate(_ context.Context, sentiment triage.SentimentResult, cause triage.RootCauseResult) (triage.EscalationDecision, error) {
	negative := sentiment.Label == triage.SentimentNegative

	if negative && cause.Confidence > confidenceThreshold {
		return triage.EscalationDecision{Escalate: true, Reason: ReasonHighConfidenceNegative}, nil
	}
	if negative && cause.Cause == triage.CauseBilling {
		return triage.EscalationDecision{Escalate: true, Reason: ReasonBillingDispute}, nil
	}

	return triage.EscalationDecision{}, nil
}

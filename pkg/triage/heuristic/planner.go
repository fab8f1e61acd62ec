package heuristic

import (
	"context"
	"fmt"

	"github.com/otherjamesbrown/feedback-triage/pkg/triage"
)

// Action tags the planner can recommend.
const (
	ActionRefundOrRedelivery = "offer_refund_or_redelivery"
	ActionReplacementOffer   = "offer_replacement"
	ActionBillingReview      = "billing_review"
	ActionStandardFollowUp   = "standard_follow_up"
	ActionPriorityRouting    = "priority_support_routing"
	ActionAccountReview      = "account_review"
)

// Planner derives an action plan from the cause, the sentiment, and the
// customer's escalation history.
type Planner struct{}

// NewPlanner creates the rule-based action planner.
func NewPlanner() *Planner {
	return &Planner{}
}

// Plan implements triage.ActionPlanner.
func (p *Planner) Plan(_ context.Context, sentiment triage.SentimentResult, cause triage.RootCauseResult, sess *triage.Session) (triage.ActionPlan, error) {
	var actions []string

	switch cause.Cause {
	case triage.CauseDelivery:
		actions = append(actions, ActionRefundOrRedelivery)
	case triage.CauseProductQuality:
		actions = append(actions, ActionReplacementOffer)
	case triage.CauseBilling:
		actions = append(actions, ActionBillingReview)
	default:
		actions = append(actions, ActionStandardFollowUp)
	}

	if sentiment.Label == triage.SentimentNegative {
		actions = append(actions, ActionPriorityRouting)
	}

	// Repeat escalations warrant a wider look at the account.
	if sess != nil && sess.EscalationCount > 0 {
		actions = append(actions, ActionAccountReview)
	}

	rationale := fmt.Sprintf("cause %s (confidence %.2f) with %s sentiment", cause.Cause, cause.Confidence, sentiment.Label)
	if sess != nil && sess.EscalationCount > 0 {
		rationale += fmt.Sprintf("; customer has %d prior escalation(s)", sess.EscalationCount)
	}

	return triage.ActionPlan{Actions: actions, Rationale: rationale}, nil
}

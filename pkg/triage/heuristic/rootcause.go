package heuristic

import (
	"context"
	"strings"

	"github.com/otherjamesbrown/feedback-triage/pkg/triage"
)

// causeRule maps keyword stems to a cause. Rules are evaluated in order;
// the first rule with a matching stem wins, so delivery terms take
// precedence over damage terms, which take precedence over billing terms.
type causeRule struct {
	cause      triage.RootCause
	confidence float64
	stems      []string
}

var causeRules = []causeRule{
	{
		cause:      triage.CauseDelivery,
		confidence: 0.85,
		stems:      []string{"deliver", "shipping", "package", "parcel", "late", "arriv", "courier", "tracking"},
	},
	{
		cause:      triage.CauseProductQuality,
		confidence: 0.8,
		stems:      []string{"damag", "broken", "defect", "faulty", "quality", "stopped working"},
	},
	{
		cause:      triage.CauseBilling,
		confidence: 0.75,
		stems:      []string{"bill", "charge", "invoice", "payment", "refund", "overcharg"},
	},
}

// defaultCauseConfidence applies when no keyword rule matches.
const defaultCauseConfidence = 0.6

// RootCause classifies feedback text by first-match keyword rules,
// falling back to general support.
type RootCause struct{}

// NewRootCause creates the keyword root-cause classifier.
func NewRootCause() *RootCause {
	return &RootCause{}
}

// Classify implements triage.RootCauseClassifier.
func (r *RootCause) Classify(_ context.Context, text string) (triage.RootCauseResult, error) {
	lower := strings.ToLower(text)

	for _, rule := range causeRules {
		for _, stem := range rule.stems {
			if strings.Contains(lower, stem) {
				return triage.RootCauseResult{Cause: rule.cause, Confidence: rule.confidence}, nil
			}
		}
	}

	return triage.RootCauseResult{
		Cause:      triage.CauseGeneralSupport,
		Confidence: defaultCauseConfidence,
	}, nil
}

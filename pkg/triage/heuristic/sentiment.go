// Package heuristic provides keyword-rule implementations of the triage
// analysis stages. They are deterministic and intentionally simple; the
// coordinator treats them as interchangeable with model-backed analyzers.
package heuristic

import (
	"context"
	"strings"

	"github.com/otherjamesbrown/feedback-triage/pkg/triage"
)

// Keyword weights for sentiment scoring. Stems are matched as substrings
// of the lowercased text; each matching stem contributes its weight once.
var sentimentWeights = map[string]int{
	// negative
	"late":       -1,
	"damag":      -1,
	"broken":     -1,
	"terrible":   -1,
	"awful":      -1,
	"worst":      -1,
	"angry":      -1,
	"disappoint": -1,
	"refund":     -1,
	"never":      -1,
	"slow":       -1,
	"wrong":      -1,
	// positive
	"great":     1,
	"love":      1,
	"excellent": 1,
	"thank":     1,
	"perfect":   1,
	"awesome":   1,
	"fast":      1,
	"helpful":   1,
	"happy":     1,
}

// Sentiment scores text by summing keyword weights. The label follows
// deterministically from the score's sign.
type Sentiment struct{}

// NewSentiment creates the keyword sentiment analyzer.
func NewSentiment() *Sentiment {
	return &Sentiment{}
}

// Analyze implements triage.SentimentAnalyzer.
func (s *Sentiment) Analyze(_ context.Context, text string) (triage.SentimentResult, error) {
	lower := strings.ToLower(text)

	score := 0
	for stem, weight := range sentimentWeights {
		if strings.Contains(lower, stem) {
			score += weight
		}
	}

	return triage.SentimentResult{
		Score: score,
		Label: triage.LabelForScore(score),
	}, nil
}

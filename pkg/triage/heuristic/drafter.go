package heuristic

import (
	"context"
	"fmt"
	"strings"

	"github.com/otherjamesbrown/feedback-triage/pkg/triage"
)

// Drafter produces a templated customer reply whose tone mirrors the
// sentiment label.
type Drafter struct{}

// NewDrafter creates the template reply drafter.
func NewDrafter() *Drafter {
	return &Drafter{}
}

// Draft implements triage.ReplyDrafter.
func (d *Drafter) Draft(_ context.Context, text string, sentiment triage.SentimentResult, plan triage.ActionPlan, sess *triage.Session) (triage.ResponseDraft, error) {
	name := "there"
	if sess != nil && sess.DisplayName != "" {
		name = sess.DisplayName
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", name)

	switch sentiment.Label {
	case triage.SentimentNegative:
		b.WriteString("We're sorry to hear about your experience. ")
	case triage.SentimentPositive:
		b.WriteString("Thank you for the kind words! ")
	default:
		b.WriteString("Thanks for getting in touch. ")
	}

	b.WriteString("We've reviewed your message")
	if len(plan.Actions) > 0 {
		fmt.Fprintf(&b, " and our next step is: %s", strings.ReplaceAll(plan.Actions[0], "_", " "))
	}
	b.WriteString(".\n\nBest regards,\nCustomer Care")

	subject := "Re: your recent feedback"
	if sentiment.Label == triage.SentimentNegative {
		subject = "We're on it - about your recent experience"
	}

	return triage.ResponseDraft{
		Subject: subject,
		Body:    b.String(),
		Tone:    string(sentiment.Label),
	}, nil
}

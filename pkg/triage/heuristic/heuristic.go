package heuristic

import "github.com/otherjamesbrown/feedback-triage/pkg/triage"

// DefaultStages returns the full keyword-rule stage set, ready to hand to
// the coordinator.
func DefaultStages() triage.Stages {
	return triage.Stages{
		Sentiment:  NewSentiment(),
		RootCause:  NewRootCause(),
		Planner:    NewPlanner(),
		Escalation: NewEscalation(),
		Drafter:    NewDrafter(),
	}
}

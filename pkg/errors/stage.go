package errors

import (
	"errors"
	"fmt"
)

// Stage names used by the pipeline coordinator when reporting failures.
const (
	StageSentiment  = "sentiment"
	StageRootCause  = "root_cause"
	StageMemory     = "memory_append"
	StagePlanner    = "action_planner"
	StageEscalation = "escalation"
	StageDrafter    = "reply_drafter"
	StageSession    = "session"
)

// StageError is a structured error for analysis stage failures. The
// coordinator wraps whatever a stage returned and aborts the remaining
// steps; no retry, no fallback stage.
type StageError struct {
	Stage string
	Cause error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Cause)
}

func (e *StageError) Unwrap() error {
	return e.Cause
}

// NewStageError wraps cause with the failing stage's name. Returns nil
// when cause is nil so call sites can wrap unconditionally.
func NewStageError(stage string, cause error) error {
	if cause == nil {
		return nil
	}
	return &StageError{Stage: stage, Cause: cause}
}

// AsStageError returns the *StageError in err's chain, or nil.
func AsStageError(err error) *StageError {
	var se *StageError
	if errors.As(err, &se) {
		return se
	}
	return nil
}

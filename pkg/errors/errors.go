// Package errors provides the domain error types for the feedback triage
// service.
//
// It defines sentinel errors for common conditions (validation failure,
// missing records, unreachable storage) that can be used across all
// packages. Using typed errors enables consistent handling with
// errors.Is() checks at the HTTP boundary.
//
// Usage:
//
//	import fterrors "github.com/otherjamesbrown/feedback-triage/pkg/errors"
//
//	// Return a domain error
//	return nil, fmt.Errorf("feedback text: %w", fterrors.ErrValidation)
//
//	// Check for domain errors
//	if fterrors.IsValidation(err) {
//	    // respond 400
//	}
package errors

import "errors"

// Domain errors - common sentinel errors for domain conditions.
var (
	// ErrValidation indicates invalid input, such as a feedback item
	// with no body text. The pipeline never starts for these.
	ErrValidation = errors.New("validation error")

	// ErrNotFound indicates the requested record was not found.
	ErrNotFound = errors.New("not found")

	// ErrStorageUnavailable indicates the session store or memory log
	// could not be reached. Fatal for the current invocation; writes are
	// never buffered or queued.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// IsValidation reports whether any error in err's chain is ErrValidation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFound reports whether any error in err's chain is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsStorageUnavailable reports whether any error in err's chain is
// ErrStorageUnavailable.
func IsStorageUnavailable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}

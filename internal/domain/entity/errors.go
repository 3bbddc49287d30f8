package entity

import "fmt"

// ValidationError represents a validation error with detailed field information.
// It implements the error interface and provides context about which field failed validation.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// DuplicateVoteError indicates that the requester's identity already has an
// accepted vote inside the current deduplication window. Category names the
// first offending category when the conflict was detected per category; it is
// empty when the conflict was detected at the identity level (marker mode).
type DuplicateVoteError struct {
	Category string
}

// Error returns a user-facing message for the duplicate vote rejection.
func (e *DuplicateVoteError) Error() string {
	if e.Category == "" {
		return "vote already recorded in the last 24 hours"
	}
	return fmt.Sprintf("vote already recorded for category %q in the last 24 hours", e.Category)
}

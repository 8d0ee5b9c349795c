package domain

import "errors"

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrAlreadyLiked    = errors.New("profile already liked")
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotMatched      = errors.New("profiles are not matched")

	// ErrTransientStore covers timeouts and connection failures from the
	// directory or the ledger. Callers may retry with backoff.
	ErrTransientStore = errors.New("store temporarily unavailable")

	// ErrDegradedSelection is a signal, not a failure: the primary eligibility
	// query failed and the looser fallback query produced the result.
	ErrDegradedSelection = errors.New("degraded candidate selection")
)

type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid input: " + e.Reason
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

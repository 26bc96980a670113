package domain

import (
	"errors"
	"fmt"
)

var (
	ErrListingNotFound = errors.New("listing not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrPaymentNotFound = errors.New("payment not found")
	ErrPayoutNotFound  = errors.New("payout not found")
	ErrForbidden       = errors.New("forbidden")
)

// ValidationError: malformed input, caller's fault, not retryable as-is.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ConflictError: availability was lost between check and act. The caller
// should offer alternative dates, not retry the same request.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

// PolicyError: business-rule refusal (cancellation window, insufficient
// balance). Terminal and user-facing.
type PolicyError struct {
	Msg string
}

func (e *PolicyError) Error() string { return e.Msg }

// UpstreamError: an external gateway call failed. Safe to retry because of
// the idempotency rules on the calling paths.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *UpstreamError) Unwrap() error { return e.Err }

// IntegrityError: stored data contradicts an invariant (e.g. a paid payment
// with no gateway transaction reference). Never auto-resolved; an operator
// has to step in.
type IntegrityError struct {
	Msg string
}

func (e *IntegrityError) Error() string { return e.Msg }

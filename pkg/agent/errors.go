package agent

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies agent and infrastructure failures. The scheduler
// uses the kind to decide retry eligibility; agents never see retry state.
type ErrorKind string

const (
	// ErrorKindValidation — input rejected before work starts. Never retried.
	ErrorKindValidation ErrorKind = "validation"
	// ErrorKindTransient — external call failed in a way that may succeed
	// on retry (rate limit, network reset, 5xx).
	ErrorKindTransient ErrorKind = "transient"
	// ErrorKindPermanent — definitive external error (400/404) or malformed
	// upstream output. Not retried.
	ErrorKindPermanent ErrorKind = "permanent"
	// ErrorKindTimeout — deadline expired. Treated as transient for retry.
	ErrorKindTimeout ErrorKind = "timeout"
	// ErrorKindCancelled — external cancel or a sibling's critical failure.
	ErrorKindCancelled ErrorKind = "cancelled"
	// ErrorKindInternal — programmer error or invariant violation.
	ErrorKindInternal ErrorKind = "internal"
)

// Error is the typed error surfaced by agents, the LLM gateway, and the
// source connectors.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds an Error wrapping cause (which may be nil).
func NewError(kind ErrorKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

// Validationf builds a validation error.
func Validationf(format string, args ...any) *Error {
	return NewError(ErrorKindValidation, nil, format, args...)
}

// Transientf builds a transient error wrapping cause.
func Transientf(cause error, format string, args ...any) *Error {
	return NewError(ErrorKindTransient, cause, format, args...)
}

// Permanentf builds a permanent error wrapping cause.
func Permanentf(cause error, format string, args ...any) *Error {
	return NewError(ErrorKindPermanent, cause, format, args...)
}

// Internalf builds an internal error wrapping cause.
func Internalf(cause error, format string, args ...any) *Error {
	return NewError(ErrorKindInternal, cause, format, args...)
}

// KindOf classifies err. Context errors map to timeout/cancelled; anything
// untyped is internal.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var agentErr *Error
	if errors.As(err, &agentErr) {
		return agentErr.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorKindTimeout
	}
	if errors.Is(err, context.Canceled) {
		return ErrorKindCancelled
	}
	return ErrorKindInternal
}

// IsRetryable reports whether err may succeed on retry.
func IsRetryable(err error) bool {
	switch KindOf(err) {
	case ErrorKindTransient, ErrorKindTimeout:
		return true
	}
	return false
}

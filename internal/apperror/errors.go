package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies engine errors so handlers can map them to HTTP statuses
// without string matching.
type Kind string

const (
	KindValidation        Kind = "VALIDATION"
	KindInvalidTransition Kind = "INVALID_TRANSITION"
	KindBusinessRule      Kind = "BUSINESS_RULE"
	KindConflict          Kind = "CONCURRENCY_CONFLICT"
	KindNotFound          Kind = "NOT_FOUND"
)

// Error is a classified application error. Services wrap lower-level causes
// with %w so the kind survives the usual fmt.Errorf chains.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation reports malformed or out-of-range input, caught before any mutation.
func Validation(format string, args ...interface{}) *Error {
	return newError(KindValidation, format, args...)
}

// InvalidTransition reports a state machine rule violation.
func InvalidTransition(format string, args ...interface{}) *Error {
	return newError(KindInvalidTransition, format, args...)
}

// BusinessRule reports a cross-entity constraint violation.
func BusinessRule(format string, args ...interface{}) *Error {
	return newError(KindBusinessRule, format, args...)
}

// Conflict reports an optimistic-lock failure; the whole operation is safe to retry.
func Conflict(format string, args ...interface{}) *Error {
	return newError(KindConflict, format, args...)
}

// NotFound reports a missing entity.
func NotFound(format string, args ...interface{}) *Error {
	return newError(KindNotFound, format, args...)
}

// Wrap attaches a cause to a classified error.
func Wrap(kind Kind, cause error, format string, args ...interface{}) *Error {
	e := newError(kind, format, args...)
	e.cause = cause
	return e
}

// KindOf returns the kind of err, or "" when err carries no classification.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsValidation(err error) bool        { return KindOf(err) == KindValidation }
func IsInvalidTransition(err error) bool { return KindOf(err) == KindInvalidTransition }
func IsBusinessRule(err error) bool      { return KindOf(err) == KindBusinessRule }
func IsConflict(err error) bool          { return KindOf(err) == KindConflict }
func IsNotFound(err error) bool          { return KindOf(err) == KindNotFound }

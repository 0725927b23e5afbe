// Package apperr defines the error taxonomy shared by every module.
// Handlers map an error's Kind to a transport status; services and
// repositories only ever attach a Kind, never a status code.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can react without parsing messages.
type Kind string

const (
	KindValidation        Kind = "VALIDATION"
	KindNotFound          Kind = "NOT_FOUND"
	KindInsufficientStock Kind = "INSUFFICIENT_STOCK"
	KindPermissionDenied  Kind = "PERMISSION_DENIED"
	KindConflict          Kind = "CONFLICT"
	KindTransient         Kind = "TRANSIENT"
)

// Error is a classified failure. Meta carries machine-readable context
// (e.g. available stock, required permission) safe to return to callers.
type Error struct {
	Kind    Kind
	Message string
	Meta    map[string]any
	wrapped error
}

func (e *Error) Error() string {
	if e.wrapped != nil {
		return e.Message + ": " + e.wrapped.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.wrapped }

// New creates an error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying error without losing its chain.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), wrapped: err}
}

// WithMeta attaches a context key/value and returns the same error.
func (e *Error) WithMeta(key string, value any) *Error {
	if e.Meta == nil {
		e.Meta = make(map[string]any)
	}
	e.Meta[key] = value
	return e
}

// KindOf returns the Kind of err, or KindTransient when err carries none.
// Unclassified failures (driver errors, timeouts) are treated as transient:
// safe to surface as retryable, never as a caller mistake.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindTransient
}

// Is reports whether err is classified with the given kind.
func Is(err error, kind Kind) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind == kind
	}
	return false
}

// Convenience constructors for the common kinds.

func Validation(format string, args ...any) *Error {
	return New(KindValidation, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, format, args...)
}

func InsufficientStock(available int, format string, args ...any) *Error {
	return New(KindInsufficientStock, format, args...).WithMeta("available", available)
}

func PermissionDenied(resource, action string) *Error {
	return New(KindPermissionDenied, "permission denied: %s:%s required", resource, action).
		WithMeta("resource", resource).
		WithMeta("action", action)
}

func Conflict(format string, args ...any) *Error {
	return New(KindConflict, format, args...)
}

func Transient(err error, format string, args ...any) *Error {
	return Wrap(KindTransient, err, format, args...)
}

package errors

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidState       = errors.New("invalid state")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrForbidden          = errors.New("forbidden")
	ErrValidation         = errors.New("validation failed")
	// ErrUnavailable marks transient storage failures that may be retried.
	ErrUnavailable = errors.New("storage unavailable")
)

// Stable kind identifiers exposed to API clients.
const (
	KindNotFound           = "not_found"
	KindInvalidState       = "invalid_state"
	KindInsufficientStock  = "insufficient_stock"
	KindForbidden          = "forbidden"
	KindDuplicateEntry     = "duplicate_entry"
	KindValidation         = "validation_failed"
	KindInvalidCredentials = "invalid_credentials"
	KindUnavailable        = "unavailable"
	KindInternal           = "internal"
)

// Kind classifies err into one of the stable kind identifiers.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidState):
		return KindInvalidState
	case errors.Is(err, ErrInsufficientStock):
		return KindInsufficientStock
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrAlreadyExists):
		return KindDuplicateEntry
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrInvalidCredentials):
		return KindInvalidCredentials
	case errors.Is(err, ErrUnavailable):
		return KindUnavailable
	default:
		return KindInternal
	}
}

// ValidationError reports per-field problems of a rejected input.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds ValidationError from field/message pairs.
func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

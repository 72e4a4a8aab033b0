package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors. Transports branch on these with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrStoreUnavailable = errors.New("graph store unavailable")

	ErrInvalidFilter    = errors.New("invalid filter")
	ErrInvalidLimit     = errors.New("limit must not be negative")
	ErrInvalidOffset    = errors.New("offset must not be negative")
	ErrInvalidDateRange = errors.New("date range start is after its end")
	ErrInvalidYear      = errors.New("fiscal year out of range")
	ErrInvalidBillType  = errors.New("unknown bill type")
	ErrMissingKey       = errors.New("required key is empty")
	ErrInvalidKey       = errors.New("key contains unsupported characters")
	ErrInvalidMode      = errors.New("unknown search mode")
)

// ValidationError wraps a sentinel with the offending field.
type ValidationError struct {
	Field   string
	Value   string
	Wrapped error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s (value=%q)", e.Wrapped, e.Field, e.Value)
}

// Unwrap exposes both the specific sentinel and ErrInvalidFilter.
func (e *ValidationError) Unwrap() []error { return []error{e.Wrapped, ErrInvalidFilter} }

// NewValidationError creates a ValidationError.
func NewValidationError(field, value string, wrapped error) *ValidationError {
	return &ValidationError{Field: field, Value: value, Wrapped: wrapped}
}

// NotFoundError names the root entity that does not exist.
type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Key)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NotFound creates a NotFoundError.
func NotFound(kind, key string) *NotFoundError {
	return &NotFoundError{Kind: kind, Key: key}
}

// StoreError is an infrastructure failure talking to the graph store. It is
// always retryable by the caller; the engine never retries on its own.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStoreUnavailable, e.Op, e.Err)
}

func (e *StoreError) Unwrap() []error { return []error{ErrStoreUnavailable, e.Err} }

// Retryable reports whether the caller may retry the request.
func (e *StoreError) Retryable() bool { return true }

// IsRetryable reports whether err is an infrastructure error worth retrying.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

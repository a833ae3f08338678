// internal/pkg/apperr/apperr.go
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for HTTP mapping and user-facing surfaces.
type Kind string

const (
	// KindValidation marks missing or invalid input. Surfaced inline.
	KindValidation Kind = "validation"
	// KindAuth marks credential, verification, or identity failures.
	KindAuth Kind = "auth"
	// KindStore marks order/user read-write failures against the store.
	KindStore Kind = "store"
	// KindAuthorization marks access-gate denials. Never surfaced as an
	// error body, only as a redirect.
	KindAuthorization Kind = "authorization"
	// KindNotFound marks a missing record.
	KindNotFound Kind = "not_found"
	// KindConflict marks an operation rejected by current state.
	KindConflict Kind = "conflict"
)

// Error carries a kind, a user-facing message, and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Fields  []string // blank/invalid field names for validation errors
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind wrapping a cause
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Validation creates a validation error naming the offending fields
func Validation(message string, fields ...string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// KindOf returns the kind of err, or KindStore for untyped errors
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindStore
}

// FieldsOf returns the field list of a validation error, if any
func FieldsOf(err error) []string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Fields
	}
	return nil
}

// Is reports whether err carries the given kind
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

package shared

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a domain error for callers that only need to know
// how to react to it.
type ErrorKind string

const (
	KindNotFound     ErrorKind = "NOT_FOUND"
	KindValidation   ErrorKind = "VALIDATION"
	KindInvalidState ErrorKind = "INVALID_STATE"
	KindConflict     ErrorKind = "CONFLICT"
)

// DomainError represents a domain-level error
type DomainError struct {
	Kind    ErrorKind `json:"kind"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches another DomainError of the same kind. A kind sentinel (whose code
// equals its kind) matches every error of that kind; otherwise codes must match.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Code == string(t.Kind) || t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// NewNotFoundError reports that an entity id does not resolve.
func NewNotFoundError(entity string, id fmt.Stringer) *DomainError {
	return NewDomainError(KindNotFound, "NOT_FOUND", fmt.Sprintf("%s %s not found", entity, id))
}

// NewValidationError reports rejected input.
func NewValidationError(code, message string) *DomainError {
	return NewDomainError(KindValidation, code, message)
}

// NewInvalidStateError reports a transition attempted from a forbidden state.
func NewInvalidStateError(code, message string) *DomainError {
	return NewDomainError(KindInvalidState, code, message)
}

// NewConflictError reports a uniqueness or concurrency clash.
func NewConflictError(code, message string) *DomainError {
	return NewDomainError(KindConflict, code, message)
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError(KindNotFound, "NOT_FOUND", "Resource not found")
	ErrValidation          = NewDomainError(KindValidation, "VALIDATION", "Invalid input provided")
	ErrInvalidState        = NewDomainError(KindInvalidState, "INVALID_STATE", "Operation not allowed in current state")
	ErrConflict            = NewDomainError(KindConflict, "CONFLICT", "Resource already exists")
	ErrNonPositiveAmount   = NewValidationError("NON_POSITIVE_AMOUNT", "Amount must be greater than zero")
	ErrConcurrencyConflict = NewDomainError(KindConflict, "CONCURRENCY_CONFLICT", "Resource was modified by another process")
)

// KindOf returns the kind of a domain error anywhere in err's chain, or ""
// when err carries none.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

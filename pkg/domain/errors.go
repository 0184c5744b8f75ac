package domain

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. DomainError wraps one of these so callers can test with errors.Is.
var (
	ErrValidation         = errors.New("validation failed")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidState       = errors.New("invalid state transition")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrVerificationFailed = errors.New("payment verification failed")
	ErrSignatureMismatch  = errors.New("webhook signature mismatch")
	ErrPersistence        = errors.New("persistence failure")
)

// DomainError carries an error kind, a human readable message and an optional cause.
type DomainError struct {
	Err     error
	Message string
	Fields  map[string]string
	Cause   error
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *DomainError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

// NewNotFoundError creates a not-found error for the given entity.
func NewNotFoundError(entity, id string) *DomainError {
	return &DomainError{Err: ErrNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

// NewValidationError creates a validation error with optional per-field messages.
func NewValidationError(message string, fields map[string]string) *DomainError {
	return &DomainError{Err: ErrValidation, Message: message, Fields: fields}
}

// NewUnauthorizedError reports missing or unreadable credentials.
func NewUnauthorizedError(message string) *DomainError {
	return &DomainError{Err: ErrUnauthorized, Message: message}
}

// NewForbiddenError reports credentials that are present but not accepted.
func NewForbiddenError(message string) *DomainError {
	return &DomainError{Err: ErrForbidden, Message: message}
}

// NewSignatureMismatchError reports a webhook whose signature does not match its body.
func NewSignatureMismatchError() *DomainError {
	return &DomainError{Err: ErrSignatureMismatch, Message: "Unauthorized: invalid signature"}
}

// NewConflictError creates a conflict error.
func NewConflictError(message string) *DomainError {
	return &DomainError{Err: ErrConflict, Message: message}
}

// NewInvalidStateError reports a rejected state transition.
func NewInvalidStateError(from, to string) *DomainError {
	return &DomainError{Err: ErrInvalidState, Message: fmt.Sprintf("cannot transition from %s to %s", from, to)}
}

// NewGatewayUnavailableError wraps a transport failure talking to the payment gateway.
func NewGatewayUnavailableError(cause error) *DomainError {
	return &DomainError{Err: ErrGatewayUnavailable, Message: "payment gateway unavailable", Cause: cause}
}

// NewVerificationFailedError reports that the gateway confirmed a non-successful payment.
func NewVerificationFailedError(reference, gatewayStatus string) *DomainError {
	return &DomainError{
		Err:     ErrVerificationFailed,
		Message: fmt.Sprintf("payment %s not successful (status %q)", reference, gatewayStatus),
	}
}

// NewPersistenceError wraps a store failure.
func NewPersistenceError(op string, cause error) *DomainError {
	return &DomainError{Err: ErrPersistence, Message: op, Cause: cause}
}

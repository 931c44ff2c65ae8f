package service

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by AccountService. Callers check them with errors.Is
// and the API layer maps each one to a client-facing status.
var (
	// ErrDuplicateUsername indicates another account already uses the username.
	// API layer should map this to HTTP 409 Conflict.
	ErrDuplicateUsername = errors.New("username already exists")

	// ErrDuplicateEmail indicates another account already uses the email address.
	// API layer should map this to HTTP 409 Conflict.
	ErrDuplicateEmail = errors.New("email already exists")

	// ErrNotFound indicates the operation targets an account that does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrNotFound = errors.New("account not found")

	// ErrUnavailable indicates a storage or hashing fault unrelated to business rules.
	// API layer should map this to HTTP 500 Internal Server Error.
	ErrUnavailable = errors.New("account service unavailable")
)

// ServiceError describes a failed service operation. Err is the outcome callers
// match against; Cause keeps the underlying fault for logs without exposing it
// to errors.Is.
type ServiceError struct {
	Service string
	Op      string
	Err     error
	Cause   error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	msg := fmt.Sprintf("%s service %s operation failed", e.Service, e.Op)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the outcome error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a ServiceError for the given service and operation.
func NewServiceError(service, op string, err error) *ServiceError {
	return &ServiceError{
		Service: service,
		Op:      op,
		Err:     err,
	}
}

func unavailable(op string, cause error) error {
	return &ServiceError{
		Service: "account",
		Op:      op,
		Err:     ErrUnavailable,
		Cause:   cause,
	}
}

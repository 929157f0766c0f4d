package service

import (
	"errors"
	"fmt"

	"github.com/applyflow/applyflow-api/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// Service methods return these for expected conditions so callers can check
// with errors.Is(); unexpected failures are wrapped in ServiceError. The API
// layer maps them to HTTP status codes. Each sentinel wraps its store
// counterpart, so callers holding only the store contract (the worker
// boundary checks store.IsNotFoundError) still match.
var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = fmt.Errorf("user not found: %w", store.ErrNotFound)

	// ErrProfileNotFound indicates the requested profile does not exist.
	ErrProfileNotFound = fmt.Errorf("profile not found: %w", store.ErrNotFound)

	// ErrApplicationNotFound indicates the requested job application does
	// not exist or is not visible to the requesting owner. The two cases
	// are deliberately indistinguishable.
	ErrApplicationNotFound = fmt.Errorf("job application not found: %w", store.ErrNotFound)

	// ErrEmailExists indicates the email address is already registered.
	ErrEmailExists = fmt.Errorf("email address already registered: %w", store.ErrDuplicate)
)

// ServiceError wraps unexpected errors from a service with operation context.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "submit_application").
	Operation string
	// Message is a human-readable description of the failure.
	Message string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// mapStoreError translates store sentinels into their service-level
// counterparts, wrapping anything else in a ServiceError.
func mapStoreError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, store.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, store.ErrProfileNotFound):
		return ErrProfileNotFound
	case errors.Is(err, store.ErrApplicationNotFound):
		return ErrApplicationNotFound
	case errors.Is(err, store.ErrEmailExists):
		return ErrEmailExists
	}

	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

package errors

import (
	"errors"
	"fmt"
)

var (
	// Order errors
	ErrOrderNotFound          = errors.New("order not found")
	ErrInvalidStateTransition = errors.New("invalid order state transition")
	ErrOrderPriceMismatch     = errors.New("order price does not match item totals")

	// Payment errors
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrCreditEntryNotFound = errors.New("credit entry not found")

	// Restaurant errors
	ErrRestaurantNotFound = errors.New("restaurant not found")

	// Customer errors
	ErrCustomerNotFound = errors.New("customer not found")

	// Outbox errors
	ErrOutboxMessageNotFound = errors.New("outbox message not found")

	// Concurrency errors
	ErrOptimisticLockFailed = errors.New("optimistic lock conflict")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")
)

// DomainError wraps errors with a stable code and human-readable message.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error.
func NewDomainError(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ValidationError represents a field-level validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

package shared

import "fmt"

// DomainError is the base error type for all domain errors
type DomainError struct {
	Message string
	Cause   error
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Validation error

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Configuration parse errors

type InvalidConfigurationError struct {
	*DomainError
	Serialized string
}

func NewInvalidConfigurationError(serialized, reason string) *InvalidConfigurationError {
	return &InvalidConfigurationError{
		DomainError: &DomainError{Message: fmt.Sprintf("invalid machine configuration %q: %s", serialized, reason)},
		Serialized:  serialized,
	}
}

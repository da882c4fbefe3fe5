package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the service taxonomy. Refusals and recoverable query
// faults never become Go errors at all; they travel back to the model as
// plain tool-result text. Anything wrapped here terminates the current turn.
var (
	// ErrInvalidInput - malformed request from the client
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound - resource not found
	ErrNotFound = errors.New("not found")

	// ErrConnection - relational store unreachable; never swallowed
	ErrConnection = errors.New("database connection failed")

	// ErrTransient - transient upstream failure
	ErrTransient = errors.New("transient error")

	// ErrInternal - internal orchestration or provider fault
	ErrInternal = errors.New("internal error")
)

// Wrap wraps an error with context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// InvalidInput wraps a message as invalid input.
func InvalidInput(message string) error {
	return fmt.Errorf("%s: %w", message, ErrInvalidInput)
}

// NotFound wraps a message as not found.
func NotFound(message string) error {
	return fmt.Errorf("%s: %w", message, ErrNotFound)
}

// Connection wraps a message as a database connection fault.
func Connection(message string) error {
	return fmt.Errorf("%s: %w", message, ErrConnection)
}

// Transient wraps a message as transient.
func Transient(message string) error {
	return fmt.Errorf("%s: %w", message, ErrTransient)
}

// Internal wraps a message as internal.
func Internal(message string) error {
	return fmt.Errorf("%s: %w", message, ErrInternal)
}

// IsCategory checks if an error belongs to a specific category.
func IsCategory(err error, category error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, category)
}

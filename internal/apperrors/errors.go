// Package apperrors defines application-specific error types and sentinel
// errors for consistent error handling across layers.
package apperrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure categories. Wrap them with context using
// fmt.Errorf("%w: ...", ...) so callers can still match with errors.Is.
var (
	// ErrNotFound indicates a requested resource does not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrValidation indicates the request failed validation.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicate indicates a resource already exists.
	ErrDuplicate = errors.New("resource already exists")
	// ErrProviderUnavailable indicates an upstream rate provider could not be
	// reached or returned an unusable response.
	ErrProviderUnavailable = errors.New("rate provider unavailable")
	// ErrNoData indicates the rate store holds no records at all.
	ErrNoData = errors.New("no rate data available")
)

// AppError carries an HTTP status code alongside a message and an optional
// wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError with an explicit status code.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError wraps ErrNotFound with a resource-specific message.
func NewNotFoundError(message string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, message)
}

// NewValidationError wraps ErrValidation with a field-specific message.
func NewValidationError(message string) error {
	return fmt.Errorf("%w: %s", ErrValidation, message)
}

package posts

import (
	"errors"
	"fmt"
)

// Sentinel errors for common post operations
var (
	// ErrAuthRequired is returned when no caller identity accompanies the request
	ErrAuthRequired = errors.New("authentication required")

	// ErrNotFound is returned when a post does not exist
	ErrNotFound = errors.New("post not found")

	// ErrForbidden is returned when the caller is not among a post's authors
	ErrForbidden = errors.New("user is not author of this post")
)

// ValidationError represents a validation error with field context
// Message is safe to show to API clients as-is
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error (%s): %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// IsValidationError checks if error is a validation error
func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}

// ValidationMessage returns the client-facing message of a validation error,
// or an empty string when err is not one
func ValidationMessage(err error) string {
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return valErr.Message
	}
	return ""
}

// IsNotFound checks if error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsForbidden checks if error is an authorship failure
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsAuthRequired checks if error is due to a missing caller identity
func IsAuthRequired(err error) bool {
	return errors.Is(err, ErrAuthRequired)
}

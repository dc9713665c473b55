package common

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrInvalidState signals an inventory or activity operation attempted in the
// wrong lifecycle state (double completion, release after completion, ...).
// It indicates a caller ordering bug, not a recoverable condition.
var ErrInvalidState = errors.New("invalid state")

// ValidationError reports missing or invalid required input. No partial state
// is created when one is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ErrorStatus maps service errors onto HTTP status codes for the handlers.
func ErrorStatus(err error) int {
	switch {
	case IsValidation(err):
		return 400
	case errors.Is(err, ErrInvalidState):
		return 409
	case errors.Is(err, gorm.ErrRecordNotFound):
		return 404
	default:
		return 500
	}
}

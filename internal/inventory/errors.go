package inventory

import (
	"errors"
	"fmt"
)

// Validation error codes.
const (
	ErrEmptyName           = "E001" // product name empty after trimming
	ErrEmptyQuantity       = "E002" // product quantity empty after trimming
	ErrInvalidMovementType = "E003" // movement type not IN or OUT
	ErrNonPositiveQuantity = "E004" // movement quantity <= 0
	ErrNotNumeric          = "E005" // quantity text cannot be read as a number
)

// ValidationError is returned when input is rejected before persistence.
// An operation failing with a ValidationError has written nothing.
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// IsValidationError reports whether err wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// ValidationCode returns the code of the ValidationError wrapped by err,
// or "" if there is none.
func ValidationCode(err error) string {
	var ve ValidationError
	if errors.As(err, &ve) {
		return ve.Code
	}
	return ""
}

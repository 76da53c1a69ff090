package services

import (
	"errors"
	"net/http"

	"github.com/teecraft/storefront/internal/platform/apierr"
)

// ValidationError is a user-facing inline message. Nothing is committed when
// one is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(field, message string) error {
	return apierr.New(http.StatusBadRequest, "validation_failed", &ValidationError{Field: field, Message: message})
}

// AsValidation unwraps a ValidationError from err.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

const (
	MsgFillAllFields     = "Please fill in all fields"
	MsgPasswordsMismatch = "Passwords do not match"
	MsgPasswordTooShort  = "Password must be at least 6 characters"
	MsgEmailRegistered   = "Email already registered"
	MsgSelectColor       = "Please select a color"
	MsgSelectSize        = "Please select a size"

	minPasswordLength = 6
)

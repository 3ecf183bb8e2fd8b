// Package validator adapts the domain validation rules to echo.
package validator

import (
	"taskhub/internal/domain/validation"
)

// Validator implements echo.Validator.
type Validator struct{}

// New returns the echo validator used by the API server.
func New() *Validator {
	return &Validator{}
}

// Validate checks i against its validate tags. Failures are
// *domainerrors.ValidationError so the error handler can list the fields.
func (v *Validator) Validate(i any) error {
	return validation.Struct(i)
}

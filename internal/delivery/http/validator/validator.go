// Package validator adapts go-playground/validator to echo's Validator hook.
package validator

import (
	domainerrors "biblio/internal/domain/errors"

	"github.com/go-playground/validator/v10"
)

type echoValidator struct {
	validate *validator.Validate
}

// New returns an echo.Validator backed by go-playground/validator struct tags.
func New() *echoValidator {
	return &echoValidator{validate: validator.New()}
}

// Validate checks the bound request DTO against its struct tags.
func (v *echoValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails(err.Error())
	}

	return nil
}

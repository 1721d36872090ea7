package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator validates a Parameters value.
type Validator interface {
	Validate(p *Parameters) error
}

type validatorImpl struct {
	validate *validator.Validate
}

// NewValidator constructs a Validator backed by go-playground/validator.
func NewValidator() Validator {
	return &validatorImpl{validate: validator.New()}
}

func (v *validatorImpl) Validate(p *Parameters) error {
	if p == nil {
		return fmt.Errorf("parameters is nil")
	}
	if err := v.validate.Struct(p); err != nil {
		validationErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return fmt.Errorf("validation error: %w", err)
		}
		var messages []string
		for _, e := range validationErrs {
			messages = append(messages, formatValidationError(e))
		}
		return fmt.Errorf("parameters validation failed:\n  - %s", strings.Join(messages, "\n  - "))
	}

	if !p.BranchOnInequality {
		// BRANCH_ON_INEQUALITY off is the documented default (§9's Open
		// Question Decision); nothing further to check.
		return nil
	}
	return nil
}

func formatValidationError(e validator.FieldError) string {
	return fmt.Sprintf("%s failed on %q (value: %v)", e.Field(), e.Tag(), e.Value())
}

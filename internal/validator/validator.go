package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a single field-level validation failure.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// ToValidationErrors converts go-playground validation output into the
// portal's error shape.
func ToValidationErrors(err error) ValidationErrors {
	if err == nil {
		return nil
	}

	var errs ValidationErrors
	if fieldErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range fieldErrors {
			errs = append(errs, ValidationError{
				Field:   fe.Field(),
				Message: messageForTag(fe),
				Value:   fe.Value(),
				Rule:    fe.Tag(),
			})
		}
		return errs
	}

	return ValidationErrors{{Field: "request", Message: err.Error(), Rule: "invalid"}}
}

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "password_strength":
		return "must be at least 8 characters with a lowercase letter, an uppercase letter, a digit and a symbol"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// Validator bundles struct validation with portal business rules.
type Validator struct {
	validate          *validator.Validate
	businessValidator *BusinessValidator
}

// New creates a validator with all custom rules registered.
func New() *Validator {
	bv := NewBusinessValidator()

	return &Validator{
		validate:          bv.validate,
		businessValidator: bv,
	}
}

// Validate runs struct-tag validation.
func (v *Validator) Validate(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// GetBusinessValidator returns the business rule validator.
func (v *Validator) GetBusinessValidator() *BusinessValidator {
	return v.businessValidator
}

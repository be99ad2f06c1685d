package services

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ValidationHelper provides shared validation functionality
type ValidationHelper struct {
	validator *validator.Validate
}

// NewValidationHelper creates a new validation helper
func NewValidationHelper() *ValidationHelper {
	return &ValidationHelper{
		validator: validator.New(),
	}
}

// ValidateStruct validates a struct and returns validation errors
func (vh *ValidationHelper) ValidateStruct(s any) error {
	return vh.validator.Struct(s)
}

// Validate runs ValidateStruct and converts field failures into a
// validation *Error with one detail entry per field.
func (vh *ValidationHelper) Validate(s any) error {
	err := vh.ValidateStruct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return ValidationError(err.Error())
	}

	verr := ValidationError("Validation failed")
	verr.Details = make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		verr.Details[fe.Field()] = fmt.Sprintf("Field Validation Failed on '%s' tag", fe.Tag())
	}
	if len(fieldErrs) == 1 && fieldErrs[0].Tag() == "required" {
		verr.Message = fmt.Sprintf("%s is required!", fieldErrs[0].Field())
	}
	return verr
}

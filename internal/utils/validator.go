// internal/utils/validator.go
package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/vibing/vibing-client/internal/models"
)

var validate *validator.Validate

var krPhonePattern = regexp.MustCompile(`^\+82\d{9,10}$`)

func init() {
	validate = validator.New()
	validate.RegisterValidation("kr_phone", validateKRPhone)
	validate.RegisterValidation("signup_role", validateSignupRole)
	validate.RegisterValidation("user_role", validateUserRole)
	validate.RegisterValidation("product_category", validateProductCategory)
	validate.RegisterValidation("moderation_status", validateModerationStatus)
	validate.RegisterValidation("notblank", validateNotBlank)
}

// ValidateStruct checks s against its validate tags. Failures come back as
// *ValidationErrors.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	if errs := GetValidationErrors(err); len(errs) > 0 {
		return &ValidationErrors{Errors: errs}
	}
	return err
}

// ValidateVar checks a single value against tag, reporting it under field.
func ValidateVar(field string, value interface{}, tag string) error {
	err := validate.Var(value, tag)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]ValidationError, 0, len(verrs))
		for _, e := range verrs {
			out = append(out, ValidationError{
				Field:   field,
				Tag:     e.Tag(),
				Message: messageFor(field, e.Tag(), e.Param()),
			})
		}
		return &ValidationErrors{Errors: out}
	}
	return err
}

// IsValidPhone reports whether phone is a +82 mobile number.
func IsValidPhone(phone string) bool {
	return krPhonePattern.MatchString(phone)
}

func validateKRPhone(fl validator.FieldLevel) bool {
	return IsValidPhone(fl.Field().String())
}

func validateSignupRole(fl validator.FieldLevel) bool {
	switch models.UserRole(fl.Field().String()) {
	case models.UserRoleBuyer, models.UserRoleSeller:
		return true
	}
	return false
}

func validateUserRole(fl validator.FieldLevel) bool {
	switch models.UserRole(fl.Field().String()) {
	case models.UserRoleBuyer, models.UserRoleSeller, models.UserRoleAdmin:
		return true
	}
	return false
}

func validateProductCategory(fl validator.FieldLevel) bool {
	return models.IsProductCategory(fl.Field().String())
}

func validateModerationStatus(fl validator.FieldLevel) bool {
	switch models.ProductStatus(fl.Field().String()) {
	case models.ProductStatusPending, models.ProductStatusApproved, models.ProductStatusRejected:
		return true
	}
	return false
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// Validation tags for common fields
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// ValidationErrors is returned when input is rejected before any request
// is sent.
type ValidationErrors struct {
	Errors []ValidationError
}

func (v *ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v.Errors))
	for _, e := range v.Errors {
		msgs = append(msgs, e.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Has reports whether field failed validation.
func (v *ValidationErrors) Has(field string) bool {
	for _, e := range v.Errors {
		if e.Field == field {
			return true
		}
	}
	return false
}

// NewValidationError builds a single-field validation failure.
func NewValidationError(field, tag, message string) *ValidationErrors {
	return &ValidationErrors{Errors: []ValidationError{{Field: field, Tag: tag, Message: message}}}
}

// IsValidationError reports whether err is a client-side validation failure.
func IsValidationError(err error) bool {
	var v *ValidationErrors
	return errors.As(err, &v)
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, e := range validationErrs {
			field := lowerFirst(e.Field())
			validationErrors = append(validationErrors, ValidationError{
				Field:   field,
				Tag:     e.Tag(),
				Message: messageFor(field, e.Tag(), e.Param()),
			})
		}
	}

	return validationErrors
}

func messageFor(field, tag, param string) string {
	switch tag {
	case "required", "notblank":
		return field + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "kr_phone":
		return "Phone number must look like +821012345678"
	case "signup_role":
		return "Role must be buyer or seller"
	case "user_role":
		return "Role must be buyer, seller or admin"
	case "product_category":
		return "Unknown product category"
	case "moderation_status":
		return "Status must be pending, approved or rejected"
	case "url":
		return field + " must be a valid URL"
	default:
		return field + " is invalid"
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/epson121/budget/internal/models"

	"github.com/go-playground/validator/v10"
)

// Validator wraps the go-playground validator with custom rules and error formatting
type Validator struct {
	validate *validator.Validate
}

var (
	instance *Validator
	once     sync.Once
)

// GetValidator returns the shared validator instance
func GetValidator() *Validator {
	once.Do(func() {
		instance = NewValidator()
	})
	return instance
}

// NewValidator creates a new validator instance with custom rules and configuration
func NewValidator() *Validator {
	v := validator.New()

	_ = v.RegisterValidation("transaction_type", validateTransactionType)
	_ = v.RegisterValidation("category_name", validateCategoryName)
	_ = v.RegisterValidation("budget_datetime", validateDateTime)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v}
}

// Struct validates s and returns validator.ValidationErrors on failure.
func (v *Validator) Struct(s interface{}) error {
	return v.validate.Struct(s)
}

func validateTransactionType(fl validator.FieldLevel) bool {
	return models.IsValidTransactionType(fl.Field().String())
}

func validateCategoryName(fl validator.FieldLevel) bool {
	return models.ValidateCategoryName(fl.Field().String()) == nil
}

// validateDateTime accepts only the full Y-m-d H:i:s form used for transaction timestamps
func validateDateTime(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if len(value) != len(models.DateTimeLayout) {
		return false
	}
	_, err := models.ParseDateTime(value)
	return err == nil
}

// FieldErrors flattens validator errors into field -> message. Other errors
// come back under the "request" key.
func FieldErrors(err error) map[string]string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return map[string]string{"request": err.Error()}
	}

	fields := make(map[string]string, len(validationErrs))
	for _, fe := range validationErrs {
		fields[fe.Field()] = FormatFieldError(fe)
	}
	return fields
}

// FormatFieldError converts a validator.FieldError to a human-readable message
func FormatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters long", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters long", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "eqfield":
		return fmt.Sprintf("must match %s", strings.ToLower(fe.Param()))
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "transaction_type":
		return models.ErrInvalidTransactionType.Error()
	case "category_name":
		return fmt.Sprintf("must be alphanumeric and at most %d characters", models.MaxCategoryNameLength)
	case "budget_datetime":
		return models.ErrInvalidDateTime.Error()
	default:
		return fmt.Sprintf("failed validation for '%s'", fe.Tag())
	}
}

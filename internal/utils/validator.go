// internal/utils/validator.go
package utils

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var couponCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,64}$`)

func init() {
	validate = validator.New()
	validate.RegisterValidation("coupon_code", validateCouponCode)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateCouponCode(fl validator.FieldLevel) bool {
	return couponCodePattern.MatchString(strings.TrimSpace(fl.Field().String()))
}

// Validation tags for common fields
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []FieldError {
	var validationErrors []FieldError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, FieldError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min", "gte":
		return e.Field() + " must be at least " + e.Param()
	case "max", "lte":
		return e.Field() + " must be at most " + e.Param()
	case "gt":
		return e.Field() + " must be greater than " + e.Param()
	case "dive":
		return e.Field() + " contains an invalid entry"
	case "coupon_code":
		return "Coupon code must be 3-64 letters, digits, dashes or underscores"
	default:
		return e.Field() + " is invalid"
	}
}

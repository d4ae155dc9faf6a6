package utils

import (
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var Validate *validator.Validate

func InitValidator() {
	Validate = validator.New()
	RegisterCustomValidators(Validate)
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterCustomValidators(v)
	}
}

func RegisterCustomValidators(v *validator.Validate) {
	v.RegisterValidation("password", ValidatePasswordRule)
	v.RegisterValidation("totp", ValidateTOTPRule)
}

func ValidatePasswordRule(fl validator.FieldLevel) bool {
	return ValidatePassword(fl.Field().String())
}

// ValidateTOTPRule accepts exactly six ASCII digits.
func ValidateTOTPRule(fl validator.FieldLevel) bool {
	return ValidateTOTPFormat(fl.Field().String())
}

func ValidateTOTPFormat(token string) bool {
	if len(token) != 6 {
		return false
	}
	for _, r := range token {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func ValidatePassword(password string) bool {
	// Password must:
	// - Be at least 6 characters long
	// - Contain at least one number
	// - Contain at least one special character

	hasNumber := false
	hasSpecial := false

	if len(password) < 6 {
		return false
	}

	for _, char := range password {
		switch {
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}

	return hasNumber && hasSpecial
}

package auth

import (
	"unicode"

	"github.com/go-playground/validator/v10"

	"chat-relay/errors"
)

var validate = validator.New()

type SignupRequest struct {
	Name      string `json:"name" validate:"required"`
	FirstName string `json:"firstName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Country   string `json:"country" validate:"required"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
}

func ValidateSignup(req SignupRequest) error {
	if err := validate.Struct(req); err != nil {
		return err
	}
	if !isPasswordComplex(req.Password) {
		return errors.ErrInvalidPassword
	}
	return nil
}

func isPasswordComplex(s string) bool {
	var hasUpper, hasLower, hasNumber bool
	for _, char := range s {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		}
	}
	return hasUpper && hasLower && hasNumber
}

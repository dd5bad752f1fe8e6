package domain

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode"
)

// ErrValidation wraps every input validation failure.
var ErrValidation = errors.New("validation failed")

const MinPasswordLength = 8

// ValidateEmail accepts a bare address such as "a@x.com".
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: invalid email format", ErrValidation)
	}
	return nil
}

// ValidatePassword requires MinPasswordLength characters with upper case,
// lower case, a digit and a symbol.
func ValidatePassword(pw string) error {
	if len(pw) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, MinPasswordLength)
	}
	var upper, lower, digit, symbol bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	if !upper || !lower || !digit || !symbol {
		return fmt.Errorf("%w: password needs upper and lower case letters, a digit and a symbol", ErrValidation)
	}
	return nil
}

// ValidateName requires a non-blank name of at most 100 characters.
func ValidateName(field, v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return fmt.Errorf("%w: %s is required", ErrValidation, field)
	}
	if len(v) > 100 {
		return fmt.Errorf("%w: %s is too long", ErrValidation, field)
	}
	return nil
}

package utils

import (
	"errors"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Validation errors
var (
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters long")
	ErrPasswordNotComplex = errors.New("password must include at least one uppercase letter, one lowercase letter, one digit, and one special character")
)

var (
	lowercaseRegex = regexp.MustCompile(`[a-z]`)
	uppercaseRegex = regexp.MustCompile(`[A-Z]`)
	digitRegex     = regexp.MustCompile(`\d`)
	specialRegex   = regexp.MustCompile(`[@$!%*?&#^_\-]`)
	phoneRegex     = regexp.MustCompile(`^\+?[0-9][0-9 \-]{5,19}$`)
	opaqueRegex    = regexp.MustCompile(`^[0-9a-f]{40}$`)
)

// Shared rules for inbound payloads.
var (
	FullNameRules = []validation.Rule{validation.Required, validation.Length(2, 255)}
	EmailRules    = []validation.Rule{validation.Required, validation.Length(3, 255), is.EmailFormat}
	PhoneRules    = []validation.Rule{validation.Required, validation.Match(phoneRegex).Error("must be a valid phone number")}
	PasswordRules = []validation.Rule{validation.Required.Error("password cannot be blank"), validation.By(validatePassword)}
	// OpaqueTokenRules matches tokens produced by GenerateOpaqueToken.
	OpaqueTokenRules = []validation.Rule{validation.Required, validation.Match(opaqueRegex).Error("must be a 40 character hex token")}
)

func ValidateEmail(email string) error {
	return validation.Validate(email, EmailRules...)
}

// ValidatePasswordReset validates the reset code and new password.
func ValidatePasswordReset(resetCode, newPassword string) error {
	return validation.Errors{
		"code":     validation.Validate(resetCode, validation.Required.Error("invalid reset code"), validation.Length(6, 6)),
		"password": validation.Validate(newPassword, PasswordRules...),
	}.Filter()
}

// validatePassword checks the password for length and complexity.
func validatePassword(value interface{}) error {
	password, _ := value.(string)

	if len(password) < 8 {
		return ErrPasswordTooShort
	}

	if !lowercaseRegex.MatchString(password) ||
		!uppercaseRegex.MatchString(password) ||
		!digitRegex.MatchString(password) ||
		!specialRegex.MatchString(password) {
		return ErrPasswordNotComplex
	}

	return nil
}

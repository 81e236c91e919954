package utils

import (
	"regexp"
	"strings"
)

var (
	// Alphanumeric and underscores, 3-15 characters.
	usernameRegex = regexp.MustCompile(`^[A-Za-z0-9_]{3,15}$`)
	// Basic local@domain.tld shape; full RFC validation is not the goal.
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

const passwordSymbols = "@$!%*?&"

// ValidateUsername checks the username format.
func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return &ValidationError{Field: "username", Message: "Username must be 3-15 characters, alphanumeric or underscores only."}
	}
	return nil
}

// ValidateEmail checks basic email syntax.
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return &ValidationError{Field: "email", Message: "Invalid email format."}
	}
	return nil
}

// ValidatePassword enforces the signup password policy: at least 6
// characters, only letters, digits and the allowed symbol set, with at
// least one lowercase letter, one uppercase letter, one digit and one
// symbol.
func ValidatePassword(password string) error {
	invalid := &ValidationError{
		Field:   "password",
		Message: "Password must be at least 6 characters long, include uppercase, lowercase, a number, and a special character.",
	}

	if len(password) < 6 {
		return invalid
	}

	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, c := range password {
		switch {
		case c >= 'a' && c <= 'z':
			hasLower = true
		case c >= 'A' && c <= 'Z':
			hasUpper = true
		case c >= '0' && c <= '9':
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, c):
			hasSymbol = true
		default:
			return invalid
		}
	}

	if !hasLower || !hasUpper || !hasDigit || !hasSymbol {
		return invalid
	}
	return nil
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

package auth

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

const (
	passwordMinLength = 8
	passwordSpecials  = "!@#$%^&*()_+-=[]{}|;:,.<>?"
	usernameMinLength = 3
	usernameMaxLength = 50
)

var (
	emailRegex         = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernameCharsRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// ValidationError carries a message safe to show to the user
type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

func ValidatePassword(password string) error {
	if len(password) < passwordMinLength {
		return ValidationError("Password must be at least " + strconv.Itoa(passwordMinLength) + " characters")
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
		if strings.ContainsRune(passwordSpecials, r) {
			special = true
		}
	}
	if !upper {
		return ValidationError("Password must contain at least one uppercase letter")
	}
	if !lower {
		return ValidationError("Password must contain at least one lowercase letter")
	}
	if !digit {
		return ValidationError("Password must contain at least one digit")
	}
	if !special {
		return ValidationError("Password must contain at least one special character")
	}
	return nil
}

func ValidateUsername(username string) error {
	if len(username) < usernameMinLength {
		return ValidationError("Username must be at least 3 characters")
	}
	if len(username) >= usernameMaxLength {
		return ValidationError("Username must be less than 50 characters")
	}
	first := rune(username[0])
	if !(first >= 'a' && first <= 'z' || first >= 'A' && first <= 'Z') {
		return ValidationError("Username must start with a letter")
	}
	if !usernameCharsRegex.MatchString(username) {
		return ValidationError("Username can only contain letters, numbers, underscores, and hyphens")
	}
	return nil
}

func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return ValidationError("Invalid email format")
	}
	return nil
}

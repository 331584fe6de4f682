package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	emailRegex   = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	controlChars = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)
)

// ValidateEmail validates an email address
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}

// ValidateUserType validates a user type against the known types
func ValidateUserType(userType string, known ...string) error {
	for _, k := range known {
		if userType == k {
			return nil
		}
	}
	return fmt.Errorf("user type must be one of %s: %q", strings.Join(known, ", "), userType)
}

// SanitizeString removes control characters, keeping tabs and line breaks
func SanitizeString(s string) string {
	return controlChars.ReplaceAllString(s, "")
}

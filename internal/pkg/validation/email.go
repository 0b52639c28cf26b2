// internal/pkg/validation/email.go
package validation

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail matches the local@domain.tld shape. An empty value is false.
func ValidateEmail(value string) bool {
	return emailPattern.MatchString(value)
}

// GetEmailError treats an empty value as valid since email is optional.
// Flows that require an email must check emptiness themselves.
func GetEmailError(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	if !ValidateEmail(value) {
		return msg(MsgEmailInvalid)
	}
	return nil
}

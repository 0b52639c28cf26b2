// internal/pkg/validation/password.go
package validation

import (
	"strings"
	"unicode/utf8"
)

const (
	passwordMinLen = 8
	// The only characters that satisfy the special-character rule.
	passwordSpecialChars = "@#$%&*!^"
)

type passwordTraits struct {
	upper, lower, digit, special bool
}

func inspectPassword(value string) passwordTraits {
	var t passwordTraits
	for _, r := range value {
		switch {
		case r >= 'A' && r <= 'Z':
			t.upper = true
		case r >= 'a' && r <= 'z':
			t.lower = true
		case r >= '0' && r <= '9':
			t.digit = true
		case strings.ContainsRune(passwordSpecialChars, r):
			t.special = true
		}
	}
	return t
}

// ValidatePassword requires 8+ characters (runes, not bytes) with upper,
// lower, digit and one of @#$%&*!^.
func ValidatePassword(value string) bool {
	return GetPasswordError(value) == nil
}

// GetPasswordError reports the first failing rule in the order
// length, uppercase, lowercase, digit, special character.
func GetPasswordError(value string) *string {
	if utf8.RuneCountInString(value) < passwordMinLen {
		return msg(MsgPasswordLength)
	}
	t := inspectPassword(value)
	switch {
	case !t.upper:
		return msg(MsgPasswordUppercase)
	case !t.lower:
		return msg(MsgPasswordLowercase)
	case !t.digit:
		return msg(MsgPasswordDigit)
	case !t.special:
		return msg(MsgPasswordSpecial)
	}
	return nil
}

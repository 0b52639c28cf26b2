// internal/pkg/validation/address.go
package validation

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const addressMinLen = 10

// ValidateAddress requires a trimmed length of 10+ with at least one letter
// and one digit, e.g. a house number and a street name. Letters and digits
// of any script count, so addresses typed in Urdu are accepted.
func ValidateAddress(value string) bool {
	return GetAddressError(value) == nil
}

func GetAddressError(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return msg(MsgAddressRequired)
	}
	if utf8.RuneCountInString(trimmed) < addressMinLen {
		return msg(MsgAddressTooShort)
	}

	var letter, digit bool
	for _, r := range trimmed {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter || !digit {
		return msg(MsgAddressComposition)
	}
	return nil
}

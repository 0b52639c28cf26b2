// internal/pkg/validation/cnic.go
package validation

import (
	"regexp"
	"strings"
)

const cnicDigits = 13

var cnicPattern = regexp.MustCompile(`^[0-9]{5}-[0-9]{7}-[0-9]{1}$`)

// FormatCNIC keeps at most 13 digits and inserts the 5-7-1 hyphens once
// digits exist past each boundary.
func FormatCNIC(raw string) string {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
			if digits.Len() == cnicDigits {
				break
			}
		}
	}

	d := digits.String()
	switch {
	case len(d) > 12:
		return d[:5] + "-" + d[5:12] + "-" + d[12:]
	case len(d) > 5:
		return d[:5] + "-" + d[5:]
	default:
		return d
	}
}

// ValidateCNIC matches the hyphenated 5-7-1 form exactly.
func ValidateCNIC(value string) bool {
	return cnicPattern.MatchString(value)
}

// GetCNICError returns nil for a CNIC in 12345-1234567-1 form.
func GetCNICError(value string) *string {
	if strings.TrimSpace(value) == "" {
		return msg(MsgCNICRequired)
	}
	if !ValidateCNIC(value) {
		return msg(MsgCNICInvalid)
	}
	return nil
}

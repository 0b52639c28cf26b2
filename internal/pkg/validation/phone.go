// internal/pkg/validation/phone.go
package validation

import (
	"regexp"
	"strings"
)

const (
	pkCountryCode = "+92"
	phoneMaxLen   = 13 // "+92" + 10 digits
)

var (
	phonePattern          = regexp.MustCompile(`^(\+92|0)3[0-9]{9}$`)
	canonicalPhonePattern = regexp.MustCompile(`^\+923[0-9]{9}$`)
)

// FormatPhone turns raw keystrokes into the "+92 XXX XXXX XXX" display form.
// Partial input is grouped as far as it goes, so "030" becomes "+92 30".
func FormatPhone(raw string) string {
	cleaned := keepPhoneChars(raw)
	if cleaned == "" {
		return ""
	}

	switch {
	case strings.HasPrefix(cleaned, "0"):
		cleaned = pkCountryCode + cleaned[1:]
	case strings.HasPrefix(cleaned, pkCountryCode):
	case strings.HasPrefix(cleaned, "92"):
		cleaned = "+" + cleaned
	case strings.HasPrefix(cleaned, "3"):
		cleaned = pkCountryCode + cleaned
	}

	if len(cleaned) > phoneMaxLen {
		cleaned = cleaned[:phoneMaxLen]
	}

	if !strings.HasPrefix(cleaned, pkCountryCode) {
		return cleaned
	}

	rest := cleaned[len(pkCountryCode):]
	var b strings.Builder
	b.WriteString(pkCountryCode)
	// Operator code, then 4 + 3 subscriber digits.
	for _, cut := range [][2]int{{0, 3}, {3, 7}, {7, 10}} {
		if len(rest) <= cut[0] {
			break
		}
		end := cut[1]
		if end > len(rest) {
			end = len(rest)
		}
		b.WriteByte(' ')
		b.WriteString(rest[cut[0]:end])
	}
	return b.String()
}

// ValidatePhone reports whether display, once spaces are removed, is a
// Pakistani mobile number in either +92 or trunk-prefixed 0 form.
func ValidatePhone(display string) bool {
	if display == "" {
		return false
	}
	return phonePattern.MatchString(strings.ReplaceAll(display, " ", ""))
}

// CleanPhone produces the wire value sent to auth and storage. For display
// input it only strips spaces; a trunk-prefixed local number is mapped to +92
// so every valid input yields the canonical form.
func CleanPhone(display string) string {
	cleaned := strings.ReplaceAll(display, " ", "")
	if strings.HasPrefix(cleaned, "0") && phonePattern.MatchString(cleaned) {
		return pkCountryCode + cleaned[1:]
	}
	return cleaned
}

// NormalizePhone formats, cleans and validates raw in one step. The returned
// value is only meaningful when ok is true.
func NormalizePhone(raw string) (string, bool) {
	display := FormatPhone(raw)
	if !ValidatePhone(display) {
		return "", false
	}
	canonical := CleanPhone(display)
	return canonical, IsCanonicalPhone(canonical)
}

// IsCanonicalPhone matches the storage form "+923XXXXXXXXX".
func IsCanonicalPhone(value string) bool {
	return canonicalPhonePattern.MatchString(value)
}

// GetPhoneError returns nil for a valid number.
func GetPhoneError(value string) *string {
	if strings.TrimSpace(value) == "" {
		return msg(MsgPhoneRequired)
	}
	if !ValidatePhone(value) {
		return msg(MsgPhoneInvalid)
	}
	return nil
}

func keepPhoneChars(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

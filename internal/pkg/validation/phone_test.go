package validation

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPhone(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"only junk", "abc-()", ""},
		{"trunk prefix", "03001234567", "+92 300 1234 567"},
		{"canonical", "+923001234567", "+92 300 1234 567"},
		{"country code without plus", "923001234567", "+92 300 1234 567"},
		{"bare operator code", "3001234567", "+92 300 1234 567"},
		{"separators", "0300-123 (4567)", "+92 300 1234 567"},
		{"mid typing", "030", "+92 30"},
		{"mid typing second group", "0300123", "+92 300 123"},
		{"prefix only", "0", "+92"},
		{"too long is truncated", "+92 300 1234 5678 9", "+92 300 1234 567"},
		{"plus kept only when leading", "0300+1234567", "+92 300 1234 567"},
		{"foreign number left alone", "+1 415 555", "+1415555"},
		{"unknown leading digit", "9", "9"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, FormatPhone(tc.in))
		})
	}
}

func TestFormatPhone_Idempotent(t *testing.T) {
	for _, in := range []string{"+92 300 1234 567", "+92 345 0000 111", "+92 30", "+92", "+92 321 98"} {
		once := FormatPhone(in)
		require.Equal(t, once, FormatPhone(once), in)
		require.Equal(t, in, once)
	}
}

func TestValidatePhone(t *testing.T) {
	assert.True(t, ValidatePhone("+92 300 1234 567"))
	assert.True(t, ValidatePhone("+923001234567"))
	assert.True(t, ValidatePhone("03001234567"))
	assert.True(t, ValidatePhone("0300 1234 567"))

	assert.False(t, ValidatePhone(""))
	assert.False(t, ValidatePhone("+92 400 1234 567"))
	assert.False(t, ValidatePhone("+92 300 1234 56"))
	assert.False(t, ValidatePhone("+92-300-1234567"))
	assert.False(t, ValidatePhone("+9230012345678"))
}

func TestCleanPhone_ValidInputIsCanonical(t *testing.T) {
	canonical := regexp.MustCompile(`^\+923[0-9]{9}$`)
	for _, in := range []string{"+92 300 1234 567", "+923331112222", "03001234567", "0300 1234 567"} {
		require.True(t, ValidatePhone(in), in)
		require.Regexp(t, canonical, CleanPhone(in), in)
	}
	require.Equal(t, "+923001234567", CleanPhone("+92 300 1234 567"))
}

func TestNormalizePhone(t *testing.T) {
	got, ok := NormalizePhone("0300-1234567")
	require.True(t, ok)
	require.Equal(t, "+923001234567", got)
	require.True(t, IsCanonicalPhone(got))

	_, ok = NormalizePhone("0300-12")
	require.False(t, ok)

	_, ok = NormalizePhone("")
	require.False(t, ok)
}

func TestGetPhoneError(t *testing.T) {
	require.Nil(t, GetPhoneError("+92 300 1234 567"))

	e := GetPhoneError("")
	require.NotNil(t, e)
	require.Equal(t, MsgPhoneRequired, *e)

	e = GetPhoneError("+92 30")
	require.NotNil(t, e)
	require.Equal(t, MsgPhoneInvalid, *e)
}

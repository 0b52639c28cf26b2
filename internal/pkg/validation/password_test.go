package validation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	require.False(t, ValidatePassword("Abc12345"), "missing special character")
	require.True(t, ValidatePassword("Abc123!@"))
	require.False(t, ValidatePassword("abc123!@"), "missing uppercase")
	require.False(t, ValidatePassword("short1!"), "length 7")
	require.False(t, ValidatePassword("Abc12345~"), "~ is not in the special set")
	require.True(t, ValidatePassword("P^ssw0rdLonger"))
	require.True(t, ValidatePassword("Ab1!éééé"), "eight characters, twelve bytes")
}

func TestGetPasswordError_Priority(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", MsgPasswordLength},
		{"a", MsgPasswordLength},
		{"A1!", MsgPasswordLength},
		{"Ab1!éé", MsgPasswordLength},
		{"Ab1!ééé", MsgPasswordLength},
		{"abcdefgh", MsgPasswordUppercase},
		{"ABCDEFGH", MsgPasswordLowercase},
		{"Abcdefgh", MsgPasswordDigit},
		{"Abcdefg1", MsgPasswordSpecial},
	}
	for _, tc := range cases {
		got := GetPasswordError(tc.in)
		require.NotNil(t, got, tc.in)
		require.Equal(t, tc.want, *got, tc.in)
	}
	require.Nil(t, GetPasswordError("Abc123!@"))
}

// internal/pkg/validation/messages.go
package validation

// User-facing validation messages, shown inline under the offending field.
const (
	MsgPhoneRequired = "Phone number is required"
	MsgPhoneInvalid  = "Please enter a valid mobile number (e.g. +92 300 1234 567)"

	MsgCNICRequired = "CNIC is required"
	MsgCNICInvalid  = "CNIC must be in the format 12345-1234567-1"

	MsgEmailInvalid = "Please enter a valid email address"

	MsgPasswordLength    = "Password must be at least 8 characters long"
	MsgPasswordUppercase = "Password must contain at least one uppercase letter"
	MsgPasswordLowercase = "Password must contain at least one lowercase letter"
	MsgPasswordDigit     = "Password must contain at least one number"
	MsgPasswordSpecial   = "Password must contain at least one special character (@#$%&*!^)"
	MsgPasswordMismatch  = "Passwords do not match"

	MsgAddressRequired    = "Address is required"
	MsgAddressTooShort    = "Address must be at least 10 characters long"
	MsgAddressComposition = "Address must include both letters and numbers (house and street)"

	MsgFullNameRequired    = "Full name is required"
	MsgRoleInvalid         = "Role must be either customer or provider"
	MsgServiceTypeRequired = "Please choose a service"
	MsgServiceTypeInvalid  = "Unknown service type"
	MsgIdentifierRequired  = "Enter your phone number or email"
	MsgPasswordRequired    = "Password is required"
	MsgCategoriesRequired  = "Choose at least one service you offer"
	MsgPhoneTaken          = "An account with this phone number already exists"
	MsgEmailTaken          = "This email is already registered"
)

func msg(s string) *string {
	return &s
}

// ErrorMessage returns s as a field error for the *FormErrors structs.
func ErrorMessage(s string) *string {
	return msg(s)
}

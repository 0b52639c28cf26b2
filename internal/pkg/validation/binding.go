// internal/pkg/validation/binding.go
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Binding tags usable in `binding:"..."` struct tags once RegisterBindings has run.
const (
	TagPhone    = "pkphone"
	TagCNIC     = "cnic"
	TagPassword = "strongpassword"
	TagAddress  = "address"
)

// RegisterBindings installs the field rules on v and makes validation errors
// report JSON field names. Phone and CNIC accept any input that their
// formatters can normalize into a valid value.
func RegisterBindings(v *validator.Validate) error {
	v.RegisterTagNameFunc(jsonFieldName)

	rules := map[string]validator.Func{
		TagPhone: func(fl validator.FieldLevel) bool {
			return ValidatePhone(FormatPhone(fl.Field().String()))
		},
		TagCNIC: func(fl validator.FieldLevel) bool {
			return ValidateCNIC(FormatCNIC(fl.Field().String()))
		},
		TagPassword: func(fl validator.FieldLevel) bool {
			return ValidatePassword(fl.Field().String())
		},
		TagAddress: func(fl validator.FieldLevel) bool {
			return ValidateAddress(fl.Field().String())
		},
	}

	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

// BindingMessages turns validator errors into field -> message. It returns nil
// when err is not a validation failure (e.g. malformed JSON).
func BindingMessages(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = messageFor(fe)
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	value, _ := fe.Value().(string)
	if p, ok := fe.Value().(*string); ok && p != nil {
		value = *p
	}

	switch fe.Tag() {
	case TagPhone:
		return MsgPhoneInvalid
	case TagCNIC:
		return MsgCNICInvalid
	case TagPassword:
		if m := GetPasswordError(value); m != nil {
			return *m
		}
	case TagAddress:
		if m := GetAddressError(value); m != nil {
			return *m
		}
	case "required":
		return requiredMessage(fe.Field())
	case "email":
		return MsgEmailInvalid
	}
	return "Invalid value"
}

func requiredMessage(field string) string {
	switch field {
	case "phone":
		return MsgPhoneRequired
	case "password", "current_password", "new_password":
		return MsgPasswordRequired
	case "full_name":
		return MsgFullNameRequired
	case "address":
		return MsgAddressRequired
	case "cnic":
		return MsgCNICRequired
	}
	return "This field is required"
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

package validation

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

func TestValidateRegisterForm(t *testing.T) {
	valid := RegisterForm{
		FullName: "Ali Khan",
		Phone:    FormatPhone("03001234567"),
		Password: "Abc123!@",
		Role:     "customer",
	}
	require.False(t, ValidateRegisterForm(valid).HasErrors())

	t.Run("provider needs cnic and categories", func(t *testing.T) {
		f := valid
		f.Role = "provider"
		errs := ValidateRegisterForm(f)
		require.True(t, errs.HasErrors())
		require.Equal(t, MsgCNICRequired, *errs.CNIC)
		require.Equal(t, MsgCategoriesRequired, *errs.ServiceCategories)

		f.CNIC = FormatCNIC("3520212345671")
		f.ServiceCategories = []string{"plumber"}
		require.False(t, ValidateRegisterForm(f).HasErrors())
	})

	t.Run("each field reports its own error", func(t *testing.T) {
		errs := ValidateRegisterForm(RegisterForm{
			Email:           "bad",
			Password:        "a",
			ConfirmPassword: "b",
			Role:            "admin",
		})
		require.Equal(t, MsgFullNameRequired, *errs.FullName)
		require.Equal(t, MsgPhoneRequired, *errs.Phone)
		require.Equal(t, MsgEmailInvalid, *errs.Email)
		require.Equal(t, MsgPasswordLength, *errs.Password)
		require.Equal(t, MsgPasswordMismatch, *errs.ConfirmPassword)
		require.Equal(t, MsgRoleInvalid, *errs.Role)
	})
}

func TestValidateLoginForm(t *testing.T) {
	require.False(t, ValidateLoginForm(LoginForm{Identifier: "0300 1234567", Password: "x"}).HasErrors())
	require.False(t, ValidateLoginForm(LoginForm{Identifier: "ali@example.pk", Password: "x"}).HasErrors())

	errs := ValidateLoginForm(LoginForm{})
	require.Equal(t, MsgIdentifierRequired, *errs.Identifier)
	require.Equal(t, MsgPasswordRequired, *errs.Password)

	errs = ValidateLoginForm(LoginForm{Identifier: "0300", Password: "x"})
	require.Equal(t, MsgPhoneInvalid, *errs.Identifier)
}

func TestValidateProfileForm_OnlyProvidedFields(t *testing.T) {
	require.False(t, ValidateProfileForm(ProfileForm{}).HasErrors())

	addr := "abcdefghij"
	errs := ValidateProfileForm(ProfileForm{Address: &addr})
	require.Equal(t, MsgAddressComposition, *errs.Address)
	require.Nil(t, errs.CNIC)
}

func TestValidateRequestForm(t *testing.T) {
	types := []string{"plumber", "electrician"}
	require.False(t, ValidateRequestForm(RequestForm{ServiceType: "plumber", Address: "House 12 Street 4 G-9"}, types).HasErrors())

	errs := ValidateRequestForm(RequestForm{ServiceType: "astronaut", Address: "12345"}, types)
	require.Equal(t, MsgServiceTypeInvalid, *errs.ServiceType)
	require.Equal(t, MsgAddressTooShort, *errs.Address)
}

func TestNewFormError(t *testing.T) {
	require.NoError(t, NewFormError(LoginFormErrors{}))

	err := NewFormError(ValidateLoginForm(LoginForm{}))
	var fe *FormError
	require.True(t, errors.As(err, &fe))
	fields, ok := fe.Fields.(LoginFormErrors)
	require.True(t, ok)
	require.NotNil(t, fields.Identifier)
}

func TestRegisterBindings(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterBindings(v))

	type payload struct {
		Phone    string `validate:"required,pkphone"`
		CNIC     string `validate:"omitempty,cnic"`
		Password string `validate:"required,strongpassword"`
		Address  string `validate:"omitempty,address"`
	}

	require.NoError(t, v.Struct(payload{Phone: "0300-1234567", CNIC: "3520212345671", Password: "Abc123!@", Address: "House 1 Street 22"}))
	require.NoError(t, v.Struct(payload{Phone: "+92 300 1234 567", Password: "Abc123!@"}))

	err := v.Struct(payload{Phone: "12", Password: "Abc12345"})
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	require.Len(t, verrs, 2)
}

func TestBindingMessages(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterBindings(v))

	type changePassword struct {
		Current string  `json:"current_password" validate:"required"`
		New     string  `json:"new_password" validate:"required,strongpassword"`
		Address *string `json:"address" validate:"omitempty,address"`
	}

	addr := "abcdefghij"
	msgs := BindingMessages(v.Struct(changePassword{New: "abcdefgh", Address: &addr}))
	require.Equal(t, map[string]string{
		"current_password": MsgPasswordRequired,
		"new_password":     MsgPasswordUppercase,
		"address":          MsgAddressComposition,
	}, msgs)

	require.Nil(t, BindingMessages(errors.New("unexpected EOF")))
}

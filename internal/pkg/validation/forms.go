// internal/pkg/validation/forms.go
package validation

import (
	"slices"
	"strings"
)

// FormError carries one of the typed *FormErrors structs back to the handler.
type FormError struct {
	Fields any
}

func (e *FormError) Error() string {
	return "validation failed"
}

// NewFormError wraps fields, or returns nil when fields reports no errors.
func NewFormError(fields interface{ HasErrors() bool }) error {
	if !fields.HasErrors() {
		return nil
	}
	return &FormError{Fields: fields}
}

// ========== Registration ==========

type RegisterForm struct {
	FullName          string
	Phone             string
	Email             string
	Password          string
	ConfirmPassword   string
	Role              string
	CNIC              string
	ServiceCategories []string
}

type RegisterFormErrors struct {
	FullName          *string `json:"full_name,omitempty"`
	Phone             *string `json:"phone,omitempty"`
	Email             *string `json:"email,omitempty"`
	Password          *string `json:"password,omitempty"`
	ConfirmPassword   *string `json:"confirm_password,omitempty"`
	Role              *string `json:"role,omitempty"`
	CNIC              *string `json:"cnic,omitempty"`
	ServiceCategories *string `json:"service_categories,omitempty"`
}

func (e RegisterFormErrors) HasErrors() bool {
	return e.FullName != nil || e.Phone != nil || e.Email != nil || e.Password != nil ||
		e.ConfirmPassword != nil || e.Role != nil || e.CNIC != nil || e.ServiceCategories != nil
}

// ValidateRegisterForm expects Phone and CNIC already run through their formatters.
// Providers must also supply a CNIC and at least one service category.
func ValidateRegisterForm(f RegisterForm) RegisterFormErrors {
	var errs RegisterFormErrors

	if strings.TrimSpace(f.FullName) == "" {
		errs.FullName = msg(MsgFullNameRequired)
	}
	errs.Phone = GetPhoneError(f.Phone)
	errs.Email = GetEmailError(f.Email)
	errs.Password = GetPasswordError(f.Password)
	if f.ConfirmPassword != "" && f.ConfirmPassword != f.Password {
		errs.ConfirmPassword = msg(MsgPasswordMismatch)
	}

	switch f.Role {
	case "customer":
		if f.CNIC != "" {
			errs.CNIC = GetCNICError(f.CNIC)
		}
	case "provider":
		errs.CNIC = GetCNICError(f.CNIC)
		if len(f.ServiceCategories) == 0 {
			errs.ServiceCategories = msg(MsgCategoriesRequired)
		}
	default:
		errs.Role = msg(MsgRoleInvalid)
	}

	return errs
}

// ========== Login ==========

type LoginForm struct {
	Identifier string // phone number or email
	Password   string
}

type LoginFormErrors struct {
	Identifier *string `json:"identifier,omitempty"`
	Password   *string `json:"password,omitempty"`
}

func (e LoginFormErrors) HasErrors() bool {
	return e.Identifier != nil || e.Password != nil
}

func ValidateLoginForm(f LoginForm) LoginFormErrors {
	var errs LoginFormErrors

	id := strings.TrimSpace(f.Identifier)
	switch {
	case id == "":
		errs.Identifier = msg(MsgIdentifierRequired)
	case strings.Contains(id, "@"):
		errs.Identifier = GetEmailError(id)
	default:
		errs.Identifier = GetPhoneError(FormatPhone(id))
	}
	if f.Password == "" {
		errs.Password = msg(MsgPasswordRequired)
	}

	return errs
}

// ========== Profile ==========

// ProfileForm fields are optional; nil means "leave unchanged".
type ProfileForm struct {
	FullName *string
	Email    *string
	Address  *string
	CNIC     *string
}

type ProfileFormErrors struct {
	FullName *string `json:"full_name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Address  *string `json:"address,omitempty"`
	CNIC     *string `json:"cnic,omitempty"`
}

func (e ProfileFormErrors) HasErrors() bool {
	return e.FullName != nil || e.Email != nil || e.Address != nil || e.CNIC != nil
}

func ValidateProfileForm(f ProfileForm) ProfileFormErrors {
	var errs ProfileFormErrors

	if f.FullName != nil && strings.TrimSpace(*f.FullName) == "" {
		errs.FullName = msg(MsgFullNameRequired)
	}
	if f.Email != nil {
		errs.Email = GetEmailError(*f.Email)
	}
	if f.Address != nil {
		errs.Address = GetAddressError(*f.Address)
	}
	if f.CNIC != nil {
		errs.CNIC = GetCNICError(*f.CNIC)
	}

	return errs
}

// ========== Service request ==========

type RequestForm struct {
	ServiceType string
	Address     string
}

type RequestFormErrors struct {
	ServiceType *string `json:"service_type,omitempty"`
	Address     *string `json:"address,omitempty"`
}

func (e RequestFormErrors) HasErrors() bool {
	return e.ServiceType != nil || e.Address != nil
}

func ValidateRequestForm(f RequestForm, serviceTypes []string) RequestFormErrors {
	var errs RequestFormErrors

	switch {
	case strings.TrimSpace(f.ServiceType) == "":
		errs.ServiceType = msg(MsgServiceTypeRequired)
	case !slices.Contains(serviceTypes, f.ServiceType):
		errs.ServiceType = msg(MsgServiceTypeInvalid)
	}
	errs.Address = GetAddressError(f.Address)

	return errs
}

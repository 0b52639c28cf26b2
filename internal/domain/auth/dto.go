// internal/domain/auth/dto.go
package auth

import "time"

// RegisterRequest is validated field by field by validation.ValidateRegisterForm.
type RegisterRequest struct {
	FullName          string   `json:"full_name"`
	Phone             string   `json:"phone"`
	Email             string   `json:"email"`
	Password          string   `json:"password"`
	ConfirmPassword   string   `json:"confirm_password"`
	Role              string   `json:"role"`
	CNIC              string   `json:"cnic"`
	ServiceCategories []string `json:"service_categories"`
	Device            string   `json:"device"`
	IPAddress         string   `json:"-"`
	UserAgent         string   `json:"-"`
}

// LoginRequest accepts a phone number in any common format or an email.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
	Device     string `json:"device"`
	IPAddress  string `json:"-"`
	UserAgent  string `json:"-"`
}

// LoginResponse successful login response
type LoginResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         Me        `json:"user"`
}

// Me is the signed-in user's identity and profile flattened for clients.
type Me struct {
	IdentityID        int64                  `json:"identity_id"`
	Phone             string                 `json:"phone"`
	Email             string                 `json:"email,omitempty"`
	Role              string                 `json:"role"`
	FullName          string                 `json:"full_name"`
	Address           string                 `json:"address,omitempty"`
	CNIC              string                 `json:"cnic,omitempty"`
	ServiceCategories []string               `json:"service_categories,omitempty"`
	Settings          map[string]interface{} `json:"settings,omitempty"`
}

// ChangePasswordRequest for password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,strongpassword"`
}

// UpdateProfileRequest fields are optional; nil leaves the stored value.
type UpdateProfileRequest struct {
	FullName          *string  `json:"full_name"`
	Email             *string  `json:"email"`
	Address           *string  `json:"address" binding:"omitempty,address"`
	CNIC              *string  `json:"cnic" binding:"omitempty,cnic"`
	ServiceCategories []string `json:"service_categories"`
}

type UpdateSettingsRequest struct {
	Settings map[string]interface{} `json:"settings" binding:"required"`
}

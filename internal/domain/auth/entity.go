// internal/domain/auth/entity.go
package auth

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

const (
	RoleCustomer = "customer"
	RoleProvider = "provider"

	StatusActive    = "active"
	StatusSuspended = "suspended"
)

// Identity is the login identity. Phone is always stored in canonical
// +923XXXXXXXXX form.
type Identity struct {
	ID        int64          `json:"id" db:"id"`
	Phone     string         `json:"phone" db:"phone"`
	Email     sql.NullString `json:"email" db:"email"`
	Role      string         `json:"role" db:"role"`
	Status    string         `json:"status" db:"status"`
	LastLogin sql.NullTime   `json:"last_login" db:"last_login"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`
}

// Credential holds the local password for an identity.
type Credential struct {
	ID                int64        `json:"id" db:"id"`
	IdentityID        int64        `json:"identity_id" db:"identity_id"`
	PasswordHash      string       `json:"-" db:"password_hash"`
	PasswordChangedAt sql.NullTime `json:"-" db:"password_changed_at"`
	CreatedAt         time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at" db:"updated_at"`
}

// Session represents a user session
type Session struct {
	ID             int64          `json:"id" db:"id"`
	IdentityID     int64          `json:"identity_id" db:"identity_id"`
	SessionToken   string         `json:"-" db:"session_token"`
	RefreshToken   sql.NullString `json:"-" db:"refresh_token"`
	IPAddress      sql.NullString `json:"ip_address" db:"ip_address"`
	UserAgent      sql.NullString `json:"user_agent" db:"user_agent"`
	DeviceID       sql.NullString `json:"device_id" db:"device_id"`
	Status         string         `json:"status" db:"status"` // active, revoked
	LoginAt        time.Time      `json:"login_at" db:"login_at"`
	LastActivityAt time.Time      `json:"last_activity_at" db:"last_activity_at"`
	ExpiresAt      time.Time      `json:"expires_at" db:"expires_at"`
	LogoutAt       sql.NullTime   `json:"logout_at" db:"logout_at"`
}

// UserProfile carries the marketplace-facing details of an identity.
// ServiceCategories is only set for providers.
type UserProfile struct {
	ID                int64                  `json:"id" db:"id"`
	IdentityID        int64                  `json:"identity_id" db:"identity_id"`
	FullName          string                 `json:"full_name" db:"full_name"`
	Address           sql.NullString         `json:"address" db:"address"`
	CNIC              sql.NullString         `json:"cnic" db:"cnic"`
	ServiceCategories pq.StringArray         `json:"service_categories" db:"service_categories"`
	Settings          map[string]interface{} `json:"settings" db:"settings"`
	CreatedAt         time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at" db:"updated_at"`
}

// Account is everything written when a user registers.
type Account struct {
	Identity   *Identity
	Credential *Credential
	Profile    *UserProfile
}

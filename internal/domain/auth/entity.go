// internal/domain/auth/entity.go
package auth

import (
	"database/sql"
	"time"
)

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
	RoleDev   = "dev"
)

// User represents the core user record. The public client_id, not the row
// id, is what leaves the service.
type User struct {
	ID           int64          `json:"id" db:"id"`
	ClientID     string         `json:"client_id" db:"client_id"`
	Username     sql.NullString `json:"username" db:"username"`
	Email        sql.NullString `json:"email" db:"email"`
	PhoneNumber  sql.NullString `json:"phone_number" db:"phone_number"`
	PasswordHash sql.NullString `json:"-" db:"password_hash"`
	Role         string         `json:"role" db:"role"` // user, admin, dev
	Blocked      bool           `json:"-" db:"blocked"`
	Deleted      bool           `json:"-" db:"deleted"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at" db:"updated_at"`
}

// Completed reports whether initial account setup has finished. A user is
// complete once a username has been chosen.
func (u *User) Completed() bool {
	return u.Username.Valid && u.Username.String != ""
}

// AuthProvider links a user to an authentication provider (local, google,
// github). Local providers carry no external tokens.
type AuthProvider struct {
	ID           int64          `json:"id" db:"id"`
	UserID       int64          `json:"user_id" db:"user_id"`
	Provider     string         `json:"provider" db:"provider"`
	ProviderID   sql.NullString `json:"provider_id" db:"provider_id"`
	FullName     sql.NullString `json:"full_name" db:"full_name"`
	AccessToken  sql.NullString `json:"-" db:"access_token"`
	RefreshToken sql.NullString `json:"-" db:"refresh_token"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
}

// TfaSecret holds a user's TOTP enrollment. A row exists from registration
// onward; Enabled flips only after the user proves possession with a valid
// code.
type TfaSecret struct {
	UserID        int64     `json:"user_id" db:"user_id"`
	Secret        string    `json:"-" db:"secret"` // base32, no padding
	OtpauthURL    string    `json:"-" db:"otpauth_url"`
	Enabled       bool      `json:"enabled" db:"enabled"`
	Authenticated bool      `json:"authenticated" db:"authenticated"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

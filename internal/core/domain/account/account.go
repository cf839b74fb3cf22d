package account

import (
	"time"

	"github.com/google/uuid"
)

// Account is an identity record. Username is optional; email-first
// deployments may never assign one.
type Account struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Username     *string   `json:"username,omitempty" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// HasUsername reports whether the account carries a non-empty username.
func (a *Account) HasUsername() bool {
	return a.Username != nil && *a.Username != ""
}

// SignupRequest represents the request to register a new account
type SignupRequest struct {
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
	Password string `json:"password"`
}

// LoginRequest represents the request to authenticate
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// AddEmailRequest represents the request to attach an address to an account
type AddEmailRequest struct {
	Address     string `json:"address"`
	MakePrimary bool   `json:"make_primary"`
}

// ChangePasswordRequest represents the request to rotate the account secret
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

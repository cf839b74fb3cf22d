package account

import (
	"time"

	"github.com/google/uuid"
)

// ConfirmationToken is a one-time proof of email ownership. It is valid
// until it expires or is consumed; multiple outstanding tokens per address
// are allowed and any live one validates.
type ConfirmationToken struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	EmailID    uuid.UUID  `json:"email_id" db:"email_id"`
	Token      string     `json:"token" db:"token"`
	IssuedAt   time.Time  `json:"issued_at" db:"issued_at"`
	ExpiresAt  time.Time  `json:"expires_at" db:"expires_at"`
	ConsumedAt *time.Time `json:"consumed_at,omitempty" db:"consumed_at"`
}

// IsExpired checks if the token has passed its TTL at the given instant.
func (t *ConfirmationToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// IsConsumed checks if the token has already been used.
func (t *ConfirmationToken) IsConsumed() bool {
	return t.ConsumedAt != nil
}

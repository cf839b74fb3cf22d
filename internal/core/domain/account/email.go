package account

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EmailAddress associates a normalized address with an account. At most one
// address per account is primary once any exist.
type EmailAddress struct {
	ID        uuid.UUID `json:"id" db:"id"`
	AccountID uuid.UUID `json:"account_id" db:"account_id"`
	Address   string    `json:"address" db:"address"`
	Verified  bool      `json:"verified" db:"verified"`
	Primary   bool      `json:"primary" db:"is_primary"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NormalizeEmail lowercases and trims an address and rejects anything that
// does not parse as a bare RFC 5322 address.
func NormalizeEmail(address string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(address))
	if normalized == "" {
		return "", fmt.Errorf("empty email address")
	}
	parsed, err := mail.ParseAddress(normalized)
	if err != nil {
		return "", fmt.Errorf("invalid email address %q: %w", address, err)
	}
	if parsed.Address != normalized {
		// Reject display-name forms like "Bob <bob@example.com>".
		return "", fmt.Errorf("invalid email address %q", address)
	}
	return normalized, nil
}

// LocalPart returns the part of a normalized address before the @.
func LocalPart(address string) string {
	if i := strings.Index(address, "@"); i > 0 {
		return address[:i]
	}
	return address
}

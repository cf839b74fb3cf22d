package account

import (
	"fmt"
	"time"
)

// UniquenessScope controls whether an email address may belong to more than
// one account. Changing it against an existing database requires the
// matching index migration; it is never flipped at runtime.
type UniquenessScope string

const (
	ScopeGlobal     UniquenessScope = "global"
	ScopePerAccount UniquenessScope = "per_account"
)

func (s UniquenessScope) IsValid() bool {
	return s == ScopeGlobal || s == ScopePerAccount
}

// IdentifierMode selects which identifier a login request is resolved by.
type IdentifierMode string

const (
	IdentifyByUsername IdentifierMode = "username"
	IdentifyByEmail    IdentifierMode = "email"
	IdentifyByEither   IdentifierMode = "either"
)

func (m IdentifierMode) IsValid() bool {
	switch m {
	case IdentifyByUsername, IdentifyByEmail, IdentifyByEither:
		return true
	default:
		return false
	}
}

// Policy carries the identity rules every service honors. It is built once
// at startup from configuration and threaded through constructors.
type Policy struct {
	UniquenessScope      UniquenessScope
	IdentifierMode       IdentifierMode
	ConfirmationRequired bool
	// RequireVerifiedToLogin gates the email login path on a verified
	// address. Only meaningful when ConfirmationRequired is set.
	RequireVerifiedToLogin bool
	TokenTTL               time.Duration
	// UsernameRequired forces every account to carry a username,
	// generating one from the email local-part when absent from signup.
	UsernameRequired bool
	// MaxUsernameAttempts bounds collision retries during generation.
	MaxUsernameAttempts int
	// DeliveryMandatory turns confirmation delivery failures into signup
	// failures instead of warnings.
	DeliveryMandatory bool
	// RollbackOnHookError removes the freshly created account when the
	// after-signup hook fails, instead of tolerating the inconsistency.
	RollbackOnHookError bool
}

// DefaultPolicy mirrors the documented configuration defaults.
func DefaultPolicy() Policy {
	return Policy{
		UniquenessScope:        ScopeGlobal,
		IdentifierMode:         IdentifyByUsername,
		ConfirmationRequired:   true,
		RequireVerifiedToLogin: true,
		TokenTTL:               24 * time.Hour,
		UsernameRequired:       true,
		MaxUsernameAttempts:    10,
	}
}

// Validate rejects policies with unknown enum values or a non-positive TTL.
func (p Policy) Validate() error {
	if !p.UniquenessScope.IsValid() {
		return fmt.Errorf("invalid uniqueness scope %q", p.UniquenessScope)
	}
	if !p.IdentifierMode.IsValid() {
		return fmt.Errorf("invalid identifier mode %q", p.IdentifierMode)
	}
	if p.TokenTTL <= 0 {
		return fmt.Errorf("token TTL must be positive, got %s", p.TokenTTL)
	}
	if p.MaxUsernameAttempts <= 0 {
		return fmt.Errorf("max username attempts must be positive, got %d", p.MaxUsernameAttempts)
	}
	return nil
}

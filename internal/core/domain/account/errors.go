package account

import "errors"

// Error kinds surfaced by the identity core. Callers match with errors.Is;
// services wrap them with context via fmt.Errorf and %w.
var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrDuplicateEmail    = errors.New("email address already in use")
	ErrDuplicateUsername = errors.New("username already taken")
	ErrEmailNotFound     = errors.New("email address not found")
	ErrEmailNotVerified  = errors.New("email address not verified")
	ErrInvalidCredential = errors.New("invalid credentials")

	// Email management
	ErrNotVerified             = errors.New("address must be verified before becoming primary")
	ErrCannotRemoveLastPrimary = errors.New("cannot remove the primary address while others remain")

	// Confirmation tokens
	ErrTokenNotFound = errors.New("confirmation token not found")
	ErrTokenExpired  = errors.New("confirmation token expired")
	ErrTokenConsumed = errors.New("confirmation token already used")

	// Signup
	ErrUsernameGenerationFailed = errors.New("could not generate a unique username")
	ErrDeliveryFailed           = errors.New("confirmation delivery failed")
)

package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/lumenops/identity/internal/core/domain/account"
)

// AccountRepository defines the interface for account data operations
type AccountRepository interface {
	Create(ctx context.Context, acct *account.Account) error
	// CreateWithEmail inserts the account and its first email address in a
	// single transaction so a uniqueness violation leaves no orphan account.
	CreateWithEmail(ctx context.Context, acct *account.Account, email *account.EmailAddress) error
	GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error)
	GetByUsername(ctx context.Context, username string) (*account.Account, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	Update(ctx context.Context, acct *account.Account) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SignupService orchestrates account registration.
type SignupService interface {
	Signup(ctx context.Context, req *account.SignupRequest) (*account.Account, error)
	ResendConfirmation(ctx context.Context, address string) error
	ChangePassword(ctx context.Context, accountID uuid.UUID, oldPassword, newPassword string) error
}

// Authenticator resolves submitted credentials to exactly one account.
type Authenticator interface {
	Authenticate(ctx context.Context, identifier, secret string) (*account.Account, error)
}

// DisplayResolver maps an account to a human-readable label.
type DisplayResolver interface {
	Resolve(ctx context.Context, acct *account.Account) string
}

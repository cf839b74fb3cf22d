package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/lumenops/identity/internal/core/domain/account"
)

// EmailRepository defines the interface for email address data operations.
// Implementations must back Create with a unique index matching the
// configured uniqueness scope so concurrent inserts cannot both succeed.
type EmailRepository interface {
	Create(ctx context.Context, email *account.EmailAddress) error
	GetByID(ctx context.Context, id uuid.UUID) (*account.EmailAddress, error)
	// GetByAddress returns any record for the normalized address. Under
	// per-account scope more than one may exist; verified records win.
	GetByAddress(ctx context.Context, address string) (*account.EmailAddress, error)
	// ListByAddress returns every record for the normalized address, oldest
	// first. Under global scope at most one row matches.
	ListByAddress(ctx context.Context, address string) ([]*account.EmailAddress, error)
	GetForAccount(ctx context.Context, accountID uuid.UUID, address string) (*account.EmailAddress, error)
	GetPrimary(ctx context.Context, accountID uuid.UUID) (*account.EmailAddress, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*account.EmailAddress, error)
	ListVerifiedOwners(ctx context.Context, address string) ([]uuid.UUID, error)
	ExistsGlobal(ctx context.Context, address string) (bool, error)
	ExistsForAccount(ctx context.Context, accountID uuid.UUID, address string) (bool, error)
	Update(ctx context.Context, email *account.EmailAddress) error
	// SetPrimary atomically demotes the current primary and promotes the
	// given record.
	SetPrimary(ctx context.Context, accountID, emailID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByAccount(ctx context.Context, accountID uuid.UUID) (int, error)
}

// EmailService defines the business logic over an account's addresses.
type EmailService interface {
	Add(ctx context.Context, accountID uuid.UUID, address string, makePrimary bool) (*account.EmailAddress, error)
	SetPrimary(ctx context.Context, accountID uuid.UUID, address string) error
	Remove(ctx context.Context, accountID uuid.UUID, address string) error
	IsUniqueViolation(ctx context.Context, accountID uuid.UUID, address string) (bool, error)
	GetPrimary(ctx context.Context, accountID uuid.UUID) (*account.EmailAddress, error)
	GetByAddress(ctx context.Context, address string) (*account.EmailAddress, error)
	ListByAddress(ctx context.Context, address string) ([]*account.EmailAddress, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*account.EmailAddress, error)
	AccountsForEmail(ctx context.Context, address string) ([]uuid.UUID, error)
}

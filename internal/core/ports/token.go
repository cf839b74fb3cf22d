package ports

import (
	"context"
	"time"

	"github.com/lumenops/identity/internal/core/domain/account"
)

// TokenRepository handles confirmation token persistence. Implementations
// may use Postgres or an ephemeral store such as Redis.
type TokenRepository interface {
	Create(ctx context.Context, token *account.ConfirmationToken) error
	Get(ctx context.Context, tokenString string) (*account.ConfirmationToken, error)
	// Consume marks the token used exactly once. Two concurrent calls on
	// the same live token must not both succeed: the loser gets
	// account.ErrTokenConsumed. Expired tokens fail account.ErrTokenExpired.
	Consume(ctx context.Context, tokenString string, now time.Time) (*account.ConfirmationToken, error)
	// DeleteExpired removes unconsumed tokens past their TTL and reports
	// how many were dropped. Stores that expire keys natively return 0.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// TokenService defines the confirmation token lifecycle.
type TokenService interface {
	Issue(ctx context.Context, email *account.EmailAddress) (*account.ConfirmationToken, error)
	// Validate consumes the token, marks its address verified and promotes
	// it to primary when the account has none.
	Validate(ctx context.Context, tokenString string) (*account.EmailAddress, error)
	ExpireSweep(ctx context.Context, now time.Time) (int, error)
}

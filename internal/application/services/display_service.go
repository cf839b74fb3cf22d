package services

import (
	"context"
	"fmt"

	"github.com/lumenops/identity/internal/core/domain/account"
	"github.com/lumenops/identity/internal/core/ports"
)

// DisplayFunc maps an account to a human-readable label.
type DisplayFunc func(ctx context.Context, acct *account.Account) string

// DisplayService resolves a display label for an account. Pure lookup, no
// side effects; safe on any account state including mid-signup.
type DisplayService struct {
	emails  ports.EmailRepository
	resolve DisplayFunc
}

// DisplayOption customizes a DisplayService.
type DisplayOption func(*DisplayService)

// WithDisplayFunc overrides the default username/email/opaque-ID chain.
func WithDisplayFunc(fn DisplayFunc) DisplayOption {
	return func(s *DisplayService) { s.resolve = fn }
}

func NewDisplayService(emails ports.EmailRepository, opts ...DisplayOption) ports.DisplayResolver {
	s := &DisplayService{emails: emails}
	s.resolve = s.defaultResolve
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *DisplayService) Resolve(ctx context.Context, acct *account.Account) string {
	return s.resolve(ctx, acct)
}

// defaultResolve prefers the username, then the primary verified email,
// then an opaque identifier derived from the account ID.
func (s *DisplayService) defaultResolve(ctx context.Context, acct *account.Account) string {
	if acct.HasUsername() {
		return *acct.Username
	}
	if primary, err := s.emails.GetPrimary(ctx, acct.ID); err == nil && primary.Verified {
		return primary.Address
	}
	return fmt.Sprintf("user-%.8s", acct.ID.String())
}

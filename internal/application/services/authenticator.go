package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/lumenops/identity/internal/core/domain/account"
	"github.com/lumenops/identity/internal/core/ports"
)

// Authenticator resolves submitted credentials to exactly one account,
// honoring the configured identifier mode. It is stateless across calls.
type Authenticator struct {
	accounts ports.AccountRepository
	emails   ports.EmailRepository
	creds    ports.CredentialStore
	policy   account.Policy
	logger   *logrus.Logger
}

func NewAuthenticator(accounts ports.AccountRepository, emails ports.EmailRepository, creds ports.CredentialStore, policy account.Policy, logger *logrus.Logger) ports.Authenticator {
	return &Authenticator{
		accounts: accounts,
		emails:   emails,
		creds:    creds,
		policy:   policy,
		logger:   logger,
	}
}

func (s *Authenticator) Authenticate(ctx context.Context, identifier, secret string) (*account.Account, error) {
	var (
		acct *account.Account
		err  error
	)

	switch s.policy.IdentifierMode {
	case account.IdentifyByUsername:
		acct, err = s.byUsername(ctx, identifier)
	case account.IdentifyByEmail:
		acct, err = s.byEmail(ctx, identifier)
	case account.IdentifyByEither:
		acct, err = s.byUsername(ctx, identifier)
		// Fall back to the email path only when no username matched.
		// Any other failure surfaces directly so the outcome does not
		// leak whether the identifier exists as username or email.
		if errors.Is(err, account.ErrAccountNotFound) {
			acct, err = s.byEmail(ctx, identifier)
		}
	default:
		return nil, fmt.Errorf("unknown identifier mode %q", s.policy.IdentifierMode)
	}
	if err != nil {
		return nil, err
	}

	if err := s.creds.Verify(ctx, acct.ID, secret); err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"account_id": acct.ID}).Debug("credential mismatch")
		}
		return nil, fmt.Errorf("authenticate: %w", account.ErrInvalidCredential)
	}

	return acct, nil
}

func (s *Authenticator) byUsername(ctx context.Context, identifier string) (*account.Account, error) {
	return s.accounts.GetByUsername(ctx, identifier)
}

func (s *Authenticator) byEmail(ctx context.Context, identifier string) (*account.Account, error) {
	normalized, err := account.NormalizeEmail(identifier)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", account.ErrAccountNotFound)
	}

	email, err := s.emails.GetByAddress(ctx, normalized)
	if err != nil {
		if errors.Is(err, account.ErrEmailNotFound) {
			return nil, fmt.Errorf("authenticate: %w", account.ErrAccountNotFound)
		}
		return nil, err
	}

	if s.policy.ConfirmationRequired && s.policy.RequireVerifiedToLogin && !email.Verified {
		return nil, fmt.Errorf("authenticate %s: %w", normalized, account.ErrEmailNotVerified)
	}

	return s.accounts.GetByID(ctx, email.AccountID)
}

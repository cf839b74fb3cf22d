package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lumenops/identity/internal/core/domain/account"
	"github.com/lumenops/identity/internal/core/ports"
)

// EmailService enforces the uniqueness and single-primary invariants over
// an account's addresses. The configured scope is fixed at construction;
// swapping it on live data requires the matching index migration.
type EmailService struct {
	repo   ports.EmailRepository
	policy account.Policy
	logger *logrus.Logger
}

func NewEmailService(repo ports.EmailRepository, policy account.Policy, logger *logrus.Logger) ports.EmailService {
	return &EmailService{
		repo:   repo,
		policy: policy,
		logger: logger,
	}
}

// Add attaches a normalized address to the account. The pre-check turns
// most duplicates into a clean error; the storage unique index settles
// concurrent races, so a constraint failure surfaces as ErrDuplicateEmail
// as well.
func (s *EmailService) Add(ctx context.Context, accountID uuid.UUID, address string, makePrimary bool) (*account.EmailAddress, error) {
	normalized, err := account.NormalizeEmail(address)
	if err != nil {
		return nil, err
	}

	taken, err := s.IsUniqueViolation(ctx, accountID, normalized)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("add %s: %w", normalized, account.ErrDuplicateEmail)
	}

	email := &account.EmailAddress{
		ID:        uuid.New(),
		AccountID: accountID,
		Address:   normalized,
		Verified:  false,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	// A fresh address only becomes primary when the account has none yet.
	// Promoting over an existing primary goes through SetPrimary, which
	// gates on verification.
	if makePrimary {
		if _, err := s.repo.GetPrimary(ctx, accountID); err != nil {
			if errors.Is(err, account.ErrEmailNotFound) {
				email.Primary = true
			} else {
				return nil, err
			}
		}
	}

	if err := s.repo.Create(ctx, email); err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"account_id": accountID,
			"address":    normalized,
			"primary":    email.Primary,
		}).Info("email address added")
	}

	return email, nil
}

// SetPrimary promotes an existing address, demoting the current primary in
// the same transaction. Unverified addresses are refused while confirmation
// is required.
func (s *EmailService) SetPrimary(ctx context.Context, accountID uuid.UUID, address string) error {
	normalized, err := account.NormalizeEmail(address)
	if err != nil {
		return err
	}

	email, err := s.repo.GetForAccount(ctx, accountID, normalized)
	if err != nil {
		return err
	}

	if s.policy.ConfirmationRequired && !email.Verified {
		return fmt.Errorf("set primary %s: %w", normalized, account.ErrNotVerified)
	}

	return s.repo.SetPrimary(ctx, accountID, email.ID)
}

// Remove deletes an address. The primary cannot be removed while the
// account keeps other addresses; removing the only address is allowed.
func (s *EmailService) Remove(ctx context.Context, accountID uuid.UUID, address string) error {
	normalized, err := account.NormalizeEmail(address)
	if err != nil {
		return err
	}

	email, err := s.repo.GetForAccount(ctx, accountID, normalized)
	if err != nil {
		return err
	}

	if email.Primary {
		count, err := s.repo.CountByAccount(ctx, accountID)
		if err != nil {
			return err
		}
		if count > 1 {
			return fmt.Errorf("remove %s: %w", normalized, account.ErrCannotRemoveLastPrimary)
		}
	}

	if err := s.repo.Delete(ctx, email.ID); err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"account_id": accountID, "address": normalized}).Info("email address removed")
	}

	return nil
}

// IsUniqueViolation reports whether inserting the address for the account
// would violate the configured uniqueness scope. The address must already
// be normalized.
func (s *EmailService) IsUniqueViolation(ctx context.Context, accountID uuid.UUID, address string) (bool, error) {
	switch s.policy.UniquenessScope {
	case account.ScopePerAccount:
		return s.repo.ExistsForAccount(ctx, accountID, address)
	default:
		return s.repo.ExistsGlobal(ctx, address)
	}
}

func (s *EmailService) GetPrimary(ctx context.Context, accountID uuid.UUID) (*account.EmailAddress, error) {
	return s.repo.GetPrimary(ctx, accountID)
}

func (s *EmailService) GetByAddress(ctx context.Context, address string) (*account.EmailAddress, error) {
	normalized, err := account.NormalizeEmail(address)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByAddress(ctx, normalized)
}

func (s *EmailService) ListByAddress(ctx context.Context, address string) ([]*account.EmailAddress, error) {
	normalized, err := account.NormalizeEmail(address)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByAddress(ctx, normalized)
}

func (s *EmailService) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*account.EmailAddress, error) {
	return s.repo.ListByAccount(ctx, accountID)
}

// AccountsForEmail returns the accounts that verified ownership of the
// address. Under global scope the slice has at most one element.
func (s *EmailService) AccountsForEmail(ctx context.Context, address string) ([]uuid.UUID, error) {
	normalized, err := account.NormalizeEmail(address)
	if err != nil {
		return nil, err
	}
	return s.repo.ListVerifiedOwners(ctx, normalized)
}

package credentials

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/lumenops/identity/internal/core/domain/account"
	"github.com/lumenops/identity/internal/core/ports"
)

// BcryptStore keeps bcrypt hashes on the account record. The identity core
// only ever sees the SetSecret/Verify surface.
type BcryptStore struct {
	accounts ports.AccountRepository
	cost     int
	logger   *logrus.Logger
}

func NewBcryptStore(accounts ports.AccountRepository, logger *logrus.Logger) ports.CredentialStore {
	return &BcryptStore{
		accounts: accounts,
		cost:     bcrypt.DefaultCost,
		logger:   logger,
	}
}

func (s *BcryptStore) SetSecret(ctx context.Context, accountID uuid.UUID, secret string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), s.cost)
	if err != nil {
		return fmt.Errorf("failed to hash secret: %w", err)
	}

	acct, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}

	acct.PasswordHash = string(hash)
	acct.UpdatedAt = time.Now()
	if err := s.accounts.Update(ctx, acct); err != nil {
		return fmt.Errorf("failed to store secret: %w", err)
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"account_id": accountID}).Info("credential updated")
	}

	return nil
}

func (s *BcryptStore) Verify(ctx context.Context, accountID uuid.UUID, secret string) error {
	acct, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(secret)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return account.ErrInvalidCredential
		}
		return fmt.Errorf("failed to compare secret: %w", err)
	}

	return nil
}

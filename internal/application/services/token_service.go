package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lumenops/identity/internal/core/domain/account"
	"github.com/lumenops/identity/internal/core/ports"
)

// TokenService issues and validates confirmation tokens. Validation is
// side-effecting exactly once: the repository consume is atomic, so a
// replayed token fails with ErrTokenConsumed in any interleaving.
type TokenService struct {
	tokens ports.TokenRepository
	emails ports.EmailRepository
	policy account.Policy
	logger *logrus.Logger
}

func NewTokenService(tokens ports.TokenRepository, emails ports.EmailRepository, policy account.Policy, logger *logrus.Logger) ports.TokenService {
	return &TokenService{
		tokens: tokens,
		emails: emails,
		policy: policy,
		logger: logger,
	}
}

// generateToken generates a secure random token string
func generateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// Issue creates and persists a fresh token for the address. Outstanding
// tokens for the same address stay valid until consumed or expired.
func (s *TokenService) Issue(ctx context.Context, email *account.EmailAddress) (*account.ConfirmationToken, error) {
	tokenStr, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	now := time.Now()
	token := &account.ConfirmationToken{
		ID:        uuid.New(),
		EmailID:   email.ID,
		Token:     tokenStr,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.policy.TokenTTL),
	}

	if err := s.tokens.Create(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to save confirmation token: %w", err)
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"email_id":   email.ID,
			"address":    email.Address,
			"expires_at": token.ExpiresAt,
		}).Info("confirmation token issued")
	}

	return token, nil
}

// Validate consumes the token and marks its address verified. If the owning
// account has no primary address yet, the freshly verified one is promoted.
func (s *TokenService) Validate(ctx context.Context, tokenString string) (*account.EmailAddress, error) {
	token, err := s.tokens.Consume(ctx, tokenString, time.Now())
	if err != nil {
		return nil, err
	}

	email, err := s.emails.GetByID(ctx, token.EmailID)
	if err != nil {
		return nil, fmt.Errorf("failed to load address for token: %w", err)
	}

	email.Verified = true
	email.UpdatedAt = time.Now()
	if err := s.emails.Update(ctx, email); err != nil {
		return nil, fmt.Errorf("failed to mark address verified: %w", err)
	}

	if !email.Primary {
		if _, err := s.emails.GetPrimary(ctx, email.AccountID); err != nil {
			if !errors.Is(err, account.ErrEmailNotFound) {
				return nil, err
			}
			if err := s.emails.SetPrimary(ctx, email.AccountID, email.ID); err != nil {
				return nil, err
			}
			email.Primary = true
		}
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"account_id": email.AccountID,
			"address":    email.Address,
		}).Info("email address verified")
	}

	return email, nil
}

// ExpireSweep drops unconsumed tokens past their TTL. Idempotent; an empty
// sweep returns 0 without error.
func (s *TokenService) ExpireSweep(ctx context.Context, now time.Time) (int, error) {
	count, err := s.tokens.DeleteExpired(ctx, now)
	if err != nil {
		return 0, err
	}
	if count > 0 && s.logger != nil {
		s.logger.WithFields(logrus.Fields{"count": count}).Info("expired confirmation tokens swept")
	}
	return count, nil
}

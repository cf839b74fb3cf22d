package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lumenops/identity/internal/core/domain/account"
	"github.com/lumenops/identity/internal/core/ports"
	"github.com/lumenops/identity/internal/utils"
)

// UsernameGenerator produces a username candidate for the given attempt.
// Attempt 0 is the preferred name; later attempts must vary it to dodge
// collisions.
type UsernameGenerator func(ctx context.Context, req *account.SignupRequest, attempt int) (string, error)

// AfterSignupHook runs side effects once the account is committed.
type AfterSignupHook func(ctx context.Context, acct *account.Account, req *account.SignupRequest) error

// SignupOption customizes a SignupService.
type SignupOption func(*SignupService)

// WithUsernameGenerator replaces the default local-part generator.
func WithUsernameGenerator(gen UsernameGenerator) SignupOption {
	return func(s *SignupService) { s.generateUsername = gen }
}

// WithAfterSignup installs a post-registration hook.
func WithAfterSignup(hook AfterSignupHook) SignupOption {
	return func(s *SignupService) { s.afterSignup = hook }
}

// SignupService coordinates account registration: identifier assignment,
// initial email creation, confirmation issuance and post-signup hooks.
type SignupService struct {
	accounts ports.AccountRepository
	emails   ports.EmailService
	tokens   ports.TokenService
	creds    ports.CredentialStore
	delivery ports.DeliveryService
	policy   account.Policy
	logger   *logrus.Logger

	generateUsername UsernameGenerator
	afterSignup      AfterSignupHook
}

func NewSignupService(accounts ports.AccountRepository, emails ports.EmailService, tokens ports.TokenService, creds ports.CredentialStore, delivery ports.DeliveryService, policy account.Policy, logger *logrus.Logger, opts ...SignupOption) ports.SignupService {
	s := &SignupService{
		accounts:         accounts,
		emails:           emails,
		tokens:           tokens,
		creds:            creds,
		delivery:         delivery,
		policy:           policy,
		logger:           logger,
		generateUsername: DefaultUsernameGenerator,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var usernameSanitizer = regexp.MustCompile(`[^a-z0-9._-]+`)

// DefaultUsernameGenerator derives a username from the email local-part,
// appending a numeric suffix on collision retries.
func DefaultUsernameGenerator(ctx context.Context, req *account.SignupRequest, attempt int) (string, error) {
	base := usernameSanitizer.ReplaceAllString(strings.ToLower(account.LocalPart(req.Email)), "")
	if base == "" {
		base = "user"
	}
	if attempt == 0 {
		return base, nil
	}
	return fmt.Sprintf("%s-%d", base, attempt+1), nil
}

func (s *SignupService) Signup(ctx context.Context, req *account.SignupRequest) (*account.Account, error) {
	normalized, err := account.NormalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}

	if err := utils.ValidatePasswordStrength(req.Password); err != nil {
		return nil, err
	}

	newAccount := &account.Account{
		ID:        uuid.New(),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	username, err := s.resolveUsername(ctx, req)
	if err != nil {
		return nil, err
	}
	if username != "" {
		newAccount.Username = &username
	}

	// Pre-check for a clean duplicate error; the unique index inside
	// CreateWithEmail settles concurrent signups with the same address.
	taken, err := s.emails.IsUniqueViolation(ctx, newAccount.ID, normalized)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("signup %s: %w", normalized, account.ErrDuplicateEmail)
	}

	email := &account.EmailAddress{
		ID:        uuid.New(),
		AccountID: newAccount.ID,
		Address:   normalized,
		Verified:  false,
		Primary:   true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	// Account and first address are committed together; a duplicate
	// address rolls the whole signup back, never leaving an orphan
	// account behind.
	if err := s.accounts.CreateWithEmail(ctx, newAccount, email); err != nil {
		return nil, err
	}

	if err := s.creds.SetSecret(ctx, newAccount.ID, req.Password); err != nil {
		s.rollback(ctx, newAccount, "failed to set credential")
		return nil, fmt.Errorf("failed to set credential: %w", err)
	}

	if s.policy.ConfirmationRequired {
		if err := s.sendConfirmation(ctx, email); err != nil {
			if s.policy.DeliveryMandatory {
				s.rollback(ctx, newAccount, "confirmation delivery failed")
				return nil, err
			}
			if s.logger != nil {
				s.logger.WithFields(logrus.Fields{
					"account_id": newAccount.ID,
					"address":    email.Address,
				}).WithError(err).Warn("failed to deliver confirmation; signup continues")
			}
		}
	}

	if s.afterSignup != nil {
		if err := s.afterSignup(ctx, newAccount, req); err != nil {
			if s.policy.RollbackOnHookError {
				s.rollback(ctx, newAccount, "after-signup hook failed")
				return nil, fmt.Errorf("after-signup hook: %w", err)
			}
			if s.logger != nil {
				s.logger.WithFields(logrus.Fields{"account_id": newAccount.ID}).WithError(err).Error("after-signup hook failed; account kept")
			}
		}
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"account_id": newAccount.ID,
			"address":    email.Address,
			"username":   username,
		}).Info("account registered")
	}

	return newAccount, nil
}

// resolveUsername validates a submitted username or generates one when the
// policy demands it. Generation retries with varied candidates a bounded
// number of times before giving up.
func (s *SignupService) resolveUsername(ctx context.Context, req *account.SignupRequest) (string, error) {
	if req.Username != "" {
		exists, err := s.accounts.UsernameExists(ctx, req.Username)
		if err != nil {
			return "", err
		}
		if exists {
			return "", fmt.Errorf("signup %s: %w", req.Username, account.ErrDuplicateUsername)
		}
		return req.Username, nil
	}

	if !s.policy.UsernameRequired {
		return "", nil
	}

	for attempt := 0; attempt < s.policy.MaxUsernameAttempts; attempt++ {
		candidate, err := s.generateUsername(ctx, req, attempt)
		if err != nil {
			return "", fmt.Errorf("%w: %v", account.ErrUsernameGenerationFailed, err)
		}
		exists, err := s.accounts.UsernameExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("signup %s: %w", req.Email, account.ErrUsernameGenerationFailed)
}

func (s *SignupService) sendConfirmation(ctx context.Context, email *account.EmailAddress) error {
	token, err := s.tokens.Issue(ctx, email)
	if err != nil {
		return err
	}
	if s.delivery == nil {
		return nil
	}
	if err := s.delivery.SendConfirmation(ctx, email.Address, token.Token); err != nil {
		return fmt.Errorf("%w: %v", account.ErrDeliveryFailed, err)
	}
	return nil
}

// rollback removes a freshly created account after a post-commit step
// failed. A failed rollback is logged; the sweep of such remnants is an
// operational concern.
func (s *SignupService) rollback(ctx context.Context, acct *account.Account, reason string) {
	if err := s.accounts.Delete(ctx, acct.ID); err != nil && s.logger != nil {
		s.logger.WithFields(logrus.Fields{"account_id": acct.ID, "reason": reason}).WithError(err).Error("failed to roll back account")
	}
}

// ResendConfirmation issues a fresh token for every unverified record of
// the address. Under per-account scope several accounts may hold the same
// address; a verified copy on one account must not block the others.
// Earlier tokens stay valid until consumed or expired.
func (s *SignupService) ResendConfirmation(ctx context.Context, address string) error {
	emails, err := s.emails.ListByAddress(ctx, address)
	if err != nil {
		return err
	}
	if len(emails) == 0 {
		return fmt.Errorf("resend for %s: %w", address, account.ErrEmailNotFound)
	}

	sent := 0
	for _, email := range emails {
		if email.Verified {
			continue
		}
		if err := s.sendConfirmation(ctx, email); err != nil {
			return err
		}
		sent++
	}
	if sent == 0 {
		return fmt.Errorf("resend for %s: address already verified", address)
	}
	return nil
}

func (s *SignupService) ChangePassword(ctx context.Context, accountID uuid.UUID, oldPassword, newPassword string) error {
	if err := s.creds.Verify(ctx, accountID, oldPassword); err != nil {
		return fmt.Errorf("change password: %w", account.ErrInvalidCredential)
	}
	if err := utils.ValidatePasswordStrength(newPassword); err != nil {
		return err
	}
	return s.creds.SetSecret(ctx, accountID, newPassword)
}

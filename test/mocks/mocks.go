package mocks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lumenops/identity/internal/core/domain/account"
)

// AccountRepositoryMock is a lightweight mock for AccountRepository
type AccountRepositoryMock struct {
	CreateFn          func(ctx context.Context, acct *account.Account) error
	CreateWithEmailFn func(ctx context.Context, acct *account.Account, email *account.EmailAddress) error
	GetByIDFn         func(ctx context.Context, id uuid.UUID) (*account.Account, error)
	GetByUsernameFn   func(ctx context.Context, username string) (*account.Account, error)
	UsernameExistsFn  func(ctx context.Context, username string) (bool, error)
	UpdateFn          func(ctx context.Context, acct *account.Account) error
	DeleteFn          func(ctx context.Context, id uuid.UUID) error
}

func (m *AccountRepositoryMock) Create(ctx context.Context, acct *account.Account) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, acct)
	}
	return nil
}
func (m *AccountRepositoryMock) CreateWithEmail(ctx context.Context, acct *account.Account, email *account.EmailAddress) error {
	if m.CreateWithEmailFn != nil {
		return m.CreateWithEmailFn(ctx, acct, email)
	}
	return nil
}
func (m *AccountRepositoryMock) GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, account.ErrAccountNotFound
}
func (m *AccountRepositoryMock) GetByUsername(ctx context.Context, username string) (*account.Account, error) {
	if m.GetByUsernameFn != nil {
		return m.GetByUsernameFn(ctx, username)
	}
	return nil, account.ErrAccountNotFound
}
func (m *AccountRepositoryMock) UsernameExists(ctx context.Context, username string) (bool, error) {
	if m.UsernameExistsFn != nil {
		return m.UsernameExistsFn(ctx, username)
	}
	return false, nil
}
func (m *AccountRepositoryMock) Update(ctx context.Context, acct *account.Account) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, acct)
	}
	return nil
}
func (m *AccountRepositoryMock) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

// EmailRepositoryMock is a lightweight mock for EmailRepository
type EmailRepositoryMock struct {
	CreateFn             func(ctx context.Context, email *account.EmailAddress) error
	GetByIDFn            func(ctx context.Context, id uuid.UUID) (*account.EmailAddress, error)
	GetByAddressFn       func(ctx context.Context, address string) (*account.EmailAddress, error)
	ListByAddressFn      func(ctx context.Context, address string) ([]*account.EmailAddress, error)
	GetForAccountFn      func(ctx context.Context, accountID uuid.UUID, address string) (*account.EmailAddress, error)
	GetPrimaryFn         func(ctx context.Context, accountID uuid.UUID) (*account.EmailAddress, error)
	ListByAccountFn      func(ctx context.Context, accountID uuid.UUID) ([]*account.EmailAddress, error)
	ListVerifiedOwnersFn func(ctx context.Context, address string) ([]uuid.UUID, error)
	ExistsGlobalFn       func(ctx context.Context, address string) (bool, error)
	ExistsForAccountFn   func(ctx context.Context, accountID uuid.UUID, address string) (bool, error)
	UpdateFn             func(ctx context.Context, email *account.EmailAddress) error
	SetPrimaryFn         func(ctx context.Context, accountID, emailID uuid.UUID) error
	DeleteFn             func(ctx context.Context, id uuid.UUID) error
	CountByAccountFn     func(ctx context.Context, accountID uuid.UUID) (int, error)
}

func (m *EmailRepositoryMock) Create(ctx context.Context, email *account.EmailAddress) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, email)
	}
	return nil
}
func (m *EmailRepositoryMock) GetByID(ctx context.Context, id uuid.UUID) (*account.EmailAddress, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, account.ErrEmailNotFound
}
func (m *EmailRepositoryMock) GetByAddress(ctx context.Context, address string) (*account.EmailAddress, error) {
	if m.GetByAddressFn != nil {
		return m.GetByAddressFn(ctx, address)
	}
	return nil, account.ErrEmailNotFound
}
func (m *EmailRepositoryMock) ListByAddress(ctx context.Context, address string) ([]*account.EmailAddress, error) {
	if m.ListByAddressFn != nil {
		return m.ListByAddressFn(ctx, address)
	}
	return nil, nil
}
func (m *EmailRepositoryMock) GetForAccount(ctx context.Context, accountID uuid.UUID, address string) (*account.EmailAddress, error) {
	if m.GetForAccountFn != nil {
		return m.GetForAccountFn(ctx, accountID, address)
	}
	return nil, account.ErrEmailNotFound
}
func (m *EmailRepositoryMock) GetPrimary(ctx context.Context, accountID uuid.UUID) (*account.EmailAddress, error) {
	if m.GetPrimaryFn != nil {
		return m.GetPrimaryFn(ctx, accountID)
	}
	return nil, account.ErrEmailNotFound
}
func (m *EmailRepositoryMock) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*account.EmailAddress, error) {
	if m.ListByAccountFn != nil {
		return m.ListByAccountFn(ctx, accountID)
	}
	return nil, nil
}
func (m *EmailRepositoryMock) ListVerifiedOwners(ctx context.Context, address string) ([]uuid.UUID, error) {
	if m.ListVerifiedOwnersFn != nil {
		return m.ListVerifiedOwnersFn(ctx, address)
	}
	return nil, nil
}
func (m *EmailRepositoryMock) ExistsGlobal(ctx context.Context, address string) (bool, error) {
	if m.ExistsGlobalFn != nil {
		return m.ExistsGlobalFn(ctx, address)
	}
	return false, nil
}
func (m *EmailRepositoryMock) ExistsForAccount(ctx context.Context, accountID uuid.UUID, address string) (bool, error) {
	if m.ExistsForAccountFn != nil {
		return m.ExistsForAccountFn(ctx, accountID, address)
	}
	return false, nil
}
func (m *EmailRepositoryMock) Update(ctx context.Context, email *account.EmailAddress) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, email)
	}
	return nil
}
func (m *EmailRepositoryMock) SetPrimary(ctx context.Context, accountID, emailID uuid.UUID) error {
	if m.SetPrimaryFn != nil {
		return m.SetPrimaryFn(ctx, accountID, emailID)
	}
	return nil
}
func (m *EmailRepositoryMock) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}
func (m *EmailRepositoryMock) CountByAccount(ctx context.Context, accountID uuid.UUID) (int, error) {
	if m.CountByAccountFn != nil {
		return m.CountByAccountFn(ctx, accountID)
	}
	return 0, nil
}

// TokenRepositoryMock is a lightweight mock for TokenRepository
type TokenRepositoryMock struct {
	CreateFn        func(ctx context.Context, token *account.ConfirmationToken) error
	GetFn           func(ctx context.Context, tokenString string) (*account.ConfirmationToken, error)
	ConsumeFn       func(ctx context.Context, tokenString string, now time.Time) (*account.ConfirmationToken, error)
	DeleteExpiredFn func(ctx context.Context, now time.Time) (int, error)
}

func (m *TokenRepositoryMock) Create(ctx context.Context, token *account.ConfirmationToken) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, token)
	}
	return nil
}
func (m *TokenRepositoryMock) Get(ctx context.Context, tokenString string) (*account.ConfirmationToken, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, tokenString)
	}
	return nil, account.ErrTokenNotFound
}
func (m *TokenRepositoryMock) Consume(ctx context.Context, tokenString string, now time.Time) (*account.ConfirmationToken, error) {
	if m.ConsumeFn != nil {
		return m.ConsumeFn(ctx, tokenString, now)
	}
	return nil, account.ErrTokenNotFound
}
func (m *TokenRepositoryMock) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	if m.DeleteExpiredFn != nil {
		return m.DeleteExpiredFn(ctx, now)
	}
	return 0, nil
}

// CredentialStoreMock is a lightweight mock for CredentialStore
type CredentialStoreMock struct {
	SetSecretFn func(ctx context.Context, accountID uuid.UUID, secret string) error
	VerifyFn    func(ctx context.Context, accountID uuid.UUID, secret string) error
}

func (m *CredentialStoreMock) SetSecret(ctx context.Context, accountID uuid.UUID, secret string) error {
	if m.SetSecretFn != nil {
		return m.SetSecretFn(ctx, accountID, secret)
	}
	return nil
}
func (m *CredentialStoreMock) Verify(ctx context.Context, accountID uuid.UUID, secret string) error {
	if m.VerifyFn != nil {
		return m.VerifyFn(ctx, accountID, secret)
	}
	return fmt.Errorf("verify: %w", account.ErrInvalidCredential)
}

// DeliveryServiceMock is a lightweight mock for DeliveryService
type DeliveryServiceMock struct {
	SendConfirmationFn func(ctx context.Context, address, token string) error
	Sent               []string
}

func (m *DeliveryServiceMock) SendConfirmation(ctx context.Context, address, token string) error {
	m.Sent = append(m.Sent, address)
	if m.SendConfirmationFn != nil {
		return m.SendConfirmationFn(ctx, address, token)
	}
	return nil
}

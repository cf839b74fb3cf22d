package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lumenops/identity/internal/core/domain/account"
)

// SignupServiceMock is a lightweight mock for SignupService
type SignupServiceMock struct {
	SignupFn             func(ctx context.Context, req *account.SignupRequest) (*account.Account, error)
	ResendConfirmationFn func(ctx context.Context, address string) error
	ChangePasswordFn     func(ctx context.Context, accountID uuid.UUID, oldPassword, newPassword string) error
}

func (m *SignupServiceMock) Signup(ctx context.Context, req *account.SignupRequest) (*account.Account, error) {
	if m.SignupFn != nil {
		return m.SignupFn(ctx, req)
	}
	return &account.Account{ID: uuid.New()}, nil
}
func (m *SignupServiceMock) ResendConfirmation(ctx context.Context, address string) error {
	if m.ResendConfirmationFn != nil {
		return m.ResendConfirmationFn(ctx, address)
	}
	return nil
}
func (m *SignupServiceMock) ChangePassword(ctx context.Context, accountID uuid.UUID, oldPassword, newPassword string) error {
	if m.ChangePasswordFn != nil {
		return m.ChangePasswordFn(ctx, accountID, oldPassword, newPassword)
	}
	return nil
}

// AuthenticatorMock is a lightweight mock for Authenticator
type AuthenticatorMock struct {
	AuthenticateFn func(ctx context.Context, identifier, secret string) (*account.Account, error)
}

func (m *AuthenticatorMock) Authenticate(ctx context.Context, identifier, secret string) (*account.Account, error) {
	if m.AuthenticateFn != nil {
		return m.AuthenticateFn(ctx, identifier, secret)
	}
	return nil, account.ErrInvalidCredential
}

// EmailServiceMock is a lightweight mock for EmailService
type EmailServiceMock struct {
	AddFn               func(ctx context.Context, accountID uuid.UUID, address string, makePrimary bool) (*account.EmailAddress, error)
	SetPrimaryFn        func(ctx context.Context, accountID uuid.UUID, address string) error
	RemoveFn            func(ctx context.Context, accountID uuid.UUID, address string) error
	IsUniqueViolationFn func(ctx context.Context, accountID uuid.UUID, address string) (bool, error)
	GetPrimaryFn        func(ctx context.Context, accountID uuid.UUID) (*account.EmailAddress, error)
	GetByAddressFn      func(ctx context.Context, address string) (*account.EmailAddress, error)
	ListByAddressFn     func(ctx context.Context, address string) ([]*account.EmailAddress, error)
	ListByAccountFn     func(ctx context.Context, accountID uuid.UUID) ([]*account.EmailAddress, error)
	AccountsForEmailFn  func(ctx context.Context, address string) ([]uuid.UUID, error)
}

func (m *EmailServiceMock) Add(ctx context.Context, accountID uuid.UUID, address string, makePrimary bool) (*account.EmailAddress, error) {
	if m.AddFn != nil {
		return m.AddFn(ctx, accountID, address, makePrimary)
	}
	return &account.EmailAddress{ID: uuid.New(), AccountID: accountID, Address: address, Primary: makePrimary}, nil
}
func (m *EmailServiceMock) SetPrimary(ctx context.Context, accountID uuid.UUID, address string) error {
	if m.SetPrimaryFn != nil {
		return m.SetPrimaryFn(ctx, accountID, address)
	}
	return nil
}
func (m *EmailServiceMock) Remove(ctx context.Context, accountID uuid.UUID, address string) error {
	if m.RemoveFn != nil {
		return m.RemoveFn(ctx, accountID, address)
	}
	return nil
}
func (m *EmailServiceMock) IsUniqueViolation(ctx context.Context, accountID uuid.UUID, address string) (bool, error) {
	if m.IsUniqueViolationFn != nil {
		return m.IsUniqueViolationFn(ctx, accountID, address)
	}
	return false, nil
}
func (m *EmailServiceMock) GetPrimary(ctx context.Context, accountID uuid.UUID) (*account.EmailAddress, error) {
	if m.GetPrimaryFn != nil {
		return m.GetPrimaryFn(ctx, accountID)
	}
	return nil, account.ErrEmailNotFound
}
func (m *EmailServiceMock) GetByAddress(ctx context.Context, address string) (*account.EmailAddress, error) {
	if m.GetByAddressFn != nil {
		return m.GetByAddressFn(ctx, address)
	}
	return nil, account.ErrEmailNotFound
}
func (m *EmailServiceMock) ListByAddress(ctx context.Context, address string) ([]*account.EmailAddress, error) {
	if m.ListByAddressFn != nil {
		return m.ListByAddressFn(ctx, address)
	}
	return nil, nil
}
func (m *EmailServiceMock) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*account.EmailAddress, error) {
	if m.ListByAccountFn != nil {
		return m.ListByAccountFn(ctx, accountID)
	}
	return nil, nil
}
func (m *EmailServiceMock) AccountsForEmail(ctx context.Context, address string) ([]uuid.UUID, error) {
	if m.AccountsForEmailFn != nil {
		return m.AccountsForEmailFn(ctx, address)
	}
	return nil, nil
}

// TokenServiceMock is a lightweight mock for TokenService
type TokenServiceMock struct {
	IssueFn       func(ctx context.Context, email *account.EmailAddress) (*account.ConfirmationToken, error)
	ValidateFn    func(ctx context.Context, tokenString string) (*account.EmailAddress, error)
	ExpireSweepFn func(ctx context.Context, now time.Time) (int, error)
}

func (m *TokenServiceMock) Issue(ctx context.Context, email *account.EmailAddress) (*account.ConfirmationToken, error) {
	if m.IssueFn != nil {
		return m.IssueFn(ctx, email)
	}
	return &account.ConfirmationToken{ID: uuid.New(), EmailID: email.ID, Token: "tok"}, nil
}
func (m *TokenServiceMock) Validate(ctx context.Context, tokenString string) (*account.EmailAddress, error) {
	if m.ValidateFn != nil {
		return m.ValidateFn(ctx, tokenString)
	}
	return nil, account.ErrTokenNotFound
}
func (m *TokenServiceMock) ExpireSweep(ctx context.Context, now time.Time) (int, error) {
	if m.ExpireSweepFn != nil {
		return m.ExpireSweepFn(ctx, now)
	}
	return 0, nil
}

// DisplayResolverMock is a lightweight mock for DisplayResolver
type DisplayResolverMock struct {
	ResolveFn func(ctx context.Context, acct *account.Account) string
}

func (m *DisplayResolverMock) Resolve(ctx context.Context, acct *account.Account) string {
	if m.ResolveFn != nil {
		return m.ResolveFn(ctx, acct)
	}
	return "user"
}

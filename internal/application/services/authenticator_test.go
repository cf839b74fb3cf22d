package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	impl "github.com/lumenops/identity/internal/application/services"
	"github.com/lumenops/identity/internal/core/domain/account"
	tmocks "github.com/lumenops/identity/test/mocks"
)

func policyWithMode(mode account.IdentifierMode) account.Policy {
	p := account.DefaultPolicy()
	p.IdentifierMode = mode
	return p
}

func acceptingCreds(accountID uuid.UUID, secret string) *tmocks.CredentialStoreMock {
	return &tmocks.CredentialStoreMock{
		VerifyFn: func(ctx context.Context, id uuid.UUID, s string) error {
			if id == accountID && s == secret {
				return nil
			}
			return account.ErrInvalidCredential
		},
	}
}

func TestAuthenticate_UsernameMode(t *testing.T) {
	username := "alice"
	acct := &account.Account{ID: uuid.New(), Username: &username}
	accounts := &tmocks.AccountRepositoryMock{
		GetByUsernameFn: func(ctx context.Context, name string) (*account.Account, error) {
			if name == username {
				return acct, nil
			}
			return nil, account.ErrAccountNotFound
		},
	}
	svc := impl.NewAuthenticator(accounts, &tmocks.EmailRepositoryMock{}, acceptingCreds(acct.ID, "s3cret"), policyWithMode(account.IdentifyByUsername), nil)

	got, err := svc.Authenticate(context.Background(), "alice", "s3cret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != acct.ID {
		t.Error("resolved wrong account")
	}

	if _, err := svc.Authenticate(context.Background(), "nobody", "s3cret"); !errors.Is(err, account.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "alice", "wrong"); !errors.Is(err, account.ErrInvalidCredential) {
		t.Errorf("expected ErrInvalidCredential, got %v", err)
	}
}

func TestAuthenticate_EmailModeUnverified(t *testing.T) {
	acct := &account.Account{ID: uuid.New()}
	emails := &tmocks.EmailRepositoryMock{
		GetByAddressFn: func(ctx context.Context, address string) (*account.EmailAddress, error) {
			return &account.EmailAddress{AccountID: acct.ID, Address: address, Verified: false}, nil
		},
	}
	svc := impl.NewAuthenticator(&tmocks.AccountRepositoryMock{}, emails, acceptingCreds(acct.ID, "s3cret"), policyWithMode(account.IdentifyByEmail), nil)

	_, err := svc.Authenticate(context.Background(), "alice@example.com", "s3cret")
	if !errors.Is(err, account.ErrEmailNotVerified) {
		t.Fatalf("expected ErrEmailNotVerified, got %v", err)
	}
}

func TestAuthenticate_EmailModeVerified(t *testing.T) {
	acct := &account.Account{ID: uuid.New()}
	accounts := &tmocks.AccountRepositoryMock{
		GetByIDFn: func(ctx context.Context, id uuid.UUID) (*account.Account, error) {
			if id == acct.ID {
				return acct, nil
			}
			return nil, account.ErrAccountNotFound
		},
	}
	emails := &tmocks.EmailRepositoryMock{
		GetByAddressFn: func(ctx context.Context, address string) (*account.EmailAddress, error) {
			if address == "alice@example.com" {
				return &account.EmailAddress{AccountID: acct.ID, Address: address, Verified: true}, nil
			}
			return nil, account.ErrEmailNotFound
		},
	}
	svc := impl.NewAuthenticator(accounts, emails, acceptingCreds(acct.ID, "s3cret"), policyWithMode(account.IdentifyByEmail), nil)

	// Identifier is normalized before lookup.
	got, err := svc.Authenticate(context.Background(), "Alice@Example.COM", "s3cret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != acct.ID {
		t.Error("resolved wrong account")
	}
}

func TestAuthenticate_EitherFallsBackToEmail(t *testing.T) {
	acct := &account.Account{ID: uuid.New()}
	accounts := &tmocks.AccountRepositoryMock{
		GetByIDFn: func(ctx context.Context, id uuid.UUID) (*account.Account, error) { return acct, nil },
	}
	emails := &tmocks.EmailRepositoryMock{
		GetByAddressFn: func(ctx context.Context, address string) (*account.EmailAddress, error) {
			return &account.EmailAddress{AccountID: acct.ID, Address: address, Verified: true}, nil
		},
	}
	svc := impl.NewAuthenticator(accounts, emails, acceptingCreds(acct.ID, "s3cret"), policyWithMode(account.IdentifyByEither), nil)

	got, err := svc.Authenticate(context.Background(), "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != acct.ID {
		t.Error("resolved wrong account")
	}
}

func TestAuthenticate_EitherDoesNotFallBackOnOtherFailures(t *testing.T) {
	username := "alice"
	acct := &account.Account{ID: uuid.New(), Username: &username}
	accounts := &tmocks.AccountRepositoryMock{
		GetByUsernameFn: func(ctx context.Context, name string) (*account.Account, error) { return acct, nil },
	}
	emailLookups := 0
	emails := &tmocks.EmailRepositoryMock{
		GetByAddressFn: func(ctx context.Context, address string) (*account.EmailAddress, error) {
			emailLookups++
			return nil, account.ErrEmailNotFound
		},
	}
	creds := &tmocks.CredentialStoreMock{
		VerifyFn: func(ctx context.Context, id uuid.UUID, s string) error { return account.ErrInvalidCredential },
	}
	svc := impl.NewAuthenticator(accounts, emails, creds, policyWithMode(account.IdentifyByEither), nil)

	_, err := svc.Authenticate(context.Background(), "alice", "wrong")
	if !errors.Is(err, account.ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential, got %v", err)
	}
	if emailLookups != 0 {
		t.Error("a credential mismatch must not trigger the email fallback")
	}
}

func TestAuthenticate_EmailModeUnknownAddressIsAccountNotFound(t *testing.T) {
	svc := impl.NewAuthenticator(&tmocks.AccountRepositoryMock{}, &tmocks.EmailRepositoryMock{}, &tmocks.CredentialStoreMock{}, policyWithMode(account.IdentifyByEmail), nil)

	_, err := svc.Authenticate(context.Background(), "ghost@example.com", "s3cret")
	if !errors.Is(err, account.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

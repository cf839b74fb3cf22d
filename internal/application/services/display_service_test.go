package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	impl "github.com/lumenops/identity/internal/application/services"
	"github.com/lumenops/identity/internal/core/domain/account"
	tmocks "github.com/lumenops/identity/test/mocks"
)

func TestResolve_PrefersUsername(t *testing.T) {
	username := "alice"
	svc := impl.NewDisplayService(&tmocks.EmailRepositoryMock{})

	got := svc.Resolve(context.Background(), &account.Account{ID: uuid.New(), Username: &username})
	if got != "alice" {
		t.Errorf("expected username, got %q", got)
	}
}

func TestResolve_FallsBackToVerifiedPrimaryEmail(t *testing.T) {
	emails := &tmocks.EmailRepositoryMock{
		GetPrimaryFn: func(ctx context.Context, accountID uuid.UUID) (*account.EmailAddress, error) {
			return &account.EmailAddress{AccountID: accountID, Address: "alice@example.com", Verified: true, Primary: true}, nil
		},
	}
	svc := impl.NewDisplayService(emails)

	got := svc.Resolve(context.Background(), &account.Account{ID: uuid.New()})
	if got != "alice@example.com" {
		t.Errorf("expected primary address, got %q", got)
	}
}

func TestResolve_UnverifiedPrimaryIsNotShown(t *testing.T) {
	emails := &tmocks.EmailRepositoryMock{
		GetPrimaryFn: func(ctx context.Context, accountID uuid.UUID) (*account.EmailAddress, error) {
			return &account.EmailAddress{AccountID: accountID, Address: "alice@example.com", Verified: false, Primary: true}, nil
		},
	}
	svc := impl.NewDisplayService(emails)

	acct := &account.Account{ID: uuid.New()}
	got := svc.Resolve(context.Background(), acct)
	if !strings.HasPrefix(got, "user-") {
		t.Errorf("expected opaque label, got %q", got)
	}
	if strings.Contains(got, "@") {
		t.Errorf("label must not leak the address, got %q", got)
	}
}

func TestResolve_OpaqueLabelIsStable(t *testing.T) {
	svc := impl.NewDisplayService(&tmocks.EmailRepositoryMock{})

	acct := &account.Account{ID: uuid.New()}
	first := svc.Resolve(context.Background(), acct)
	second := svc.Resolve(context.Background(), acct)
	if first != second {
		t.Errorf("label changed between calls: %q vs %q", first, second)
	}
	if len(first) != len("user-")+8 {
		t.Errorf("unexpected label shape %q", first)
	}
}

func TestResolve_CustomFunc(t *testing.T) {
	svc := impl.NewDisplayService(&tmocks.EmailRepositoryMock{}, impl.WithDisplayFunc(
		func(ctx context.Context, acct *account.Account) string {
			return "anonymous"
		}))

	username := "alice"
	got := svc.Resolve(context.Background(), &account.Account{ID: uuid.New(), Username: &username})
	if got != "anonymous" {
		t.Errorf("expected override, got %q", got)
	}
}

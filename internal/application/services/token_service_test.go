package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	impl "github.com/lumenops/identity/internal/application/services"
	"github.com/lumenops/identity/internal/core/domain/account"
	tmocks "github.com/lumenops/identity/test/mocks"
)

func TestIssue_SetsTTLAndPersists(t *testing.T) {
	var stored *account.ConfirmationToken
	repo := &tmocks.TokenRepositoryMock{
		CreateFn: func(ctx context.Context, tok *account.ConfirmationToken) error {
			stored = tok
			return nil
		},
	}
	policy := account.DefaultPolicy()
	policy.TokenTTL = 2 * time.Hour
	svc := impl.NewTokenService(repo, &tmocks.EmailRepositoryMock{}, policy, nil)

	email := &account.EmailAddress{ID: uuid.New(), AccountID: uuid.New(), Address: "alice@example.com"}
	tok, err := svc.Issue(context.Background(), email)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, email.ID, tok.EmailID)
	require.Len(t, tok.Token, 64) // 32 random bytes, hex encoded
	require.WithinDuration(t, tok.IssuedAt.Add(2*time.Hour), tok.ExpiresAt, time.Second)
}

func TestIssue_TokensAreUnique(t *testing.T) {
	repo := &tmocks.TokenRepositoryMock{}
	svc := impl.NewTokenService(repo, &tmocks.EmailRepositoryMock{}, account.DefaultPolicy(), nil)
	email := &account.EmailAddress{ID: uuid.New()}

	a, err := svc.Issue(context.Background(), email)
	require.NoError(t, err)
	b, err := svc.Issue(context.Background(), email)
	require.NoError(t, err)
	require.NotEqual(t, a.Token, b.Token)
}

func TestValidate_MarksVerifiedAndPromotes(t *testing.T) {
	accountID := uuid.New()
	emailID := uuid.New()
	now := time.Now()

	var updated *account.EmailAddress
	var promoted uuid.UUID
	emails := &tmocks.EmailRepositoryMock{
		GetByIDFn: func(ctx context.Context, id uuid.UUID) (*account.EmailAddress, error) {
			return &account.EmailAddress{ID: emailID, AccountID: accountID, Address: "alice@example.com"}, nil
		},
		UpdateFn: func(ctx context.Context, e *account.EmailAddress) error {
			updated = e
			return nil
		},
		// No primary exists yet.
		SetPrimaryFn: func(ctx context.Context, aid, eid uuid.UUID) error {
			promoted = eid
			return nil
		},
	}
	tokens := &tmocks.TokenRepositoryMock{
		ConsumeFn: func(ctx context.Context, tokenString string, at time.Time) (*account.ConfirmationToken, error) {
			return &account.ConfirmationToken{ID: uuid.New(), EmailID: emailID, Token: tokenString, ConsumedAt: &now}, nil
		},
	}
	svc := impl.NewTokenService(tokens, emails, account.DefaultPolicy(), nil)

	email, err := svc.Validate(context.Background(), "sometoken")
	require.NoError(t, err)
	require.True(t, email.Verified)
	require.True(t, email.Primary)
	require.NotNil(t, updated)
	require.True(t, updated.Verified)
	require.Equal(t, emailID, promoted)
}

func TestValidate_KeepsExistingPrimary(t *testing.T) {
	accountID := uuid.New()
	emailID := uuid.New()

	emails := &tmocks.EmailRepositoryMock{
		GetByIDFn: func(ctx context.Context, id uuid.UUID) (*account.EmailAddress, error) {
			return &account.EmailAddress{ID: emailID, AccountID: accountID, Address: "second@example.com"}, nil
		},
		GetPrimaryFn: func(ctx context.Context, id uuid.UUID) (*account.EmailAddress, error) {
			return &account.EmailAddress{ID: uuid.New(), AccountID: id, Address: "first@example.com", Primary: true}, nil
		},
		SetPrimaryFn: func(ctx context.Context, aid, eid uuid.UUID) error {
			t.Fatal("must not displace the existing primary")
			return nil
		},
	}
	tokens := &tmocks.TokenRepositoryMock{
		ConsumeFn: func(ctx context.Context, tokenString string, at time.Time) (*account.ConfirmationToken, error) {
			return &account.ConfirmationToken{ID: uuid.New(), EmailID: emailID, Token: tokenString}, nil
		},
	}
	svc := impl.NewTokenService(tokens, emails, account.DefaultPolicy(), nil)

	email, err := svc.Validate(context.Background(), "sometoken")
	require.NoError(t, err)
	require.True(t, email.Verified)
	require.False(t, email.Primary)
}

func TestValidate_ErrorKindsPassThrough(t *testing.T) {
	for _, kind := range []error{account.ErrTokenNotFound, account.ErrTokenExpired, account.ErrTokenConsumed} {
		tokens := &tmocks.TokenRepositoryMock{
			ConsumeFn: func(ctx context.Context, tokenString string, at time.Time) (*account.ConfirmationToken, error) {
				return nil, kind
			},
		}
		svc := impl.NewTokenService(tokens, &tmocks.EmailRepositoryMock{}, account.DefaultPolicy(), nil)

		_, err := svc.Validate(context.Background(), "t")
		if !errors.Is(err, kind) {
			t.Errorf("expected %v, got %v", kind, err)
		}
	}
}

// tokenStoreFake keeps tokens in memory with the same consume semantics as
// the database store: one conditional state change wins, the loser is
// classified as consumed or expired.
type tokenStoreFake struct {
	mu     sync.Mutex
	tokens map[string]*account.ConfirmationToken
}

func newTokenStoreFake() *tokenStoreFake {
	return &tokenStoreFake{tokens: make(map[string]*account.ConfirmationToken)}
}

func (f *tokenStoreFake) Create(ctx context.Context, tok *account.ConfirmationToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *tok
	f.tokens[tok.Token] = &copied
	return nil
}

func (f *tokenStoreFake) Get(ctx context.Context, tokenString string) (*account.ConfirmationToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tok, ok := f.tokens[tokenString]
	if !ok {
		return nil, account.ErrTokenNotFound
	}
	copied := *tok
	return &copied, nil
}

func (f *tokenStoreFake) Consume(ctx context.Context, tokenString string, now time.Time) (*account.ConfirmationToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tok, ok := f.tokens[tokenString]
	if !ok {
		return nil, account.ErrTokenNotFound
	}
	if tok.IsConsumed() {
		return nil, account.ErrTokenConsumed
	}
	if tok.IsExpired(now) {
		return nil, account.ErrTokenExpired
	}
	tok.ConsumedAt = &now
	copied := *tok
	return &copied, nil
}

func (f *tokenStoreFake) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for key, tok := range f.tokens {
		if !tok.IsConsumed() && tok.IsExpired(now) {
			delete(f.tokens, key)
			count++
		}
	}
	return count, nil
}

// verifiableEmails is an email repo mock whose account already has a
// primary, so Validate only flips the verified flag.
func verifiableEmails(emailID, accountID uuid.UUID) *tmocks.EmailRepositoryMock {
	return &tmocks.EmailRepositoryMock{
		GetByIDFn: func(ctx context.Context, id uuid.UUID) (*account.EmailAddress, error) {
			return &account.EmailAddress{ID: emailID, AccountID: accountID, Address: "alice@example.com"}, nil
		},
		GetPrimaryFn: func(ctx context.Context, id uuid.UUID) (*account.EmailAddress, error) {
			return &account.EmailAddress{ID: uuid.New(), AccountID: id, Address: "first@example.com", Primary: true}, nil
		},
	}
}

func TestValidate_TokenIsSingleUse(t *testing.T) {
	store := newTokenStoreFake()
	emailID := uuid.New()
	svc := impl.NewTokenService(store, verifiableEmails(emailID, uuid.New()), account.DefaultPolicy(), nil)

	tok, err := svc.Issue(context.Background(), &account.EmailAddress{ID: emailID})
	require.NoError(t, err)

	email, err := svc.Validate(context.Background(), tok.Token)
	require.NoError(t, err)
	require.True(t, email.Verified)

	_, err = svc.Validate(context.Background(), tok.Token)
	require.ErrorIs(t, err, account.ErrTokenConsumed)
}

func TestValidate_ExpiredTokenFails(t *testing.T) {
	store := newTokenStoreFake()
	emailID := uuid.New()
	emails := verifiableEmails(emailID, uuid.New())
	emails.UpdateFn = func(ctx context.Context, e *account.EmailAddress) error {
		t.Fatal("an expired token must not verify the address")
		return nil
	}
	svc := impl.NewTokenService(store, emails, account.DefaultPolicy(), nil)

	issued := time.Now().Add(-48 * time.Hour)
	require.NoError(t, store.Create(context.Background(), &account.ConfirmationToken{
		ID:        uuid.New(),
		EmailID:   emailID,
		Token:     "stale",
		IssuedAt:  issued,
		ExpiresAt: issued.Add(24 * time.Hour),
	}))

	_, err := svc.Validate(context.Background(), "stale")
	require.ErrorIs(t, err, account.ErrTokenExpired)

	// Never consumed, so the sweep picks it up.
	count, err := svc.ExpireSweep(context.Background(), time.Now())
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestExpireSweep_ReturnsCount(t *testing.T) {
	tokens := &tmocks.TokenRepositoryMock{
		DeleteExpiredFn: func(ctx context.Context, now time.Time) (int, error) { return 3, nil },
	}
	svc := impl.NewTokenService(tokens, &tmocks.EmailRepositoryMock{}, account.DefaultPolicy(), nil)

	count, err := svc.ExpireSweep(context.Background(), time.Now())
	require.NoError(t, err)
	require.Equal(t, 3, count)
}

func TestExpireSweep_EmptyIsNotAnError(t *testing.T) {
	svc := impl.NewTokenService(&tmocks.TokenRepositoryMock{}, &tmocks.EmailRepositoryMock{}, account.DefaultPolicy(), nil)

	count, err := svc.ExpireSweep(context.Background(), time.Now())
	require.NoError(t, err)
	require.Zero(t, count)
}

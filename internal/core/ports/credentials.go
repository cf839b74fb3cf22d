package ports

import (
	"context"

	"github.com/google/uuid"
)

// CredentialStore owns secret material. The identity core never inspects
// secrets beyond passing them through to these calls.
type CredentialStore interface {
	SetSecret(ctx context.Context, accountID uuid.UUID, secret string) error
	// Verify returns account.ErrInvalidCredential on mismatch.
	Verify(ctx context.Context, accountID uuid.UUID, secret string) error
}

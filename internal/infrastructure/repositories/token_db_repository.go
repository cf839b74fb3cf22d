package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lumenops/identity/internal/core/domain/account"
	"github.com/lumenops/identity/internal/core/ports"
	"github.com/lumenops/identity/internal/infrastructure/db"
)

// TokenDBRepository stores confirmation tokens in Postgres. Consumption is
// a single conditional UPDATE, so concurrent validations of the same token
// cannot both succeed.
type TokenDBRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

// NewTokenDBRepository creates a new Postgres-backed token repository
func NewTokenDBRepository(database *db.Database, logger *logrus.Logger) ports.TokenRepository {
	return &TokenDBRepository{db: database, logger: logger}
}

func (r *TokenDBRepository) Create(ctx context.Context, t *account.ConfirmationToken) error {
	query := `
		INSERT INTO confirmation_tokens (id, email_id, token, issued_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.DB.ExecContext(ctx, query, t.ID, t.EmailID, t.Token, t.IssuedAt, t.ExpiresAt)
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"email_id": t.EmailID}).WithError(err).Error("db: failed to store confirmation token")
		}
		return fmt.Errorf("failed to store confirmation token: %w", err)
	}

	return nil
}

func (r *TokenDBRepository) Get(ctx context.Context, tokenString string) (*account.ConfirmationToken, error) {
	var t account.ConfirmationToken
	query := `
		SELECT id, email_id, token, issued_at, expires_at, consumed_at
		FROM confirmation_tokens
		WHERE token = $1`

	if err := r.db.DB.GetContext(ctx, &t, query, tokenString); err != nil {
		if err == sql.ErrNoRows {
			return nil, account.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get confirmation token: %w", err)
	}

	return &t, nil
}

// Consume flips consumed_at exactly once. The WHERE clause is the whole
// concurrency story: only one of two racing calls matches the unconsumed
// row. When no row matches, a follow-up read distinguishes the error kind.
func (r *TokenDBRepository) Consume(ctx context.Context, tokenString string, now time.Time) (*account.ConfirmationToken, error) {
	var t account.ConfirmationToken
	query := `
		UPDATE confirmation_tokens
		SET consumed_at = $2
		WHERE token = $1 AND consumed_at IS NULL AND expires_at > $2
		RETURNING id, email_id, token, issued_at, expires_at, consumed_at`

	err := r.db.DB.GetContext(ctx, &t, query, tokenString, now)
	if err == nil {
		return &t, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to consume confirmation token: %w", err)
	}

	existing, err := r.Get(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	if existing.IsConsumed() {
		return nil, account.ErrTokenConsumed
	}
	return nil, account.ErrTokenExpired
}

func (r *TokenDBRepository) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	query := `DELETE FROM confirmation_tokens WHERE consumed_at IS NULL AND expires_at <= $1`

	result, err := r.db.DB.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rowsAffected), nil
}

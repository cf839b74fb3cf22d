package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/lumenops/identity/internal/core/domain/account"
	"github.com/lumenops/identity/internal/core/ports"
	"github.com/lumenops/identity/internal/infrastructure/db"
)

// AccountRepository implements the account repository interface
type AccountRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(database *db.Database, logger *logrus.Logger) ports.AccountRepository {
	return &AccountRepository{
		db:     database,
		logger: logger,
	}
}

const uniqueViolation = "23505"

// mapConstraintError translates unique-index failures into domain errors so
// callers never see raw pq errors for the races the indexes settle.
func mapConstraintError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		if strings.Contains(pqErr.Constraint, "email") {
			return fmt.Errorf("%w: %v", account.ErrDuplicateEmail, err)
		}
		if strings.Contains(pqErr.Constraint, "username") {
			return fmt.Errorf("%w: %v", account.ErrDuplicateUsername, err)
		}
	}
	return err
}

// Create creates a new account
func (r *AccountRepository) Create(ctx context.Context, a *account.Account) error {
	query := `
		INSERT INTO accounts (id, username, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.DB.ExecContext(ctx, query, a.ID, a.Username, a.PasswordHash, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"account_id": a.ID}).WithError(err).Error("db: failed to create account")
		}
		return mapConstraintError(err)
	}
	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{"account_id": a.ID}).Info("db: account created")
	}

	return nil
}

// CreateWithEmail inserts the account and its first address in one
// transaction. A unique-index hit on either row rolls both back.
func (r *AccountRepository) CreateWithEmail(ctx context.Context, a *account.Account, e *account.EmailAddress) error {
	tx, err := r.db.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin signup transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	accountQuery := `
		INSERT INTO accounts (id, username, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := tx.ExecContext(ctx, accountQuery, a.ID, a.Username, a.PasswordHash, a.CreatedAt, a.UpdatedAt); err != nil {
		return mapConstraintError(err)
	}

	emailQuery := `
		INSERT INTO email_addresses (id, account_id, address, verified, is_primary, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := tx.ExecContext(ctx, emailQuery, e.ID, e.AccountID, e.Address, e.Verified, e.Primary, e.CreatedAt, e.UpdatedAt); err != nil {
		return mapConstraintError(err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit signup transaction: %w", err)
	}

	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{"account_id": a.ID, "address": e.Address}).Info("db: account created with primary address")
	}

	return nil
}

// GetByID retrieves an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	var a account.Account
	query := `
		SELECT id, username, password_hash, created_at, updated_at
		FROM accounts
		WHERE id = $1`

	err := r.db.DB.GetContext(ctx, &a, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("account %s: %w", id, account.ErrAccountNotFound)
		}
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"account_id": id}).WithError(err).Error("db: failed to get account by ID")
		}
		return nil, fmt.Errorf("failed to get account by ID: %w", err)
	}

	return &a, nil
}

// GetByUsername retrieves an account by exact username
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*account.Account, error) {
	var a account.Account
	query := `
		SELECT id, username, password_hash, created_at, updated_at
		FROM accounts
		WHERE username = $1`

	err := r.db.DB.GetContext(ctx, &a, query, username)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("account %q: %w", username, account.ErrAccountNotFound)
		}
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"username": username}).WithError(err).Error("db: failed to get account by username")
		}
		return nil, fmt.Errorf("failed to get account by username: %w", err)
	}

	return &a, nil
}

// UsernameExists reports whether a username is already assigned.
func (r *AccountRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM accounts WHERE username = $1`

	if err := r.db.DB.GetContext(ctx, &count, query, username); err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}

	return count > 0, nil
}

// Update updates an existing account
func (r *AccountRepository) Update(ctx context.Context, a *account.Account) error {
	query := `
		UPDATE accounts
		SET username = $2, password_hash = $3, updated_at = $4
		WHERE id = $1`

	result, err := r.db.DB.ExecContext(ctx, query, a.ID, a.Username, a.PasswordHash, a.UpdatedAt)
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"account_id": a.ID}).WithError(err).Error("db: failed to update account")
		}
		return mapConstraintError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("account %s: %w", a.ID, account.ErrAccountNotFound)
	}

	return nil
}

// Delete deletes an account by ID. Email addresses and tokens go with it
// via ON DELETE CASCADE.
func (r *AccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM accounts WHERE id = $1`

	result, err := r.db.DB.ExecContext(ctx, query, id)
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"account_id": id}).WithError(err).Error("db: failed to delete account")
		}
		return fmt.Errorf("failed to delete account: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("account %s: %w", id, account.ErrAccountNotFound)
	}

	return nil
}

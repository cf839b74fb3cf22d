package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lumenops/identity/internal/core/domain/account"
	"github.com/lumenops/identity/internal/core/ports"
	"github.com/lumenops/identity/internal/infrastructure/db"
)

// EmailRepository implements the email address repository interface.
// The uniqueness scope is backed by a partial unique index; see the
// migrations for the global and per-account variants.
type EmailRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

// NewEmailRepository creates a new email address repository
func NewEmailRepository(database *db.Database, logger *logrus.Logger) ports.EmailRepository {
	return &EmailRepository{
		db:     database,
		logger: logger,
	}
}

const emailColumns = `id, account_id, address, verified, is_primary, created_at, updated_at`

// Create inserts a new email address row
func (r *EmailRepository) Create(ctx context.Context, e *account.EmailAddress) error {
	query := `
		INSERT INTO email_addresses (id, account_id, address, verified, is_primary, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.DB.ExecContext(ctx, query, e.ID, e.AccountID, e.Address, e.Verified, e.Primary, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"account_id": e.AccountID, "address": e.Address}).WithError(err).Error("db: failed to create email address")
		}
		return mapConstraintError(err)
	}

	return nil
}

func (r *EmailRepository) GetByID(ctx context.Context, id uuid.UUID) (*account.EmailAddress, error) {
	var e account.EmailAddress
	query := fmt.Sprintf(`SELECT %s FROM email_addresses WHERE id = $1`, emailColumns)

	if err := r.db.DB.GetContext(ctx, &e, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("email %s: %w", id, account.ErrEmailNotFound)
		}
		return nil, fmt.Errorf("failed to get email by ID: %w", err)
	}

	return &e, nil
}

// GetByAddress returns a record for the normalized address. Under
// per-account scope more than one row may match; verified rows are
// preferred, then the oldest.
func (r *EmailRepository) GetByAddress(ctx context.Context, address string) (*account.EmailAddress, error) {
	var e account.EmailAddress
	query := fmt.Sprintf(`
		SELECT %s FROM email_addresses
		WHERE address = $1
		ORDER BY verified DESC, created_at ASC
		LIMIT 1`, emailColumns)

	if err := r.db.DB.GetContext(ctx, &e, query, address); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("email %s: %w", address, account.ErrEmailNotFound)
		}
		return nil, fmt.Errorf("failed to get email by address: %w", err)
	}

	return &e, nil
}

func (r *EmailRepository) ListByAddress(ctx context.Context, address string) ([]*account.EmailAddress, error) {
	var emails []*account.EmailAddress
	query := fmt.Sprintf(`SELECT %s FROM email_addresses WHERE address = $1 ORDER BY created_at ASC`, emailColumns)

	if err := r.db.DB.SelectContext(ctx, &emails, query, address); err != nil {
		return nil, fmt.Errorf("failed to list emails by address: %w", err)
	}

	return emails, nil
}

func (r *EmailRepository) GetForAccount(ctx context.Context, accountID uuid.UUID, address string) (*account.EmailAddress, error) {
	var e account.EmailAddress
	query := fmt.Sprintf(`SELECT %s FROM email_addresses WHERE account_id = $1 AND address = $2`, emailColumns)

	if err := r.db.DB.GetContext(ctx, &e, query, accountID, address); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("email %s: %w", address, account.ErrEmailNotFound)
		}
		return nil, fmt.Errorf("failed to get email for account: %w", err)
	}

	return &e, nil
}

func (r *EmailRepository) GetPrimary(ctx context.Context, accountID uuid.UUID) (*account.EmailAddress, error) {
	var e account.EmailAddress
	query := fmt.Sprintf(`SELECT %s FROM email_addresses WHERE account_id = $1 AND is_primary`, emailColumns)

	if err := r.db.DB.GetContext(ctx, &e, query, accountID); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("primary for %s: %w", accountID, account.ErrEmailNotFound)
		}
		return nil, fmt.Errorf("failed to get primary email: %w", err)
	}

	return &e, nil
}

func (r *EmailRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*account.EmailAddress, error) {
	var emails []*account.EmailAddress
	query := fmt.Sprintf(`SELECT %s FROM email_addresses WHERE account_id = $1 ORDER BY created_at ASC`, emailColumns)

	if err := r.db.DB.SelectContext(ctx, &emails, query, accountID); err != nil {
		return nil, fmt.Errorf("failed to list emails: %w", err)
	}

	return emails, nil
}

// ListVerifiedOwners returns the accounts holding a verified record of the
// address.
func (r *EmailRepository) ListVerifiedOwners(ctx context.Context, address string) ([]uuid.UUID, error) {
	var owners []uuid.UUID
	query := `SELECT account_id FROM email_addresses WHERE address = $1 AND verified ORDER BY created_at ASC`

	if err := r.db.DB.SelectContext(ctx, &owners, query, address); err != nil {
		return nil, fmt.Errorf("failed to list owners: %w", err)
	}

	return owners, nil
}

func (r *EmailRepository) ExistsGlobal(ctx context.Context, address string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM email_addresses WHERE address = $1`

	if err := r.db.DB.GetContext(ctx, &count, query, address); err != nil {
		return false, fmt.Errorf("failed to check address: %w", err)
	}

	return count > 0, nil
}

func (r *EmailRepository) ExistsForAccount(ctx context.Context, accountID uuid.UUID, address string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM email_addresses WHERE account_id = $1 AND address = $2`

	if err := r.db.DB.GetContext(ctx, &count, query, accountID, address); err != nil {
		return false, fmt.Errorf("failed to check address: %w", err)
	}

	return count > 0, nil
}

func (r *EmailRepository) Update(ctx context.Context, e *account.EmailAddress) error {
	query := `
		UPDATE email_addresses
		SET verified = $2, is_primary = $3, updated_at = $4
		WHERE id = $1`

	result, err := r.db.DB.ExecContext(ctx, query, e.ID, e.Verified, e.Primary, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update email: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("email %s: %w", e.ID, account.ErrEmailNotFound)
	}

	return nil
}

// SetPrimary demotes the current primary and promotes the given record in
// one transaction, keeping the single-primary invariant under concurrency.
func (r *EmailRepository) SetPrimary(ctx context.Context, accountID, emailID uuid.UUID) error {
	tx, err := r.db.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin set-primary transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	demote := `UPDATE email_addresses SET is_primary = FALSE, updated_at = NOW() WHERE account_id = $1 AND is_primary`
	if _, err := tx.ExecContext(ctx, demote, accountID); err != nil {
		return fmt.Errorf("failed to demote primary: %w", err)
	}

	promote := `UPDATE email_addresses SET is_primary = TRUE, updated_at = NOW() WHERE id = $1 AND account_id = $2`
	result, err := tx.ExecContext(ctx, promote, emailID, accountID)
	if err != nil {
		return fmt.Errorf("failed to promote primary: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("email %s: %w", emailID, account.ErrEmailNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit set-primary transaction: %w", err)
	}

	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{"account_id": accountID, "email_id": emailID}).Info("db: primary address changed")
	}

	return nil
}

func (r *EmailRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM email_addresses WHERE id = $1`

	result, err := r.db.DB.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete email: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("email %s: %w", id, account.ErrEmailNotFound)
	}

	return nil
}

func (r *EmailRepository) CountByAccount(ctx context.Context, accountID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM email_addresses WHERE account_id = $1`

	if err := r.db.DB.GetContext(ctx, &count, query, accountID); err != nil {
		return 0, fmt.Errorf("failed to count emails: %w", err)
	}

	return count, nil
}

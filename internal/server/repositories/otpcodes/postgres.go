// Package otpcodes stores the pending one-time code of each account.
package otpcodes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Vicktor007/store-lit/internal/common"
	"github.com/Vicktor007/store-lit/internal/dbx"
	"github.com/Vicktor007/store-lit/internal/server/models"
)

type Repository interface {
	Upsert(ctx context.Context, code *models.OneTimeCode) error
	Get(ctx context.Context, accountID string) (*models.OneTimeCode, error)
	IncrementAttempts(ctx context.Context, accountID string) (int, error)
	Delete(ctx context.Context, accountID string) error
}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert stores code, replacing any earlier code of the same account and
// resetting its attempt counter.
func (r *PostgresRepository) Upsert(ctx context.Context, code *models.OneTimeCode) error {
	query := `
		INSERT INTO otp_codes (account_id, code_hash, salt, expires_at, attempts)
		VALUES ($1, $2, $3, $4, 0)
		ON CONFLICT (account_id)
		DO UPDATE SET code_hash = EXCLUDED.code_hash, salt = EXCLUDED.salt,
			expires_at = EXCLUDED.expires_at, attempts = 0`

	if _, err := r.db.ExecContext(ctx, query, code.AccountID, code.Hash, code.Salt, code.ExpiresAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, accountID string) (*models.OneTimeCode, error) {
	query := `SELECT account_id, code_hash, salt, expires_at, attempts FROM otp_codes WHERE account_id = $1`

	c := &models.OneTimeCode{}
	err := r.db.QueryRowContext(ctx, query, accountID).Scan(&c.AccountID, &c.Hash, &c.Salt, &c.ExpiresAt, &c.Attempts)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

// IncrementAttempts records one failed verification and returns the new count.
func (r *PostgresRepository) IncrementAttempts(ctx context.Context, accountID string) (int, error) {
	query := `UPDATE otp_codes SET attempts = attempts + 1 WHERE account_id = $1 RETURNING attempts`

	var attempts int
	if err := r.db.QueryRowContext(ctx, query, accountID).Scan(&attempts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrorNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return attempts, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, accountID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM otp_codes WHERE account_id = $1`, accountID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

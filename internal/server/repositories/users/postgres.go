// Package users stores User documents in PostgreSQL.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Vicktor007/store-lit/internal/common"
	"github.com/Vicktor007/store-lit/internal/dbx"
	"github.com/Vicktor007/store-lit/internal/server/models"
	"github.com/google/uuid"
)

const userColumns = `id, account_id, full_name, email, avatar_url, avatar_file_id, avatar_blob_id, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanUser(row interface{ Scan(dest ...any) error }) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.AccountID, &u.FullName, &u.Email, &u.AvatarURL,
		&u.AvatarFileID, &u.AvatarBlobID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

// Create inserts user. An empty ID is replaced by a fresh UUID.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO users (id, account_id, full_name, email, avatar_url, avatar_file_id, avatar_blob_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING ` + userColumns

	return scanUser(r.db.QueryRowContext(ctx, query,
		user.ID, user.AccountID, user.FullName, user.Email, user.AvatarURL, user.AvatarFileID, user.AvatarBlobID))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) GetByAccountID(ctx context.Context, accountID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE account_id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, accountID))
}

// UpdateAvatar overwrites the avatar pointer fields and returns the updated
// row. Concurrent updates are last-write-wins.
func (r *PostgresRepository) UpdateAvatar(ctx context.Context, id string, avatar models.AvatarPointer) (*models.User, error) {
	query :=
		`UPDATE users SET avatar_url = $2, avatar_file_id = $3, avatar_blob_id = $4, updated_at = now()
		 WHERE id = $1
		 RETURNING ` + userColumns

	return scanUser(r.db.QueryRowContext(ctx, query, id, avatar.URL, avatar.FileID, avatar.BlobID))
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

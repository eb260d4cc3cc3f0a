// Package accounts stores sign-in identities keyed by email.
package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Vicktor007/store-lit/internal/common"
	"github.com/Vicktor007/store-lit/internal/dbx"
	"github.com/Vicktor007/store-lit/internal/server/models"
	"github.com/rs/xid"
)

type Repository interface {
	GetOrCreate(ctx context.Context, email string) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetOrCreate returns the account for email, creating it with a new xid when
// none exists. Emails are stored lower-cased.
func (r *PostgresRepository) GetOrCreate(ctx context.Context, email string) (*models.Account, error) {
	query :=
		`INSERT INTO accounts (id, email) VALUES ($1, $2)
		 ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		 RETURNING id, email, created_at`

	a := &models.Account{}
	err := r.db.QueryRowContext(ctx, query, xid.New().String(), strings.ToLower(email)).
		Scan(&a.ID, &a.Email, &a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	a := &models.Account{}
	err := r.db.QueryRowContext(ctx, `SELECT id, email, created_at FROM accounts WHERE id = $1`, id).
		Scan(&a.ID, &a.Email, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

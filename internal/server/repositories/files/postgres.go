// Package files stores File documents in PostgreSQL.
package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Vicktor007/store-lit/internal/common"
	"github.com/Vicktor007/store-lit/internal/dbx"
	"github.com/Vicktor007/store-lit/internal/server/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const fileColumns = `id, blob_id, owner_id, name, extension, type, size, url, shared_with, is_avatar, created_at, updated_at`

var orderBy = map[string]string{
	SortCreatedDesc: "created_at DESC, id DESC",
	SortCreatedAsc:  "created_at ASC, id ASC",
	SortNameAsc:     "lower(name) ASC, id ASC",
	SortNameDesc:    "lower(name) DESC, id DESC",
	SortSizeAsc:     "size ASC, id ASC",
	SortSizeDesc:    "size DESC, id DESC",
}

// PostgresRepository implements file storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFile(row scanner) (*models.File, error) {
	f := &models.File{}
	var sharedWith pq.StringArray
	if err := row.Scan(&f.ID, &f.BlobID, &f.OwnerID, &f.Name, &f.Extension, &f.Type, &f.Size, &f.URL,
		&sharedWith, &f.IsAvatar, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	f.SharedWith = []string(sharedWith)
	if f.SharedWith == nil {
		f.SharedWith = []string{}
	}
	return f, nil
}

func scanOne(row scanner) (*models.File, error) {
	f, err := scanFile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

func (r *PostgresRepository) queryMany(ctx context.Context, query string, args ...any) ([]*models.File, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select files: %w", err)
	}
	defer rows.Close()

	result := make([]*models.File, 0)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Create inserts file. An empty ID is replaced by a fresh UUID.
func (r *PostgresRepository) Create(ctx context.Context, file *models.File) (*models.File, error) {
	if file.ID == "" {
		file.ID = uuid.NewString()
	}
	shared := file.SharedWith
	if shared == nil {
		shared = []string{}
	}

	query := `
		INSERT INTO files (id, blob_id, owner_id, name, extension, type, size, url, shared_with, is_avatar)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + fileColumns

	return scanOne(r.db.QueryRowContext(ctx, query,
		file.ID, file.BlobID, file.OwnerID, file.Name, file.Extension, string(file.Type), file.Size, file.URL,
		pq.Array(shared), file.IsAvatar))
}

// GetByID returns common.ErrorNotFound for ids that are not UUIDs, as no
// file can have them.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	fileID, err := uuid.Parse(id)
	if err != nil {
		return nil, common.ErrorNotFound
	}
	query := `SELECT ` + fileColumns + ` FROM files WHERE id = $1`
	return scanOne(r.db.QueryRowContext(ctx, query, fileID.String()))
}

func (r *PostgresRepository) GetByBlobID(ctx context.Context, blobID string) (*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE blob_id = $1`
	return scanOne(r.db.QueryRowContext(ctx, query, blobID))
}

// ListByOwner returns up to limit files of ownerID with id greater than
// afterID, ordered by id. Pass an empty afterID for the first page.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID, afterID string, limit int) ([]*models.File, error) {
	if afterID == "" {
		query := `SELECT ` + fileColumns + ` FROM files WHERE owner_id = $1 ORDER BY id LIMIT $2`
		return r.queryMany(ctx, query, ownerID, limit)
	}
	query := `SELECT ` + fileColumns + ` FROM files WHERE owner_id = $1 AND id > $2 ORDER BY id LIMIT $3`
	return r.queryMany(ctx, query, ownerID, afterID, limit)
}

// ListVisible returns the files owned by q.OwnerID or shared with q.Email,
// filtered by type and a case-insensitive name search.
func (r *PostgresRepository) ListVisible(ctx context.Context, q ListQuery) ([]*models.File, error) {
	order, ok := orderBy[q.Sort]
	if !ok {
		order = orderBy[SortCreatedDesc]
	}

	types := make([]string, 0, len(q.Types))
	for _, t := range q.Types {
		types = append(types, string(t))
	}

	var limit sql.NullInt64
	if q.Limit > 0 {
		limit = sql.NullInt64{Int64: int64(q.Limit), Valid: true}
	}

	query := `SELECT ` + fileColumns + ` FROM files
		WHERE (owner_id = $1 OR lower($2::text) = ANY(shared_with))
		  AND (cardinality($3::text[]) = 0 OR type = ANY($3::text[]))
		  AND ($4::text = '' OR name ILIKE '%' || $4::text || '%' ESCAPE '\')
		ORDER BY ` + order + `
		LIMIT $5`

	return r.queryMany(ctx, query, q.OwnerID, q.Email, pq.Array(types), escapeLike(q.Search), limit)
}

// Rename sets the file name. The extension column is left unchanged.
func (r *PostgresRepository) Rename(ctx context.Context, id, name string) (*models.File, error) {
	query := `UPDATE files SET name = $2, updated_at = now() WHERE id = $1 RETURNING ` + fileColumns
	return scanOne(r.db.QueryRowContext(ctx, query, id, name))
}

// UpdateSharedWith replaces the recipient list.
func (r *PostgresRepository) UpdateSharedWith(ctx context.Context, id string, emails []string) (*models.File, error) {
	if emails == nil {
		emails = []string{}
	}
	query := `UPDATE files SET shared_with = $2, updated_at = now() WHERE id = $1 RETURNING ` + fileColumns
	return scanOne(r.db.QueryRowContext(ctx, query, id, pq.Array(emails)))
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id = $1`, id)
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

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

package files

import (
	"context"

	"github.com/Vicktor007/store-lit/internal/server/models"
)

// Sort orders accepted by ListVisible.
const (
	SortCreatedDesc = "$createdAt-desc"
	SortCreatedAsc  = "$createdAt-asc"
	SortNameAsc     = "name-asc"
	SortNameDesc    = "name-desc"
	SortSizeAsc     = "size-asc"
	SortSizeDesc    = "size-desc"
)

// ListQuery selects the files a user can see: owned by OwnerID or shared
// with Email. Empty Types means every type; Limit 0 means no limit.
type ListQuery struct {
	OwnerID string
	Email   string
	Types   []models.FileType
	Search  string
	Sort    string
	Limit   int
}

// Repository persists File documents. Lookups and mutations of absent rows
// return common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, file *models.File) (*models.File, error)
	GetByID(ctx context.Context, id string) (*models.File, error)
	GetByBlobID(ctx context.Context, blobID string) (*models.File, error)
	ListByOwner(ctx context.Context, ownerID, afterID string, limit int) ([]*models.File, error)
	ListVisible(ctx context.Context, q ListQuery) ([]*models.File, error)
	Rename(ctx context.Context, id, name string) (*models.File, error)
	UpdateSharedWith(ctx context.Context, id string, emails []string) (*models.File, error)
	Delete(ctx context.Context, id string) error
}

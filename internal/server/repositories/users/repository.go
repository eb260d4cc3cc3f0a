package users

import (
	"context"

	"github.com/Vicktor007/store-lit/internal/server/models"
)

// Repository persists User documents. Lookups and deletes of absent rows
// return common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByAccountID(ctx context.Context, accountID string) (*models.User, error)
	UpdateAvatar(ctx context.Context, id string, avatar models.AvatarPointer) (*models.User, error)
	Delete(ctx context.Context, id string) error
}

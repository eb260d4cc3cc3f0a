package client

import (
	"context"

	"github.com/Vicktor007/store-lit/internal/client/models"
)

// ListOptions filter GET /api/files. Zero values are omitted.
type ListOptions struct {
	Types []string
	Query string
	Sort  string
	Limit int
}

// ActionRequest is the body of POST /api/files/{id}/actions.
type ActionRequest struct {
	Action string   `json:"action"`
	Name   string   `json:"name,omitempty"`
	Emails []string `json:"emails,omitempty"`
}

type Client interface {
	Ping(ctx context.Context) error
	HasSession() bool
	SignUp(ctx context.Context, fullName, email string) (string, error)
	SignIn(ctx context.Context, email string) (string, error)
	Verify(ctx context.Context, accountID, code string) error
	SignOut(ctx context.Context) error
	Me(ctx context.Context) (*models.User, error)
	UploadAvatar(ctx context.Context, path string) (*models.File, error)
	SetPlaceholderAvatar(ctx context.Context, url string) (*models.User, error)
	DeleteAccount(ctx context.Context) error
	ListFiles(ctx context.Context, opts ListOptions) (*models.FileList, error)
	UploadFile(ctx context.Context, path string) (*models.File, error)
	FileAction(ctx context.Context, fileID string, req ActionRequest) (*models.ActionResult, error)
	Download(ctx context.Context, url, dest string) error
}

// Package storage keeps file payloads in an S3-compatible object store.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Vicktor007/store-lit/internal/server/models"
	"github.com/google/uuid"
)

// BlobStore is the object store used by the file and avatar workflows.
// Delete reports common.ErrorNotFound for absent blobs.
type BlobStore interface {
	Put(ctx context.Context, name string, body io.Reader, size int64, contentType string) (*models.Blob, error)
	Copy(ctx context.Context, srcID, name string) (*models.Blob, error)
	Delete(ctx context.Context, blobID string) error
	PresignGet(ctx context.Context, blobID, filename string, attachment bool) (string, error)
}

// GetRandomStorageKey returns a fresh date-partitioned object key.
func GetRandomStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("users/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

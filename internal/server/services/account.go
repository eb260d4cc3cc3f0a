package services

import (
	"context"
	"database/sql"

	"github.com/Vicktor007/store-lit/internal/logging"
	"github.com/Vicktor007/store-lit/internal/server/repositories/repomanager"
	"github.com/Vicktor007/store-lit/internal/server/storage"
)

// DeletePageSize is how many files account deletion lists per query.
const DeletePageSize = 100

// AccountSaga removes a user and everything they own.
type AccountSaga struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       storage.BlobStore
	log         logging.Logger
	pageSize    int
}

func NewAccountSaga(db *sql.DB, m repomanager.RepositoryManager, blobs storage.BlobStore, log logging.Logger) *AccountSaga {
	return &AccountSaga{db: db, repomanager: m, blobs: blobs, log: log, pageSize: DeletePageSize}
}

// DeleteAccount deletes every file of userID (blob first, then document) and
// finally the user document. It stops at the first error; files deleted so
// far stay deleted, so calling it again finishes the job.
func (s *AccountSaga) DeleteAccount(ctx context.Context, userID string) error {
	log := s.log.With("user_id", userID)
	files := s.repomanager.Files(s.db)

	deleted := 0
	afterID := ""
	for {
		page, err := files.ListByOwner(ctx, userID, afterID, s.pageSize)
		if err != nil {
			log.Error(ctx, "listing files for deletion failed", "deleted", deleted, "error", err)
			return sagaError(KindCascadeDeletion, "failed to list files", err)
		}

		for _, f := range page {
			if err := s.blobs.Delete(ctx, f.BlobID); err != nil && !isNotFound(err) {
				log.Error(ctx, "blob delete failed", "file_id", f.ID, "blob_id", f.BlobID, "deleted", deleted, "error", err)
				return sagaError(KindCascadeDeletion, "failed to delete file "+f.ID, err)
			}
			if err := files.Delete(ctx, f.ID); err != nil && !isNotFound(err) {
				log.Error(ctx, "file document delete failed", "file_id", f.ID, "deleted", deleted, "error", err)
				return sagaError(KindCascadeDeletion, "failed to delete file "+f.ID, err)
			}
			deleted++
		}

		if len(page) < s.pageSize {
			break
		}
		afterID = page[len(page)-1].ID
	}

	if err := s.repomanager.Users(s.db).Delete(ctx, userID); err != nil && !isNotFound(err) {
		log.Error(ctx, "user delete failed", "deleted", deleted, "error", err)
		return sagaError(KindCascadeDeletion, "failed to delete user", err)
	}

	log.Info(ctx, "account deleted", "files", deleted)
	return nil
}

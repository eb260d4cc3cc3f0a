// Package services contains the server-side workflows: the avatar and file
// upload saga, the account deletion saga, and the user and file services
// built on them.
package services

import (
	"context"
	"database/sql"
	"io"
	"strings"

	"github.com/Vicktor007/store-lit/internal/common"
	"github.com/Vicktor007/store-lit/internal/logging"
	"github.com/Vicktor007/store-lit/internal/server/models"
	"github.com/Vicktor007/store-lit/internal/server/notify"
	"github.com/Vicktor007/store-lit/internal/server/repositories/repomanager"
	"github.com/Vicktor007/store-lit/internal/server/storage"
)

// Upload is a binary payload received from a client. Size is the size the
// client claims; the stored size is read back from the object store.
type Upload struct {
	Name        string
	Body        io.Reader
	Size        int64
	ContentType string
}

// PriorAvatar locates the uploaded avatar being replaced, if any. Cleanup
// only happens when both ids are set.
type PriorAvatar struct {
	FileID *string
	BlobID *string
}

func PriorAvatarOf(u *models.User) PriorAvatar {
	return PriorAvatar{FileID: u.AvatarFileID, BlobID: u.AvatarBlobID}
}

func (p PriorAvatar) present() bool {
	return p.FileID != nil && p.BlobID != nil
}

// blobSource produces the blob a new File is created from.
type blobSource func(ctx context.Context) (*models.Blob, error)

// FileSaga stores files across the object store and the document store and
// keeps User avatar pointers in step with them.
type FileSaga struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	blobs         storage.BlobStore
	revalidator   notify.Revalidator
	log           logging.Logger
	publicBaseURL string
}

func NewFileSaga(db *sql.DB, m repomanager.RepositoryManager, blobs storage.BlobStore,
	rv notify.Revalidator, log logging.Logger, publicBaseURL string) *FileSaga {
	return &FileSaga{
		db:            db,
		repomanager:   m,
		blobs:         blobs,
		revalidator:   rv,
		log:           log,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// FileURL is the public view URL of blobID.
func (s *FileSaga) FileURL(blobID string) string {
	return s.publicBaseURL + "/files/" + blobID + "/view"
}

func (s *FileSaga) putUpload(up Upload) blobSource {
	return func(ctx context.Context) (*models.Blob, error) {
		return s.blobs.Put(ctx, up.Name, up.Body, up.Size, up.ContentType)
	}
}

// SetAvatarFromUpload replaces the avatar of ownerID with a new uploaded
// image. The prior avatar is removed first; the new File is created only once
// that cleanup succeeded or found nothing left to remove.
func (s *FileSaga) SetAvatarFromUpload(ctx context.Context, ownerID, accountID string, up Upload,
	prior PriorAvatar, path string) (*models.File, error) {
	return s.setAvatar(ctx, ownerID, accountID, prior, path, s.putUpload(up))
}

// SetAvatarFromCopy makes a copy of an existing blob the avatar of ownerID.
func (s *FileSaga) SetAvatarFromCopy(ctx context.Context, ownerID, accountID string, src *models.File,
	prior PriorAvatar, path string) (*models.File, error) {
	return s.setAvatar(ctx, ownerID, accountID, prior, path, func(ctx context.Context) (*models.Blob, error) {
		return s.blobs.Copy(ctx, src.BlobID, src.Name)
	})
}

func (s *FileSaga) setAvatar(ctx context.Context, ownerID, accountID string, prior PriorAvatar,
	path string, src blobSource) (*models.File, error) {
	log := s.log.With("owner_id", ownerID, "account_id", accountID)

	if err := s.cleanupPrior(ctx, log, prior); err != nil {
		return nil, err
	}

	file, err := s.storeFile(ctx, log, ownerID, true, src)
	if err != nil {
		return nil, err
	}

	pointer := models.AvatarPointer{URL: file.URL, FileID: &file.ID, BlobID: &file.BlobID}
	if _, err := s.repomanager.Users(s.db).UpdateAvatar(ctx, ownerID, pointer); err != nil {
		log.Error(ctx, "avatar pointer update failed, new avatar left orphaned",
			"orphan_file_id", file.ID, "orphan_blob_id", file.BlobID, "error", err)
		return nil, sagaError(KindPointerUpdate, "failed to update avatar", err)
	}

	s.revalidate(ctx, log, path)
	log.Info(ctx, "avatar updated", "file_id", file.ID, "blob_id", file.BlobID)
	return file, nil
}

// SetAvatarFromPlaceholder points the avatar of ownerID at one of the stock
// images after removing the prior uploaded avatar. No File or blob is created.
func (s *FileSaga) SetAvatarFromPlaceholder(ctx context.Context, ownerID, placeholderURL string,
	prior PriorAvatar) (*models.User, error) {
	if !models.IsPlaceholderAvatar(placeholderURL) {
		return nil, common.ErrorPlaceholder
	}
	log := s.log.With("owner_id", ownerID)

	if err := s.cleanupPrior(ctx, log, prior); err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).UpdateAvatar(ctx, ownerID, models.AvatarPointer{URL: placeholderURL})
	if err != nil {
		log.Error(ctx, "placeholder avatar update failed", "error", err)
		return nil, sagaError(KindPointerUpdate, "failed to update avatar", err)
	}
	return user, nil
}

// Upload stores a regular, non-avatar file owned by ownerID.
func (s *FileSaga) Upload(ctx context.Context, ownerID, accountID string, up Upload, path string) (*models.File, error) {
	log := s.log.With("owner_id", ownerID, "account_id", accountID)

	file, err := s.storeFile(ctx, log, ownerID, false, s.putUpload(up))
	if err != nil {
		return nil, err
	}

	s.revalidate(ctx, log, path)
	log.Info(ctx, "file uploaded", "file_id", file.ID, "size", file.Size)
	return file, nil
}

// cleanupPrior deletes the prior avatar document, then its blob. Targets that
// are already gone count as deleted.
func (s *FileSaga) cleanupPrior(ctx context.Context, log logging.Logger, prior PriorAvatar) error {
	if !prior.present() {
		return nil
	}
	fileID, blobID := *prior.FileID, *prior.BlobID

	if err := s.repomanager.Files(s.db).Delete(ctx, fileID); err != nil && !isNotFound(err) {
		log.Error(ctx, "prior avatar document delete failed", "file_id", fileID, "error", err)
		return sagaError(KindCleanup, "failed to remove previous avatar", err)
	}
	if err := s.blobs.Delete(ctx, blobID); err != nil && !isNotFound(err) {
		log.Error(ctx, "prior avatar blob delete failed", "blob_id", blobID, "error", err)
		return sagaError(KindCleanup, "failed to remove previous avatar", err)
	}
	return nil
}

// storeFile obtains a blob from src and writes its File document. When the
// document write fails the blob is deleted again.
func (s *FileSaga) storeFile(ctx context.Context, log logging.Logger, ownerID string, isAvatar bool,
	src blobSource) (*models.File, error) {
	blob, err := src(ctx)
	if err != nil {
		log.Error(ctx, "blob upload failed", "error", err)
		return nil, sagaError(KindUpload, "failed to upload file", err)
	}

	fileType, ext := models.DetectFileType(blob.Name)
	file := &models.File{
		BlobID:     blob.ID,
		OwnerID:    ownerID,
		Name:       blob.Name,
		Extension:  ext,
		Type:       fileType,
		Size:       blob.Size,
		URL:        s.FileURL(blob.ID),
		SharedWith: []string{},
		IsAvatar:   isAvatar,
	}

	created, err := s.repomanager.Files(s.db).Create(ctx, file)
	if err != nil {
		if derr := s.blobs.Delete(ctx, blob.ID); derr != nil && !isNotFound(derr) {
			log.Error(ctx, "compensating blob delete failed", "blob_id", blob.ID, "error", derr)
		}
		log.Error(ctx, "file document create failed", "blob_id", blob.ID, "error", err)
		return nil, sagaError(KindDocumentCreate, "failed to save file", err)
	}
	return created, nil
}

func (s *FileSaga) revalidate(ctx context.Context, log logging.Logger, path string) {
	if path == "" {
		return
	}
	if err := s.revalidator.Revalidate(ctx, path); err != nil {
		log.Warn(ctx, "revalidation failed", "path", path, "error", err)
	}
}

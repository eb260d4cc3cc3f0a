package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Vicktor007/store-lit/internal/common"
	"github.com/Vicktor007/store-lit/internal/logging"
	"github.com/Vicktor007/store-lit/internal/server/models"
	"github.com/Vicktor007/store-lit/internal/server/repositories/files"
	"github.com/Vicktor007/store-lit/internal/server/repositories/repomanager"
	"github.com/Vicktor007/store-lit/internal/server/storage"
	"github.com/go-playground/validator/v10"
	"github.com/thoas/go-funk"
)

var sortOrders = []string{
	files.SortCreatedDesc, files.SortCreatedAsc,
	files.SortNameAsc, files.SortNameDesc,
	files.SortSizeAsc, files.SortSizeDesc,
}

// ListParams filters and orders a file listing. Zero values list every type,
// newest first, without a limit.
type ListParams struct {
	Types  []models.FileType
	Search string
	Sort   string
	Limit  int
}

type FileList struct {
	Documents []*models.File `json:"documents"`
	Total     int            `json:"total"`
	TotalSize int64          `json:"totalSize"`
}

// FileAction is one of the operations a user can apply to a single file.
// The set is closed: RenameAction, ShareAction, DeleteAction,
// UseAsAvatarAction, DownloadAction and DetailsAction.
type FileAction interface {
	fileAction()
}

type RenameAction struct{ Name string }

type ShareAction struct{ Emails []string }

type DeleteAction struct{}

type UseAsAvatarAction struct{ Path string }

type DownloadAction struct{}

type DetailsAction struct{}

func (RenameAction) fileAction()      {}
func (ShareAction) fileAction()       {}
func (DeleteAction) fileAction()      {}
func (UseAsAvatarAction) fileAction() {}
func (DownloadAction) fileAction()    {}
func (DetailsAction) fileAction()     {}

// ParseAction maps a wire action name to its FileAction.
func ParseAction(kind, name string, emails []string) (FileAction, error) {
	switch kind {
	case "rename":
		return RenameAction{Name: name}, nil
	case "share":
		return ShareAction{Emails: emails}, nil
	case "delete":
		return DeleteAction{}, nil
	case "useAsAvatar":
		return UseAsAvatarAction{Path: "/"}, nil
	case "download":
		return DownloadAction{}, nil
	case "details":
		return DetailsAction{}, nil
	}
	return nil, fmt.Errorf("%w: unknown action %q", common.ErrorValidation, kind)
}

type Owner struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// ActionResult carries whatever the applied action produced.
type ActionResult struct {
	File    *models.File `json:"file,omitempty"`
	User    *models.User `json:"user,omitempty"`
	Owner   *Owner       `json:"owner,omitempty"`
	URL     string       `json:"url,omitempty"`
	Deleted bool         `json:"deleted,omitempty"`
}

type FileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       storage.BlobStore
	saga        *FileSaga
	validate    *validator.Validate
	log         logging.Logger
}

func NewFileService(db *sql.DB, m repomanager.RepositoryManager, blobs storage.BlobStore, saga *FileSaga, log logging.Logger) *FileService {
	return &FileService{
		db:          db,
		repomanager: m,
		blobs:       blobs,
		saga:        saga,
		validate:    validator.New(),
		log:         log,
	}
}

// Upload stores up as a new file of user.
func (s *FileService) Upload(ctx context.Context, user *models.User, up Upload, path string) (*models.File, error) {
	return s.saga.Upload(ctx, user.ID, user.AccountID, up, path)
}

// List returns the files user owns or that are shared with their email.
func (s *FileService) List(ctx context.Context, user *models.User, p ListParams) (*FileList, error) {
	if p.Sort == "" {
		p.Sort = files.SortCreatedDesc
	}
	if !funk.ContainsString(sortOrders, p.Sort) {
		return nil, fmt.Errorf("%w: unknown sort %q", common.ErrorValidation, p.Sort)
	}
	if p.Limit < 0 {
		return nil, fmt.Errorf("%w: negative limit", common.ErrorValidation)
	}

	docs, err := s.repomanager.Files(s.db).ListVisible(ctx, files.ListQuery{
		OwnerID: user.ID,
		Email:   user.Email,
		Types:   p.Types,
		Search:  strings.TrimSpace(p.Search),
		Sort:    p.Sort,
		Limit:   p.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("error listing files: %w", err)
	}

	out := &FileList{Documents: docs, Total: len(docs)}
	for _, d := range docs {
		out.TotalSize += d.Size
	}
	if out.Documents == nil {
		out.Documents = []*models.File{}
	}
	return out, nil
}

// Apply runs action against fileID on behalf of user. Files the user can not
// see report common.ErrorNotFound; owner-only actions by recipients report
// common.ErrorForbidden.
func (s *FileService) Apply(ctx context.Context, user *models.User, fileID string, action FileAction) (*ActionResult, error) {
	file, err := s.visibleFile(ctx, user, fileID)
	if err != nil {
		return nil, err
	}

	switch a := action.(type) {
	case RenameAction:
		return s.rename(ctx, user, file, a.Name)
	case ShareAction:
		return s.share(ctx, user, file, a.Emails)
	case DeleteAction:
		return s.delete(ctx, user, file)
	case UseAsAvatarAction:
		return s.useAsAvatar(ctx, user, file, a.Path)
	case DownloadAction:
		u, err := s.blobs.PresignGet(ctx, file.BlobID, file.Name, true)
		if err != nil {
			return nil, fmt.Errorf("error presigning download: %w", err)
		}
		return &ActionResult{File: file, URL: u}, nil
	case DetailsAction:
		return s.details(ctx, file)
	default:
		return nil, fmt.Errorf("%w: unsupported action %T", common.ErrorValidation, action)
	}
}

// ViewURL returns a presigned inline URL for the file stored as blobID.
func (s *FileService) ViewURL(ctx context.Context, blobID string) (string, error) {
	file, err := s.repomanager.Files(s.db).GetByBlobID(ctx, blobID)
	if err != nil {
		return "", err
	}
	return s.blobs.PresignGet(ctx, file.BlobID, file.Name, false)
}

func (s *FileService) visibleFile(ctx context.Context, user *models.User, fileID string) (*models.File, error) {
	file, err := s.repomanager.Files(s.db).GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if file.OwnerID != user.ID && !file.IsSharedWith(user.Email) {
		return nil, common.ErrorNotFound
	}
	return file, nil
}

func (s *FileService) rename(ctx context.Context, user *models.User, file *models.File, name string) (*ActionResult, error) {
	if file.OwnerID != user.ID {
		return nil, common.ErrorForbidden
	}
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("%w: invalid file name", common.ErrorValidation)
	}
	if file.Extension != "" && !strings.HasSuffix(strings.ToLower(name), "."+file.Extension) {
		name = name + "." + file.Extension
	}

	updated, err := s.repomanager.Files(s.db).Rename(ctx, file.ID, name)
	if err != nil {
		return nil, fmt.Errorf("error renaming file: %w", err)
	}
	return &ActionResult{File: updated}, nil
}

func (s *FileService) share(ctx context.Context, user *models.User, file *models.File, emails []string) (*ActionResult, error) {
	if file.OwnerID != user.ID {
		return nil, common.ErrorForbidden
	}

	normalized, err := s.normalizeEmails(emails)
	if err != nil {
		return nil, err
	}

	updated, err := s.repomanager.Files(s.db).UpdateSharedWith(ctx, file.ID, normalized)
	if err != nil {
		return nil, fmt.Errorf("error sharing file: %w", err)
	}
	return &ActionResult{File: updated}, nil
}

func (s *FileService) normalizeEmails(emails []string) ([]string, error) {
	lowered := funk.Map(emails, func(e string) string {
		return strings.ToLower(strings.TrimSpace(e))
	}).([]string)
	lowered = funk.UniqString(funk.FilterString(lowered, func(e string) bool { return e != "" }))

	for _, e := range lowered {
		if err := s.validate.Var(e, "email"); err != nil {
			return nil, fmt.Errorf("%w: invalid email %q", common.ErrorValidation, e)
		}
	}
	return lowered, nil
}

// delete removes the file for its owner. A recipient only drops their own
// email from the share list.
func (s *FileService) delete(ctx context.Context, user *models.User, file *models.File) (*ActionResult, error) {
	repo := s.repomanager.Files(s.db)

	if file.OwnerID != user.ID {
		remaining := funk.FilterString(file.SharedWith, func(e string) bool {
			return !strings.EqualFold(e, user.Email)
		})
		if _, err := repo.UpdateSharedWith(ctx, file.ID, remaining); err != nil {
			return nil, fmt.Errorf("error leaving shared file: %w", err)
		}
		return &ActionResult{Deleted: true}, nil
	}

	if err := s.blobs.Delete(ctx, file.BlobID); err != nil && !isNotFound(err) {
		return nil, fmt.Errorf("error deleting blob: %w", err)
	}
	if err := repo.Delete(ctx, file.ID); err != nil && !isNotFound(err) {
		return nil, fmt.Errorf("error deleting file: %w", err)
	}

	res := &ActionResult{Deleted: true}
	if user.AvatarFileID != nil && *user.AvatarFileID == file.ID {
		u, err := s.repomanager.Users(s.db).UpdateAvatar(ctx, user.ID, models.AvatarPointer{URL: models.PlaceholderAvatars[0]})
		if err != nil {
			s.log.Error(ctx, "resetting avatar of deleted file failed", "user_id", user.ID, "file_id", file.ID, "error", err)
			return nil, sagaError(KindPointerUpdate, "failed to reset avatar", err)
		}
		res.User = u
	}
	return res, nil
}

func (s *FileService) useAsAvatar(ctx context.Context, user *models.User, file *models.File, path string) (*ActionResult, error) {
	if file.Type != models.FileTypeImage {
		return nil, common.ErrorNotAnImage
	}
	if user.AvatarFileID != nil && *user.AvatarFileID == file.ID {
		return &ActionResult{File: file}, nil
	}

	avatar, err := s.saga.SetAvatarFromCopy(ctx, user.ID, user.AccountID, file, PriorAvatarOf(user), path)
	if err != nil {
		return nil, err
	}
	return &ActionResult{File: avatar}, nil
}

func (s *FileService) details(ctx context.Context, file *models.File) (*ActionResult, error) {
	owner, err := s.repomanager.Users(s.db).GetByID(ctx, file.OwnerID)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error reading owner: %w", err)
	}

	res := &ActionResult{File: file}
	if owner != nil {
		res.Owner = &Owner{ID: owner.ID, FullName: owner.FullName, Email: owner.Email}
	}
	return res, nil
}

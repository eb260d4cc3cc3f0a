package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/Vicktor007/store-lit/internal/common"
	"github.com/Vicktor007/store-lit/internal/dbx"
	"github.com/Vicktor007/store-lit/internal/logging"
	"github.com/Vicktor007/store-lit/internal/server/models"
	"github.com/Vicktor007/store-lit/internal/server/repositories/accounts"
	"github.com/Vicktor007/store-lit/internal/server/repositories/files"
	"github.com/Vicktor007/store-lit/internal/server/repositories/otpcodes"
	"github.com/Vicktor007/store-lit/internal/server/repositories/sessions"
	"github.com/Vicktor007/store-lit/internal/server/repositories/users"
)

// recorder collects store calls in order across all fakes.
type recorder struct {
	calls []string
}

func (r *recorder) add(format string, args ...any) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recorder) has(prefix string) bool {
	for _, c := range r.calls {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

// --- users ---

type fakeUsers struct {
	rec       *recorder
	rows      map[string]*models.User
	updateErr error
	deleteErr error
	nextID    int
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.nextID++
	cp := *u
	cp.ID = fmt.Sprintf("u%d", f.nextID)
	f.rows[cp.ID] = &cp
	f.rec.add("users.create %s", cp.Email)
	out := cp
	return &out, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	u, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.rows {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsers) GetByAccountID(_ context.Context, accountID string) (*models.User, error) {
	for _, u := range f.rows {
		if u.AccountID == accountID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsers) UpdateAvatar(_ context.Context, id string, p models.AvatarPointer) (*models.User, error) {
	f.rec.add("users.updateAvatar %s", id)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	u, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	u.AvatarURL, u.AvatarFileID, u.AvatarBlobID = p.URL, p.FileID, p.BlobID
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) Delete(_ context.Context, id string) error {
	f.rec.add("users.delete %s", id)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.rows[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.rows, id)
	return nil
}

// --- files ---

type fakeFiles struct {
	rec       *recorder
	rows      map[string]*models.File
	createErr error
	deleteErr map[string]error
	lastQuery files.ListQuery
	nextID    int
}

func (f *fakeFiles) Create(_ context.Context, file *models.File) (*models.File, error) {
	f.rec.add("files.create %s", file.BlobID)
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	cp := *file
	cp.ID = fmt.Sprintf("new%d", f.nextID)
	f.rows[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeFiles) GetByID(_ context.Context, id string) (*models.File, error) {
	file, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *file
	return &cp, nil
}

func (f *fakeFiles) GetByBlobID(_ context.Context, blobID string) (*models.File, error) {
	for _, file := range f.rows {
		if file.BlobID == blobID {
			cp := *file
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeFiles) ListByOwner(_ context.Context, ownerID, afterID string, limit int) ([]*models.File, error) {
	f.rec.add("files.listByOwner %s after=%s", ownerID, afterID)
	var ids []string
	for id, file := range f.rows {
		if file.OwnerID == ownerID && id > afterID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]*models.File, 0, len(ids))
	for _, id := range ids {
		cp := *f.rows[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeFiles) ListVisible(_ context.Context, q files.ListQuery) ([]*models.File, error) {
	f.lastQuery = q
	var out []*models.File
	for _, file := range f.rows {
		if file.OwnerID == q.OwnerID || file.IsSharedWith(q.Email) {
			cp := *file
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeFiles) Rename(_ context.Context, id, name string) (*models.File, error) {
	file, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	file.Name = name
	cp := *file
	return &cp, nil
}

func (f *fakeFiles) UpdateSharedWith(_ context.Context, id string, emails []string) (*models.File, error) {
	file, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	file.SharedWith = emails
	cp := *file
	return &cp, nil
}

func (f *fakeFiles) Delete(_ context.Context, id string) error {
	f.rec.add("files.delete %s", id)
	if err := f.deleteErr[id]; err != nil {
		return err
	}
	if _, ok := f.rows[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.rows, id)
	return nil
}

// --- blobs ---

type fakeBlobs struct {
	rec       *recorder
	objects   map[string]int64
	putErr    error
	deleteErr map[string]error
	nextID    int
}

func (f *fakeBlobs) Put(_ context.Context, name string, body io.Reader, _ int64, contentType string) (*models.Blob, error) {
	f.rec.add("blobs.put %s", name)
	if f.putErr != nil {
		return nil, f.putErr
	}
	n, err := io.Copy(io.Discard, body)
	if err != nil {
		return nil, err
	}
	f.nextID++
	id := fmt.Sprintf("blob%d", f.nextID)
	f.objects[id] = n
	return &models.Blob{ID: id, Name: name, Size: n, ContentType: contentType}, nil
}

func (f *fakeBlobs) Copy(_ context.Context, srcID, name string) (*models.Blob, error) {
	f.rec.add("blobs.copy %s", srcID)
	size, ok := f.objects[srcID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	f.nextID++
	id := fmt.Sprintf("blob%d", f.nextID)
	f.objects[id] = size
	return &models.Blob{ID: id, Name: name, Size: size}, nil
}

func (f *fakeBlobs) Delete(_ context.Context, blobID string) error {
	f.rec.add("blobs.delete %s", blobID)
	if err := f.deleteErr[blobID]; err != nil {
		return err
	}
	if _, ok := f.objects[blobID]; !ok {
		return common.ErrorNotFound
	}
	delete(f.objects, blobID)
	return nil
}

func (f *fakeBlobs) PresignGet(_ context.Context, blobID, filename string, attachment bool) (string, error) {
	return fmt.Sprintf("https://s3.local/%s?name=%s&attachment=%t", blobID, filename, attachment), nil
}

// --- revalidator ---

type fakeRevalidator struct {
	rec *recorder
	err error
}

func (f *fakeRevalidator) Revalidate(_ context.Context, path string) error {
	f.rec.add("revalidate %s", path)
	return f.err
}

// --- repo manager ---

type fakeRepoManager struct {
	users *fakeUsers
	files *fakeFiles
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return m.users }
func (m *fakeRepoManager) Files(dbx.DBTX) files.Repository              { return m.files }
func (m *fakeRepoManager) Accounts(dbx.DBTX) accounts.Repository        { return nil }
func (m *fakeRepoManager) OneTimeCodes(dbx.DBTX) otpcodes.Repository    { return nil }
func (m *fakeRepoManager) Sessions(dbx.DBTX) sessions.Repository        { return nil }

// --- fixture ---

type env struct {
	rec     *recorder
	users   *fakeUsers
	files   *fakeFiles
	blobs   *fakeBlobs
	reval   *fakeRevalidator
	rm      *fakeRepoManager
	saga    *FileSaga
	account *AccountSaga
}

func newEnv(log logging.Logger) *env {
	rec := &recorder{}
	e := &env{
		rec:   rec,
		users: &fakeUsers{rec: rec, rows: map[string]*models.User{}},
		files: &fakeFiles{rec: rec, rows: map[string]*models.File{}, deleteErr: map[string]error{}},
		blobs: &fakeBlobs{rec: rec, objects: map[string]int64{}, deleteErr: map[string]error{}},
		reval: &fakeRevalidator{rec: rec},
	}
	e.rm = &fakeRepoManager{users: e.users, files: e.files}
	e.saga = NewFileSaga(nil, e.rm, e.blobs, e.reval, log, "http://localhost:8080/")
	e.account = NewAccountSaga(nil, e.rm, e.blobs, log)
	return e
}

func strPtr(s string) *string { return &s }

// seedUser stores a user whose avatar is the uploaded file fileID/blobID.
// Empty ids give a placeholder avatar.
func (e *env) seedUser(id, email, fileID, blobID string) *models.User {
	u := &models.User{ID: id, AccountID: "acc-" + id, FullName: "User " + id, Email: email, AvatarURL: models.PlaceholderAvatars[0]}
	if fileID != "" {
		u.AvatarFileID, u.AvatarBlobID = strPtr(fileID), strPtr(blobID)
		u.AvatarURL = "http://localhost:8080/files/" + blobID + "/view"
		e.seedFile(fileID, blobID, id, "old.png", true)
	}
	e.users.rows[id] = u
	cp := *u
	return &cp
}

func (e *env) seedFile(id, blobID, ownerID, name string, isAvatar bool, sharedWith ...string) *models.File {
	t, ext := models.DetectFileType(name)
	f := &models.File{ID: id, BlobID: blobID, OwnerID: ownerID, Name: name, Extension: ext, Type: t,
		Size: 10, SharedWith: sharedWith, IsAvatar: isAvatar}
	e.files.rows[id] = f
	e.blobs.objects[blobID] = 10
	cp := *f
	return &cp
}

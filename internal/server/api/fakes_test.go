package api

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/Vicktor007/store-lit/internal/common"
	"github.com/Vicktor007/store-lit/internal/logging"
	"github.com/Vicktor007/store-lit/internal/server/models"
	"github.com/Vicktor007/store-lit/internal/server/services"
	"github.com/go-resty/resty/v2"
)

const testSecret = "secret-1"

type fakeUsers struct {
	user      *models.User
	err       error
	signedOut []string
	deleted   bool
	uploaded  string
	gotPath   string
}

func (f *fakeUsers) CreateAccount(_ context.Context, fullName, email string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "acc-" + email, nil
}

func (f *fakeUsers) SignIn(_ context.Context, email string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "acc-" + email, nil
}

func (f *fakeUsers) VerifySecret(_ context.Context, accountID, code string) (string, error) {
	if code != "123456" {
		return "", common.ErrCodeMismatch
	}
	return testSecret, nil
}

func (f *fakeUsers) GetCurrentUser(_ context.Context, secret string) (*models.User, error) {
	if secret != testSecret {
		return nil, common.ErrorUnauthorized
	}
	if f.user == nil {
		return nil, common.ErrorNotFound
	}
	return f.user, nil
}

func (f *fakeUsers) SignOut(_ context.Context, secret string) error {
	f.signedOut = append(f.signedOut, secret)
	return nil
}

func (f *fakeUsers) SetAvatarFromUpload(_ context.Context, user *models.User, up services.Upload, path string) (*models.File, error) {
	if f.err != nil {
		return nil, f.err
	}
	b, _ := io.ReadAll(up.Body)
	f.uploaded = string(b)
	f.gotPath = path
	return &models.File{ID: "f1", Name: up.Name, OwnerID: user.ID, IsAvatar: true, Size: int64(len(b))}, nil
}

func (f *fakeUsers) SetAvatarFromPlaceholder(_ context.Context, user *models.User, placeholderURL string) (*models.User, error) {
	if !models.IsPlaceholderAvatar(placeholderURL) {
		return nil, common.ErrorPlaceholder
	}
	u := *user
	u.AvatarURL = placeholderURL
	return &u, nil
}

func (f *fakeUsers) DeleteAccount(_ context.Context, user *models.User) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = true
	return nil
}

type fakeFiles struct {
	err        error
	params     services.ListParams
	fileID     string
	action     services.FileAction
	viewBlobID string
	uploaded   string
	onUpload   func()
}

func (f *fakeFiles) Upload(_ context.Context, user *models.User, up services.Upload, path string) (*models.File, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.onUpload != nil {
		f.onUpload()
	}
	b, _ := io.ReadAll(up.Body)
	f.uploaded = string(b)
	return &models.File{ID: "f2", Name: up.Name, OwnerID: user.ID, Size: int64(len(b))}, nil
}

func (f *fakeFiles) List(_ context.Context, user *models.User, p services.ListParams) (*services.FileList, error) {
	f.params = p
	if f.err != nil {
		return nil, f.err
	}
	docs := []*models.File{{ID: "a", Size: 3}, {ID: "b", Size: 4}}
	return &services.FileList{Documents: docs, Total: 2, TotalSize: 7}, nil
}

func (f *fakeFiles) Apply(_ context.Context, user *models.User, fileID string, action services.FileAction) (*services.ActionResult, error) {
	f.fileID = fileID
	f.action = action
	if f.err != nil {
		return nil, f.err
	}
	return &services.ActionResult{File: &models.File{ID: fileID}}, nil
}

func (f *fakeFiles) ViewURL(_ context.Context, blobID string) (string, error) {
	f.viewBlobID = blobID
	if f.err != nil {
		return "", f.err
	}
	return "https://objects.example/" + blobID + "?sig=1", nil
}

type testEnv struct {
	users  *fakeUsers
	files  *fakeFiles
	server *Server
	http   *httptest.Server
	client *resty.Client
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := &fakeUsers{user: &models.User{ID: "u1", AccountID: "acc-1", FullName: "Ann", Email: "ann@example.com"}}
	files := &fakeFiles{}
	srv := NewServer(Options{MaxUploadSize: 64}, logging.Nop(), users, files)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &testEnv{
		users:  users,
		files:  files,
		server: srv,
		http:   ts,
		client: resty.New().SetBaseURL(ts.URL),
	}
}

// signIn stores a valid session cookie in the client's jar.
func (e *testEnv) signIn(t *testing.T) {
	t.Helper()
	resp, err := e.client.R().
		SetBody(map[string]string{"accountId": "acc-1", "code": "123456"}).
		Post("/api/auth/verify")
	if err != nil || resp.StatusCode() != 200 {
		t.Fatalf("verify failed: %v %s", err, resp.String())
	}
}

package services

import (
	"context"
	"testing"

	"github.com/Vicktor007/store-lit/internal/common"
	"github.com/Vicktor007/store-lit/internal/logging"
	"github.com/Vicktor007/store-lit/internal/server/models"
	"github.com/Vicktor007/store-lit/internal/server/repositories/files"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileService(e *env) *FileService {
	return NewFileService(nil, e.rm, e.blobs, e.saga, logging.Nop())
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		kind string
		want FileAction
	}{
		{"rename", RenameAction{Name: "n"}},
		{"share", ShareAction{Emails: []string{"a@b.c"}}},
		{"delete", DeleteAction{}},
		{"useAsAvatar", UseAsAvatarAction{Path: "/"}},
		{"download", DownloadAction{}},
		{"details", DetailsAction{}},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			got, err := ParseAction(tt.kind, "n", []string{"a@b.c"})
			require.NoError(t, err)
			assert.IsType(t, tt.want, got)
		})
	}

	_, err := ParseAction("chmod", "", nil)
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestList_OwnedAndShared(t *testing.T) {
	e := newEnv(logging.Nop())
	ann := e.seedUser("u1", "ann@example.com", "", "")
	e.seedUser("u2", "bob@example.com", "", "")
	e.seedFile("f1", "b1", "u1", "a.txt", false)
	e.seedFile("f2", "b2", "u2", "shared.txt", false, "ANN@example.com")
	e.seedFile("f3", "b3", "u2", "private.txt", false)

	svc := newFileService(e)
	got, err := svc.List(context.Background(), ann, ListParams{Types: []models.FileType{models.FileTypeDocument}, Search: "  a "})
	require.NoError(t, err)

	assert.Equal(t, 2, got.Total)
	assert.Equal(t, int64(20), got.TotalSize)
	assert.Equal(t, "f1", got.Documents[0].ID)
	assert.Equal(t, "f2", got.Documents[1].ID)

	assert.Equal(t, files.ListQuery{
		OwnerID: "u1",
		Email:   "ann@example.com",
		Types:   []models.FileType{models.FileTypeDocument},
		Search:  "a",
		Sort:    files.SortCreatedDesc,
	}, e.files.lastQuery)
}

func TestList_EmptyIsNotNil(t *testing.T) {
	e := newEnv(logging.Nop())
	ann := e.seedUser("u1", "ann@example.com", "", "")

	got, err := newFileService(e).List(context.Background(), ann, ListParams{Sort: files.SortSizeAsc})
	require.NoError(t, err)
	assert.NotNil(t, got.Documents)
	assert.Zero(t, got.TotalSize)
}

func TestList_RejectsBadParams(t *testing.T) {
	e := newEnv(logging.Nop())
	ann := e.seedUser("u1", "ann@example.com", "", "")
	svc := newFileService(e)

	_, err := svc.List(context.Background(), ann, ListParams{Sort: "random"})
	assert.ErrorIs(t, err, common.ErrorValidation)
	_, err = svc.List(context.Background(), ann, ListParams{Limit: -1})
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestApply_InvisibleFileIsNotFound(t *testing.T) {
	e := newEnv(logging.Nop())
	ann := e.seedUser("u1", "ann@example.com", "", "")
	e.seedFile("f1", "b1", "u2", "secret.txt", false)
	svc := newFileService(e)

	_, err := svc.Apply(context.Background(), ann, "f1", DetailsAction{})
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = svc.Apply(context.Background(), ann, "missing", DetailsAction{})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestApply_Rename(t *testing.T) {
	e := newEnv(logging.Nop())
	ann := e.seedUser("u1", "ann@example.com", "", "")
	e.seedFile("f1", "b1", "u1", "old.pdf", false)
	svc := newFileService(e)

	res, err := svc.Apply(context.Background(), ann, "f1", RenameAction{Name: " report "})
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", res.File.Name)

	res, err = svc.Apply(context.Background(), ann, "f1", RenameAction{Name: "final.PDF"})
	require.NoError(t, err)
	assert.Equal(t, "final.PDF", res.File.Name, "extension is not doubled")

	_, err = svc.Apply(context.Background(), ann, "f1", RenameAction{Name: "  "})
	assert.ErrorIs(t, err, common.ErrorValidation)
	_, err = svc.Apply(context.Background(), ann, "f1", RenameAction{Name: "../etc"})
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestApply_OwnerOnlyActions(t *testing.T) {
	e := newEnv(logging.Nop())
	e.seedUser("u1", "ann@example.com", "", "")
	bob := e.seedUser("u2", "bob@example.com", "", "")
	e.seedFile("f1", "b1", "u1", "a.txt", false, "bob@example.com")
	svc := newFileService(e)

	_, err := svc.Apply(context.Background(), bob, "f1", RenameAction{Name: "x"})
	assert.ErrorIs(t, err, common.ErrorForbidden)
	_, err = svc.Apply(context.Background(), bob, "f1", ShareAction{Emails: []string{"eve@example.com"}})
	assert.ErrorIs(t, err, common.ErrorForbidden)
}

func TestApply_ShareNormalizesEmails(t *testing.T) {
	e := newEnv(logging.Nop())
	ann := e.seedUser("u1", "ann@example.com", "", "")
	e.seedFile("f1", "b1", "u1", "a.txt", false)
	svc := newFileService(e)

	res, err := svc.Apply(context.Background(), ann, "f1", ShareAction{Emails: []string{" Bob@Example.com", "bob@example.com", "", "eve@example.com"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"bob@example.com", "eve@example.com"}, res.File.SharedWith)

	_, err = svc.Apply(context.Background(), ann, "f1", ShareAction{Emails: []string{"not-an-email"}})
	assert.ErrorIs(t, err, common.ErrorValidation)

	res, err = svc.Apply(context.Background(), ann, "f1", ShareAction{})
	require.NoError(t, err)
	assert.Empty(t, res.File.SharedWith)
}

func TestApply_DeleteByOwner(t *testing.T) {
	e := newEnv(logging.Nop())
	ann := e.seedUser("u1", "ann@example.com", "", "")
	e.seedFile("f1", "b1", "u1", "a.txt", false)

	res, err := newFileService(e).Apply(context.Background(), ann, "f1", DeleteAction{})
	require.NoError(t, err)
	assert.True(t, res.Deleted)
	assert.Equal(t, []string{"blobs.delete b1", "files.delete f1"}, e.rec.calls)
	assert.Empty(t, e.files.rows)
	assert.Empty(t, e.blobs.objects)
}

func TestApply_DeleteCurrentAvatarResetsPointer(t *testing.T) {
	e := newEnv(logging.Nop())
	ann := e.seedUser("u1", "ann@example.com", "f1", "b1")

	res, err := newFileService(e).Apply(context.Background(), ann, "f1", DeleteAction{})
	require.NoError(t, err)
	require.NotNil(t, res.User)
	assert.Nil(t, res.User.AvatarFileID)
	assert.Equal(t, models.PlaceholderAvatars[0], e.users.rows["u1"].AvatarURL)
}

func TestApply_DeleteByRecipientLeavesShare(t *testing.T) {
	e := newEnv(logging.Nop())
	e.seedUser("u1", "ann@example.com", "", "")
	bob := e.seedUser("u2", "bob@example.com", "", "")
	e.seedFile("f1", "b1", "u1", "a.txt", false, "BOB@example.com", "eve@example.com")

	res, err := newFileService(e).Apply(context.Background(), bob, "f1", DeleteAction{})
	require.NoError(t, err)
	assert.True(t, res.Deleted)
	assert.Equal(t, []string{"eve@example.com"}, e.files.rows["f1"].SharedWith)
	assert.Contains(t, e.blobs.objects, "b1")
	assert.False(t, e.rec.has("files.delete"))
}

func TestApply_UseAsAvatar(t *testing.T) {
	e := newEnv(logging.Nop())
	ann := e.seedUser("u1", "ann@example.com", "f0", "b0")
	e.seedFile("f1", "b1", "u1", "cat.png", false)
	svc := newFileService(e)

	res, err := svc.Apply(context.Background(), ann, "f1", UseAsAvatarAction{Path: "/"})
	require.NoError(t, err)
	assert.True(t, res.File.IsAvatar)
	assert.NotEqual(t, "b1", res.File.BlobID)
	assert.Equal(t, []string{
		"files.delete f0",
		"blobs.delete b0",
		"blobs.copy b1",
		"files.create " + res.File.BlobID,
		"users.updateAvatar u1",
		"revalidate /",
	}, e.rec.calls)
	assert.Contains(t, e.files.rows, "f1", "source file stays")
}

func TestApply_UseAsAvatarRejectsNonImages(t *testing.T) {
	e := newEnv(logging.Nop())
	ann := e.seedUser("u1", "ann@example.com", "", "")
	e.seedFile("f1", "b1", "u1", "notes.txt", false)

	_, err := newFileService(e).Apply(context.Background(), ann, "f1", UseAsAvatarAction{Path: "/"})
	assert.ErrorIs(t, err, common.ErrorNotAnImage)
	assert.False(t, e.rec.has("blobs.copy"))
}

func TestApply_UseCurrentAvatarIsNoop(t *testing.T) {
	e := newEnv(logging.Nop())
	ann := e.seedUser("u1", "ann@example.com", "f1", "b1")

	res, err := newFileService(e).Apply(context.Background(), ann, "f1", UseAsAvatarAction{Path: "/"})
	require.NoError(t, err)
	assert.Equal(t, "f1", res.File.ID)
	assert.Empty(t, e.rec.calls)
}

func TestApply_DownloadAndDetails(t *testing.T) {
	e := newEnv(logging.Nop())
	e.seedUser("u1", "ann@example.com", "", "")
	bob := e.seedUser("u2", "bob@example.com", "", "")
	e.seedFile("f1", "b1", "u1", "a.txt", false, "bob@example.com")
	svc := newFileService(e)

	res, err := svc.Apply(context.Background(), bob, "f1", DownloadAction{})
	require.NoError(t, err)
	assert.Equal(t, "https://s3.local/b1?name=a.txt&attachment=true", res.URL)

	res, err = svc.Apply(context.Background(), bob, "f1", DetailsAction{})
	require.NoError(t, err)
	assert.Equal(t, "f1", res.File.ID)
	assert.Equal(t, &Owner{ID: "u1", FullName: "User u1", Email: "ann@example.com"}, res.Owner)
}

func TestViewURL(t *testing.T) {
	e := newEnv(logging.Nop())
	e.seedFile("f1", "b1", "u1", "a.png", false)
	svc := newFileService(e)

	u, err := svc.ViewURL(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, "https://s3.local/b1?name=a.png&attachment=false", u)

	_, err = svc.ViewURL(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestFileService_UploadUsesSaga(t *testing.T) {
	e := newEnv(logging.Nop())
	ann := e.seedUser("u1", "ann@example.com", "", "")

	file, err := newFileService(e).Upload(context.Background(), ann, pngUpload("pic.png", "x"), "/")
	require.NoError(t, err)
	assert.Equal(t, "u1", file.OwnerID)
	assert.False(t, file.IsAvatar)
}

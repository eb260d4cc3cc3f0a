package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI is a minimal stand-in for the store-lit server.
type fakeAPI struct {
	t          *testing.T
	gotCookie  string
	gotQuery   string
	gotAction  ActionRequest
	gotUpload  string
	gotActFile string
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	authed := func(w http.ResponseWriter, r *http.Request) bool {
		c, err := r.Cookie(sessionCookieName)
		if err != nil || c.Value != "tok-1" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized", "message": "unauthorized"})
			return false
		}
		f.gotCookie = c.Value
		return true
	}

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/api/auth/sign-in", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "ann@example.com" {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "message": "user not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"accountId": "acc-1"})
	})
	mux.HandleFunc("/api/auth/verify", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Value: "tok-1", Path: "/", HttpOnly: true})
		writeJSON(w, http.StatusOK, map[string]string{"sessionId": "s1"})
	})
	mux.HandleFunc("/api/auth/sign-out", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/api/me", func(w http.ResponseWriter, r *http.Request) {
		if !authed(w, r) {
			return
		}
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"id": "u1", "email": "ann@example.com"})
	})
	mux.HandleFunc("/api/files", func(w http.ResponseWriter, r *http.Request) {
		if !authed(w, r) {
			return
		}
		if r.Method == http.MethodPost {
			file, hdr, err := r.FormFile("file")
			require.NoError(f.t, err)
			b, _ := io.ReadAll(file)
			f.gotUpload = hdr.Filename + ":" + string(b)
			writeJSON(w, http.StatusCreated, map[string]any{"id": "f1", "name": hdr.Filename, "size": len(b)})
			return
		}
		f.gotQuery = r.URL.RawQuery
		writeJSON(w, http.StatusOK, map[string]any{
			"documents": []map[string]any{{"id": "f1", "name": "a.txt", "size": 3}},
			"total":     1,
			"totalSize": 3,
		})
	})
	mux.HandleFunc("/api/files/f1/actions", func(w http.ResponseWriter, r *http.Request) {
		if !authed(w, r) {
			return
		}
		f.gotActFile = "f1"
		_ = json.NewDecoder(r.Body).Decode(&f.gotAction)
		if f.gotAction.Action == "rename" {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden", "message": "only the owner can rename"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"url": "http://" + r.Host + "/blob"})
	})
	mux.HandleFunc("/blob", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("payload"))
	})
	return mux
}

func newTestClient(t *testing.T) (*HTTPClient, *fakeAPI, *SessionStore) {
	t.Helper()
	api := &fakeAPI{t: t}
	ts := httptest.NewServer(api.handler())
	t.Cleanup(ts.Close)

	store := &SessionStore{path: filepath.Join(t.TempDir(), sessionFileName)}
	c, err := NewHTTPClient(ts.URL, 5*time.Second, store)
	require.NoError(t, err)
	return c, api, store
}

func TestHTTPClient_SignInFlow(t *testing.T) {
	c, api, store := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))
	require.False(t, c.HasSession())

	_, err := c.Me(ctx)
	require.ErrorIs(t, err, ErrUnauthorized)

	acc, err := c.SignIn(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, "acc-1", acc)

	require.NoError(t, c.Verify(ctx, acc, "123456"))
	assert.True(t, c.HasSession())

	saved, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-1", saved)

	u, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "tok-1", api.gotCookie)

	require.NoError(t, c.SignOut(ctx))
	assert.False(t, c.HasSession())
	saved, err = store.Load()
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestHTTPClient_SignInUnknown(t *testing.T) {
	c, _, _ := newTestClient(t)

	_, err := c.SignIn(context.Background(), "who@example.com")
	require.ErrorIs(t, err, ErrNotFound)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "user not found", apiErr.Message)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestHTTPClient_SessionSurvivesRestart(t *testing.T) {
	c, _, store := newTestClient(t)
	ctx := context.Background()
	require.NoError(t, c.Verify(ctx, "acc-1", "123456"))

	again, err := NewHTTPClient(c.r.BaseURL, time.Second, store)
	require.NoError(t, err)
	assert.True(t, again.HasSession())

	_, err = again.Me(ctx)
	require.NoError(t, err)
}

func TestHTTPClient_FilesAndActions(t *testing.T) {
	c, api, _ := newTestClient(t)
	ctx := context.Background()
	require.NoError(t, c.Verify(ctx, "acc-1", "123456"))

	list, err := c.ListFiles(ctx, ListOptions{Types: []string{"image", "video"}, Sort: "name-asc", Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(3), list.TotalSize)
	assert.Contains(t, api.gotQuery, "types=image%2Cvideo")
	assert.Contains(t, api.gotQuery, "sort=name-asc")
	assert.Contains(t, api.gotQuery, "limit=5")

	src := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(src, []byte("hello"), 0o600))
	f, err := c.UploadFile(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", f.Name)
	assert.Equal(t, "notes.txt:hello", api.gotUpload)

	_, err = c.FileAction(ctx, "f1", ActionRequest{Action: "rename", Name: "x"})
	require.ErrorIs(t, err, ErrForbidden)

	res, err := c.FileAction(ctx, "f1", ActionRequest{Action: "download"})
	require.NoError(t, err)
	assert.Equal(t, "download", api.gotAction.Action)

	dest := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, c.Download(ctx, res.URL, dest))
	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))
}

func TestHTTPClient_UploadMissingFile(t *testing.T) {
	c, _, _ := newTestClient(t)

	_, err := c.UploadFile(context.Background(), filepath.Join(t.TempDir(), "nope"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestHTTPClient_DeleteAccountClearsSession(t *testing.T) {
	c, _, store := newTestClient(t)
	ctx := context.Background()
	require.NoError(t, c.Verify(ctx, "acc-1", "123456"))

	require.NoError(t, c.DeleteAccount(ctx))
	assert.False(t, c.HasSession())
	saved, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestHTTPClient_Unavailable(t *testing.T) {
	store := &SessionStore{path: filepath.Join(t.TempDir(), sessionFileName)}
	c, err := NewHTTPClient("http://127.0.0.1:1", time.Second, store)
	require.NoError(t, err)

	err = c.Ping(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestNewSessionStore_CreatesDir(t *testing.T) {
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(old) })

	s, err := NewSessionStore(".store-lit")
	require.NoError(t, err)
	require.NoError(t, s.Save("abc"))

	_, err = os.Stat(filepath.Join(".store-lit", "session"))
	require.NoError(t, err)
}

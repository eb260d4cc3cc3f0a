package client

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Vicktor007/store-lit/internal/client/models"
	"github.com/Vicktor007/store-lit/internal/common"
	"github.com/go-resty/resty/v2"
)

const sessionCookieName = common.SessionCookieName

type HTTPClient struct {
	r       *resty.Client
	session *SessionStore

	mu     sync.RWMutex
	secret string
}

// NewHTTPClient returns a client for the API at baseURL. A session saved by
// an earlier run is picked up from store.
func NewHTTPClient(baseURL string, timeout time.Duration, store *SessionStore) (*HTTPClient, error) {
	secret, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}

	r := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetCookieJar(nil).
		SetHeader("Accept", "application/json")

	return &HTTPClient{r: r, session: store, secret: secret}, nil
}

func (c *HTTPClient) HasSession() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.secret != ""
}

func (c *HTTPClient) setSecret(secret string) error {
	c.mu.Lock()
	c.secret = secret
	c.mu.Unlock()

	if secret == "" {
		return c.session.Clear()
	}
	return c.session.Save(secret)
}

// request starts a request carrying ctx, the session cookie and an error
// body decoder.
func (c *HTTPClient) request(ctx context.Context) *resty.Request {
	req := c.r.R().SetContext(ctx).SetError(&APIError{})

	c.mu.RLock()
	secret := c.secret
	c.mu.RUnlock()
	if secret != "" {
		req.SetCookie(&http.Cookie{Name: sessionCookieName, Value: secret})
	}
	return req
}

// check turns a transport error or a non-2xx reply into an error.
func check(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !resp.IsError() {
		return nil
	}
	apiErr, ok := resp.Error().(*APIError)
	if !ok || apiErr == nil {
		apiErr = &APIError{}
	}
	apiErr.Status = resp.StatusCode()
	return apiErr
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	if err := check(c.request(ctx).SetResult(&out).Get("/health")); err != nil {
		return err
	}
	if out.Status != "ok" {
		return ErrUnavailable
	}
	return nil
}

type accountReply struct {
	AccountID string `json:"accountId"`
}

func (c *HTTPClient) SignUp(ctx context.Context, fullName, email string) (string, error) {
	var out accountReply
	err := check(c.request(ctx).
		SetBody(map[string]string{"fullName": fullName, "email": email}).
		SetResult(&out).
		Post("/api/auth/sign-up"))
	return out.AccountID, err
}

func (c *HTTPClient) SignIn(ctx context.Context, email string) (string, error) {
	var out accountReply
	err := check(c.request(ctx).
		SetBody(map[string]string{"email": email}).
		SetResult(&out).
		Post("/api/auth/sign-in"))
	return out.AccountID, err
}

// Verify exchanges a one-time code for a session and stores it.
func (c *HTTPClient) Verify(ctx context.Context, accountID, code string) error {
	resp, err := c.request(ctx).
		SetBody(map[string]string{"accountId": accountID, "code": code}).
		Post("/api/auth/verify")
	if err := check(resp, err); err != nil {
		return err
	}

	for _, ck := range resp.Cookies() {
		if ck.Name == sessionCookieName && ck.Value != "" {
			return c.setSecret(ck.Value)
		}
	}
	return fmt.Errorf("%w: no session cookie in reply", ErrUnauthorized)
}

// SignOut ends the session on the server and forgets it locally, even when
// the server is unreachable.
func (c *HTTPClient) SignOut(ctx context.Context) error {
	err := check(c.request(ctx).Post("/api/auth/sign-out"))
	if clearErr := c.setSecret(""); clearErr != nil {
		return clearErr
	}
	return err
}

func (c *HTTPClient) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := check(c.request(ctx).SetResult(&u).Get("/api/me")); err != nil {
		return nil, err
	}
	return &u, nil
}

// upload sends the file at path as the "file" part of a multipart request.
func (c *HTTPClient) upload(ctx context.Context, method, url, path string) (*models.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out models.File
	err = check(c.request(ctx).
		SetFileReader("file", filepath.Base(path), f).
		SetFormData(map[string]string{"path": "/"}).
		SetResult(&out).
		Execute(method, url))
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) UploadAvatar(ctx context.Context, path string) (*models.File, error) {
	return c.upload(ctx, http.MethodPut, "/api/me/avatar", path)
}

func (c *HTTPClient) UploadFile(ctx context.Context, path string) (*models.File, error) {
	return c.upload(ctx, http.MethodPost, "/api/files", path)
}

func (c *HTTPClient) SetPlaceholderAvatar(ctx context.Context, url string) (*models.User, error) {
	var u models.User
	err := check(c.request(ctx).
		SetBody(map[string]string{"url": url}).
		SetResult(&u).
		Put("/api/me/avatar/placeholder"))
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// DeleteAccount removes the account and forgets the session once the server
// confirms.
func (c *HTTPClient) DeleteAccount(ctx context.Context) error {
	if err := check(c.request(ctx).Delete("/api/me")); err != nil {
		return err
	}
	return c.setSecret("")
}

func (c *HTTPClient) ListFiles(ctx context.Context, opts ListOptions) (*models.FileList, error) {
	req := c.request(ctx)
	if len(opts.Types) > 0 {
		req.SetQueryParam("types", strings.Join(opts.Types, ","))
	}
	if opts.Query != "" {
		req.SetQueryParam("query", opts.Query)
	}
	if opts.Sort != "" {
		req.SetQueryParam("sort", opts.Sort)
	}
	if opts.Limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(opts.Limit))
	}

	var out models.FileList
	if err := check(req.SetResult(&out).Get("/api/files")); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) FileAction(ctx context.Context, fileID string, action ActionRequest) (*models.ActionResult, error) {
	var out models.ActionResult
	err := check(c.request(ctx).
		SetPathParam("id", fileID).
		SetBody(action).
		SetResult(&out).
		Post("/api/files/{id}/actions"))
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Download saves the object behind a presigned url to dest. The session
// cookie is not sent to the object store.
func (c *HTTPClient) Download(ctx context.Context, url, dest string) error {
	resp, err := resty.New().
		SetTimeout(c.r.GetClient().Timeout).
		R().
		SetContext(ctx).
		SetOutput(dest).
		Get(url)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.IsError() {
		_ = os.Remove(dest)
		return &APIError{Status: resp.StatusCode(), Kind: "download_failed"}
	}
	return nil
}

// Package api is the HTTP transport of the store-lit server. It exposes the
// user and file services as JSON endpoints behind a session cookie and
// redirects file view links to presigned object URLs.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/Vicktor007/store-lit/internal/common"
	"github.com/Vicktor007/store-lit/internal/logging"
	"github.com/Vicktor007/store-lit/internal/server/models"
	"github.com/Vicktor007/store-lit/internal/server/services"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

const SessionCookieName = common.SessionCookieName

// UserService is the account side of the API.
type UserService interface {
	CreateAccount(ctx context.Context, fullName, email string) (string, error)
	SignIn(ctx context.Context, email string) (string, error)
	VerifySecret(ctx context.Context, accountID, code string) (string, error)
	GetCurrentUser(ctx context.Context, secret string) (*models.User, error)
	SignOut(ctx context.Context, secret string) error
	SetAvatarFromUpload(ctx context.Context, user *models.User, up services.Upload, path string) (*models.File, error)
	SetAvatarFromPlaceholder(ctx context.Context, user *models.User, placeholderURL string) (*models.User, error)
	DeleteAccount(ctx context.Context, user *models.User) error
}

// FileService is the file side of the API.
type FileService interface {
	Upload(ctx context.Context, user *models.User, up services.Upload, path string) (*models.File, error)
	List(ctx context.Context, user *models.User, p services.ListParams) (*services.FileList, error)
	Apply(ctx context.Context, user *models.User, fileID string, action services.FileAction) (*services.ActionResult, error)
	ViewURL(ctx context.Context, blobID string) (string, error)
}

// Options tune the transport.
type Options struct {
	Address       string
	SecureCookie  bool
	MaxUploadSize int64
}

type Server struct {
	opts     Options
	router   *chi.Mux
	users    UserService
	files    FileService
	validate *validator.Validate
	logger   logging.Logger
}

func NewServer(opts Options, l logging.Logger, us UserService, fs FileService) *Server {
	s := &Server{
		opts:     opts,
		router:   chi.NewRouter(),
		users:    us,
		files:    fs,
		validate: validator.New(),
		logger:   l.With("module", "http_server"),
	}
	s.routes()
	return s
}

// Handler returns the root handler with every route mounted.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(requestLogger(s.logger))

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/files/*", s.handleView)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/sign-up", s.handleSignUp)
			r.Post("/sign-in", s.handleSignIn)
			r.Post("/verify", s.handleVerify)
			r.Post("/sign-out", s.handleSignOut)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireUser)

			r.Get("/me", s.handleMe)
			r.Delete("/me", s.handleDeleteAccount)
			r.Put("/me/avatar", s.handleAvatarUpload)
			r.Put("/me/avatar/placeholder", s.handleAvatarPlaceholder)

			r.Get("/files", s.handleListFiles)
			r.Post("/files", s.handleUploadFile)
			r.Post("/files/{id}/actions", s.handleFileAction)
		})
	})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {

	listen, err := net.Listen("tcp", s.opts.Address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, "graceful shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

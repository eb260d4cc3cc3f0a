package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Vicktor007/store-lit/internal/common"
	"github.com/Vicktor007/store-lit/internal/logging"
	"github.com/Vicktor007/store-lit/internal/server/models"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

type contextKey string

const userKey contextKey = "user"

// responseWriter records the status and body size of a response.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

func requestLogger(l logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			l.Info(r.Context(), "request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.statusCode,
				"duration", time.Since(start),
				"bytes", wrapped.written,
				"request_id", chimiddleware.GetReqID(r.Context()),
			)
		})
	}
}

// requireUser resolves the session cookie to the current User and rejects
// the request with 401 when there is none.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(SessionCookieName)
		if err != nil || c.Value == "" {
			s.writeError(w, common.ErrorUnauthorized)
			return
		}

		user, err := s.users.GetCurrentUser(r.Context(), c.Value)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				err = common.ErrorUnauthorized
			}
			if !isAuthError(err) {
				s.logger.Error(r.Context(), "resolving session failed", "error", err)
			}
			s.writeError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userFromContext(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey).(*models.User)
	return u
}

func (s *Server) setSessionCookie(w http.ResponseWriter, secret string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    secret,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   s.opts.SecureCookie,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   s.opts.SecureCookie,
	})
}

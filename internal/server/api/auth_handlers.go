package api

import (
	"net/http"

	"github.com/Vicktor007/store-lit/internal/server/auth"
)

type signUpRequest struct {
	FullName string `json:"fullName" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
}

type signInRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type verifyRequest struct {
	AccountID string `json:"accountId" validate:"required"`
	Code      string `json:"code" validate:"required,numeric,len=6"`
}

type accountResponse struct {
	AccountID string `json:"accountId"`
}

type sessionResponse struct {
	SessionID string `json:"sessionId"`
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	accountID, err := s.users.CreateAccount(r.Context(), req.FullName, req.Email)
	if err != nil {
		s.logFailure(r, "sign-up failed", err)
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, accountResponse{AccountID: accountID})
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	accountID, err := s.users.SignIn(r.Context(), req.Email)
	if err != nil {
		s.logFailure(r, "sign-in failed", err)
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, accountResponse{AccountID: accountID})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	secret, err := s.users.VerifySecret(r.Context(), req.AccountID, req.Code)
	if err != nil {
		s.logFailure(r, "verification failed", err)
		s.writeError(w, err)
		return
	}

	s.setSessionCookie(w, secret)
	s.writeJSON(w, http.StatusOK, sessionResponse{SessionID: auth.SessionIDOf(secret)})
}

// handleSignOut always clears the cookie, even without a live session.
func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		if err := s.users.SignOut(r.Context(), c.Value); err != nil {
			s.logger.Warn(r.Context(), "ending session failed", "error", err)
		}
	}
	s.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// logFailure logs errors that are not the caller's fault.
func (s *Server) logFailure(r *http.Request, msg string, err error, kv ...any) {
	if status, _ := errorStatus(err); status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), msg, append(kv, "error", err)...)
	}
}

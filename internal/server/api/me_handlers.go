package api

import (
	"net/http"
)

type placeholderRequest struct {
	URL string `json:"url" validate:"required,url"`
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, userFromContext(r.Context()))
}

func (s *Server) handleAvatarUpload(w http.ResponseWriter, r *http.Request) {
	up, closer, path, err := s.readUpload(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer closer.Close()

	file, err := s.users.SetAvatarFromUpload(r.Context(), userFromContext(r.Context()), up, path)
	if err != nil {
		s.logFailure(r, "avatar upload failed", err)
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, file)
}

func (s *Server) handleAvatarPlaceholder(w http.ResponseWriter, r *http.Request) {
	var req placeholderRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	user, err := s.users.SetAvatarFromPlaceholder(r.Context(), userFromContext(r.Context()), req.URL)
	if err != nil {
		s.logFailure(r, "placeholder avatar failed", err)
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, user)
}

// handleDeleteAccount removes the user and their files. A failed cascade
// keeps the session so the client can retry.
func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.users.DeleteAccount(r.Context(), userFromContext(r.Context())); err != nil {
		s.logFailure(r, "account deletion failed", err)
		s.writeError(w, err)
		return
	}
	s.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Vicktor007/store-lit/internal/common"
	"github.com/Vicktor007/store-lit/internal/server/models"
	"github.com/Vicktor007/store-lit/internal/server/services"
	"github.com/go-chi/chi/v5"
)

type actionRequest struct {
	Action string   `json:"action" validate:"required,oneof=rename share delete useAsAvatar download details"`
	Name   string   `json:"name"`
	Emails []string `json:"emails"`
}

// listParams reads ?types=a,b&query=&sort=&limit= into ListParams.
func listParams(r *http.Request) (services.ListParams, error) {
	q := r.URL.Query()
	p := services.ListParams{
		Search: q.Get("query"),
		Sort:   q.Get("sort"),
	}

	if raw := q.Get("types"); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			t, ok := models.ParseFileType(strings.TrimSpace(name))
			if !ok {
				return p, fmt.Errorf("%w: unknown file type %q", common.ErrorValidation, name)
			}
			p.Types = append(p.Types, t)
		}
	}

	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return p, fmt.Errorf("%w: limit must be a number", common.ErrorValidation)
		}
		p.Limit = n
	}
	return p, nil
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	p, err := listParams(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	list, err := s.files.List(r.Context(), userFromContext(r.Context()), p)
	if err != nil {
		s.logFailure(r, "listing files failed", err)
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	up, closer, path, err := s.readUpload(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer closer.Close()

	file, err := s.files.Upload(r.Context(), userFromContext(r.Context()), up, path)
	if err != nil {
		s.logFailure(r, "file upload failed", err)
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, file)
}

func (s *Server) handleFileAction(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	action, err := services.ParseAction(req.Action, req.Name, req.Emails)
	if err != nil {
		s.writeError(w, err)
		return
	}

	res, err := s.files.Apply(r.Context(), userFromContext(r.Context()), chi.URLParam(r, "id"), action)
	if err != nil {
		s.logFailure(r, "file action failed", err, "action", req.Action)
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

// handleView redirects /files/{blobId}/view to a short-lived object URL.
// Blob ids contain slashes, so the id is everything between the prefix and
// the /view suffix.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	rest := chi.URLParam(r, "*")
	blobID, ok := strings.CutSuffix(rest, "/view")
	if !ok || blobID == "" {
		s.writeError(w, common.ErrorNotFound)
		return
	}

	url, err := s.files.ViewURL(r.Context(), blobID)
	if err != nil {
		s.logFailure(r, "view redirect failed", err, "blob_id", blobID)
		s.writeError(w, err)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Vicktor007/store-lit/internal/common"
	"github.com/Vicktor007/store-lit/internal/server/services"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.logger.Error(context.Background(), "failed to encode JSON response", "error", err)
		}
	}
}

func isAuthError(err error) bool {
	return errors.Is(err, common.ErrorUnauthorized) ||
		errors.Is(err, common.ErrInvalidToken) ||
		errors.Is(err, common.ErrTokenExpired) ||
		errors.Is(err, common.ErrCodeExpired) ||
		errors.Is(err, common.ErrCodeMismatch) ||
		errors.Is(err, common.ErrTooManyAttempts)
}

// errorStatus maps err to a status code and a machine-readable error type.
func errorStatus(err error) (int, string) {
	if kind, ok := services.KindOf(err); ok {
		return http.StatusBadGateway, string(kind)
	}

	switch {
	case errors.Is(err, common.ErrorValidation),
		errors.Is(err, common.ErrorPlaceholder),
		errors.Is(err, common.ErrorNotAnImage):
		return http.StatusBadRequest, "validation_error"
	case isAuthError(err):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, common.ErrorFileTooBig):
		return http.StatusRequestEntityTooLarge, "file_too_large"
	}
	return http.StatusInternalServerError, "internal_error"
}

// writeError sends err as an ErrorResponse. Messages of unclassified errors
// are not exposed.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status, kind := errorStatus(err)

	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "An internal error occurred"
	}
	var se *services.SagaError
	if errors.As(err, &se) {
		msg = se.Message
	}

	s.writeJSON(w, status, ErrorResponse{Error: kind, Message: msg})
}

// decodeJSON reads the request body into dst and validates it.
func (s *Server) decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed request body", common.ErrorValidation)
	}
	if err := s.validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %s", common.ErrorValidation, err.Error())
	}
	return nil
}

package services

import (
	"errors"

	"github.com/Vicktor007/store-lit/internal/common"
)

// ErrorKind classifies why a saga stopped.
type ErrorKind string

const (
	// KindCleanup: removing the prior avatar failed; nothing new was stored.
	KindCleanup ErrorKind = "cleanup_failed"
	// KindUpload: the object store rejected the new blob; nothing was stored.
	KindUpload ErrorKind = "upload_failed"
	// KindDocumentCreate: the File document could not be written. The blob was
	// deleted again before returning.
	KindDocumentCreate ErrorKind = "document_create_failed"
	// KindPointerUpdate: the new File exists but the User still points at the
	// previous avatar. Not compensated.
	KindPointerUpdate ErrorKind = "pointer_update_failed"
	// KindCascadeDeletion: account deletion stopped part way. Safe to retry.
	KindCascadeDeletion ErrorKind = "cascade_deletion_failed"
)

// SagaError is returned by the avatar, upload and account deletion sagas.
type SagaError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *SagaError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *SagaError) Unwrap() error { return e.Err }

func sagaError(kind ErrorKind, msg string, err error) *SagaError {
	return &SagaError{Kind: kind, Message: msg, Err: err}
}

// KindOf returns the kind of the first SagaError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var se *SagaError
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return "", false
}

// isNotFound reports whether a store call failed only because its target is
// already gone.
func isNotFound(err error) bool {
	return errors.Is(err, common.ErrorNotFound)
}

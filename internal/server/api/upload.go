package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/Vicktor007/store-lit/internal/common"
	"github.com/Vicktor007/store-lit/internal/server/services"
)

const (
	uploadFormField = "file"
	// room for the multipart envelope around the file part
	multipartOverhead = 1 << 20
)

// multipartMemory is how much of a form is kept in memory; larger parts are
// spooled to temporary files.
var multipartMemory int64 = 32 << 20

// uploadCloser closes the file part and removes the temporary files of the
// parsed form. net/http only does the latter for the request it created, not
// for the copies middleware hands down.
type uploadCloser struct {
	part multipart.File
	form *multipart.Form
}

func (c uploadCloser) Close() error {
	var err error
	if c.part != nil {
		err = c.part.Close()
	}
	if rmErr := c.form.RemoveAll(); err == nil {
		err = rmErr
	}
	return err
}

// readUpload extracts the "file" part of a multipart request. Files over
// MaxUploadSize are rejected with common.ErrorFileTooBig before any of them
// reaches the object store. The returned closer releases the part and any
// temporary files of the form.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (services.Upload, io.Closer, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadSize+multipartOverhead)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return services.Upload{}, nil, "", common.ErrorFileTooBig
		}
		return services.Upload{}, nil, "", fmt.Errorf("%w: expected a multipart form", common.ErrorValidation)
	}

	f, hdr, err := r.FormFile(uploadFormField)
	if err != nil {
		_ = r.MultipartForm.RemoveAll()
		return services.Upload{}, nil, "", fmt.Errorf("%w: missing %q part", common.ErrorValidation, uploadFormField)
	}
	closer := uploadCloser{part: f, form: r.MultipartForm}
	if hdr.Size > s.opts.MaxUploadSize {
		_ = closer.Close()
		return services.Upload{}, nil, "", common.ErrorFileTooBig
	}

	path := r.FormValue("path")
	if path == "" {
		path = "/"
	}

	return services.Upload{
		Name:        hdr.Filename,
		Body:        f,
		Size:        hdr.Size,
		ContentType: contentType(hdr),
	}, closer, path, nil
}

func contentType(hdr *multipart.FileHeader) string {
	if ct := hdr.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

package models

import (
	"path/filepath"
	"strings"
	"time"
)

// FileType is the coarse category derived from a file's extension.
type FileType string

const (
	FileTypeDocument FileType = "document"
	FileTypeImage    FileType = "image"
	FileTypeVideo    FileType = "video"
	FileTypeAudio    FileType = "audio"
	FileTypeOther    FileType = "other"
)

// FileTypes lists every FileType in display order.
var FileTypes = []FileType{FileTypeDocument, FileTypeImage, FileTypeVideo, FileTypeAudio, FileTypeOther}

var extensionTypes = map[string]FileType{}

func init() {
	register := func(t FileType, exts ...string) {
		for _, e := range exts {
			extensionTypes[e] = t
		}
	}
	register(FileTypeDocument, "pdf", "doc", "docx", "txt", "xls", "xlsx", "csv", "rtf", "ods", "ppt",
		"odp", "md", "html", "htm", "epub", "pages", "fig", "psd", "ai", "indd", "xd", "sketch",
		"afdesign", "afphoto")
	register(FileTypeImage, "jpg", "jpeg", "png", "gif", "bmp", "svg", "webp")
	register(FileTypeVideo, "mp4", "avi", "mov", "mkv", "webm")
	register(FileTypeAudio, "mp3", "wav", "ogg", "flac")
}

// ParseFileType returns the FileType named s and whether it is known.
func ParseFileType(s string) (FileType, bool) {
	for _, t := range FileTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// DetectFileType derives the type and the lower-cased extension (without
// the dot) from a file name. Names without an extension are FileTypeOther.
func DetectFileType(name string) (FileType, string) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext == "" {
		return FileTypeOther, ""
	}
	if t, ok := extensionTypes[ext]; ok {
		return t, ext
	}
	return FileTypeOther, ext
}

// File is the document describing one stored blob.
type File struct {
	ID         string    `json:"id"`
	BlobID     string    `json:"blobId"`
	OwnerID    string    `json:"ownerId"`
	Name       string    `json:"name"`
	Extension  string    `json:"extension"`
	Type       FileType  `json:"type"`
	Size       int64     `json:"size"`
	URL        string    `json:"url"`
	SharedWith []string  `json:"sharedWith"`
	IsAvatar   bool      `json:"isAvatar"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// IsSharedWith reports whether email is among the file's recipients.
// Comparison ignores case.
func (f *File) IsSharedWith(email string) bool {
	for _, e := range f.SharedWith {
		if strings.EqualFold(e, email) {
			return true
		}
	}
	return false
}

// Blob is the metadata the object store reports for a stored payload.
type Blob struct {
	ID          string
	Name        string
	Size        int64
	ContentType string
}

package client

import (
	"path/filepath"
	"strings"

	"github.com/Vicktor007/store-lit/internal/filex"
)

const sessionFileName = "session"

// SessionStore keeps the session cookie value in a file so it survives CLI
// restarts.
type SessionStore struct {
	path string
}

// NewSessionStore places the session file in dir under the working
// directory, creating dir if needed.
func NewSessionStore(dir string) (*SessionStore, error) {
	abs, err := filex.EnsureSubdDir(dir)
	if err != nil {
		return nil, err
	}
	return &SessionStore{path: filepath.Join(abs, sessionFileName)}, nil
}

// Load returns the stored secret or "" if there is none.
func (s *SessionStore) Load() (string, error) {
	data, ok, err := filex.ReadIfExists(s.path)
	if err != nil || !ok {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *SessionStore) Save(secret string) error {
	return filex.WritePrivate(s.path, []byte(secret))
}

func (s *SessionStore) Clear() error {
	return filex.RemoveIfExists(s.path)
}

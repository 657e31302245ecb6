package auth

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	pkgerrors "github.com/pdv-commerce/storefront/pkg/errors"
)

// Session is the authenticated identity cached between invocations.
type Session struct {
	Token    string `json:"token"`
	UserID   int64  `json:"user_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	UserType string `json:"user_type"`
}

// SessionStore persists the single active session.
type SessionStore interface {
	Save(session Session) error
	Load() (Session, bool, error)
	Clear() error
}

// MemorySessionStore holds the session in process memory.
type MemorySessionStore struct {
	mu      sync.Mutex
	session Session
	present bool
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{}
}

func (s *MemorySessionStore) Save(session Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session
	s.present = true
	return nil
}

func (s *MemorySessionStore) Load() (Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session, s.present, nil
}

func (s *MemorySessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = Session{}
	s.present = false
	return nil
}

// FileSessionStore keeps the session in a JSON file so the CLI stays
// logged in across runs.
type FileSessionStore struct {
	mu   sync.Mutex
	path string
}

// NewFileSessionStore opens a file backed store at path. When path is
// empty the session file lands under the user config dir.
func NewFileSessionStore(path string) (*FileSessionStore, error) {
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve config dir")
		}
		path = filepath.Join(dir, "storefront", "session.json")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create session dir")
	}
	return &FileSessionStore{path: path}, nil
}

func (s *FileSessionStore) Save(session Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(session)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode session")
	}
	if err := os.WriteFile(s.path, payload, 0o600); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write session file")
	}
	return nil
}

func (s *FileSessionStore) Load() (Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read session file")
	}

	var session Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return Session{}, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode session file")
	}
	return session, session.Token != "", nil
}

func (s *FileSessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove session file")
	}
	return nil
}

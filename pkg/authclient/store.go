package authclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrCorruptStore reports persisted session data that no longer parses.
// Callers treat it as "no session": clear the store and start anonymous.
var ErrCorruptStore = errors.New("persisted session data is corrupt")

// Profile is the user record carried by an authenticated session.
type Profile struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Role        string `json:"role"`
	IsActive    bool   `json:"is_active"`
}

// Session is the authenticated identity of the current actor. A session is
// either fully authenticated (non-empty Token and non-nil User) or fully
// anonymous; no other combination is valid.
type Session struct {
	Token        string   `json:"token"`
	RefreshToken string   `json:"refresh_token,omitempty"`
	User         *Profile `json:"user"`
}

// Valid reports whether the session holds a token and a profile together.
func (s *Session) Valid() bool {
	return s != nil && s.Token != "" && s.User != nil
}

// CredentialStore persists the current session across process restarts.
// Save and Clear always act on the token and profile together; a store never
// holds one without the other.
type CredentialStore interface {
	// Save durably writes the session.
	Save(session *Session) error
	// Load returns the last saved session, (nil, nil) when nothing is
	// stored, or ErrCorruptStore when the stored data does not parse.
	Load() (*Session, error)
	// Clear removes any persisted session.
	Clear() error
}

// FileStore persists the session as a JSON file. Writes go through a temp
// file and rename so a crash mid-write never leaves a torn session on disk.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a FileStore at the given path. Parent directories are
// created on the first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Save(session *Session) error {
	if !session.Valid() {
		return fmt.Errorf("refusing to persist a partial session")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to commit session file: %w", err)
	}
	return nil
}

func (s *FileStore) Load() (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptStore, err)
	}
	// A file holding only one half of the pair is as unusable as garbage.
	if !session.Valid() {
		return nil, ErrCorruptStore
	}
	return &session, nil
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear session file: %w", err)
	}
	return nil
}

// MemoryStore keeps the session in process memory. Useful for tests and
// embedded use where durability is not wanted.
type MemoryStore struct {
	mu      sync.Mutex
	session *Session
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(session *Session) error {
	if !session.Valid() {
		return fmt.Errorf("refusing to persist a partial session")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *session
	if session.User != nil {
		user := *session.User
		copied.User = &user
	}
	s.session = &copied
	return nil
}

func (s *MemoryStore) Load() (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil, nil
	}
	copied := *s.session
	if s.session.User != nil {
		user := *s.session.User
		copied.User = &user
	}
	return &copied, nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	return nil
}

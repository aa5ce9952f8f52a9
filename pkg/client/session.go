package client

import (
	"encoding/json"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/marktrack/marktrack-api/internal/models"
)

// Session binds an access token to the identity projection decoded from it.
// A session without a usable identity is equivalent to logged out.
type Session struct {
	Token    string          `json:"token"`
	Identity models.UserInfo `json:"identity"`
	SavedAt  time.Time       `json:"saved_at"`
}

func (s *Session) valid() bool {
	return s != nil && s.Token != "" && s.Identity.ID != ""
}

// SessionStore persists the session between runs. Load returns nil with no
// error when no session exists.
type SessionStore interface {
	Load() (*Session, error)
	Save(s *Session) error
	Clear() error
}

// MemoryStore keeps the session in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	session *Session
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns the stored session, or nil when logged out.
func (m *MemoryStore) Load() (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.session.valid() {
		return nil, nil
	}
	copied := *m.session
	return &copied, nil
}

// Save stores a session.
func (m *MemoryStore) Save(s *Session) error {
	if !s.valid() {
		return errors.New("refusing to save a partial session")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *s
	m.session = &copied
	return nil
}

// Clear drops the session.
func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	return nil
}

// FileStore persists the session as a JSON file, the CLI equivalent of a
// browser's persistent storage.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a store writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the session file. A missing or corrupt file loads as logged out.
func (f *FileStore) Load() (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, nil
	}
	if !s.valid() {
		return nil, nil
	}
	return &s, nil
}

// Save writes the session file with owner-only permissions.
func (f *FileStore) Save(s *Session) error {
	if !s.valid() {
		return errors.New("refusing to save a partial session")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0o600)
}

// Clear removes the session file.
func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/duynhne/loaner-service/internal/core/domain"
)

// Storage keys, shared by every Store implementation.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Store persists the bearer token and the serialised user between runs.
type Store interface {
	// Load returns the stored token and user. Missing entries come back as
	// "" and nil; that is not an error.
	Load() (string, *domain.AuthUser, error)
	Save(token string, user domain.AuthUser) error
	Clear() error
}

// MemoryStore keeps credentials in process memory.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]string{}}
}

func (s *MemoryStore) Load() (string, *domain.AuthUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return decodeValues(s.values)
}

func (s *MemoryStore) Save(token string, user domain.AuthUser) error {
	values, err := encodeValues(token, user)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = values
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = map[string]string{}
	return nil
}

// Get returns the raw value stored under key.
func (s *MemoryStore) Get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key]
}

// FileStore keeps credentials in a JSON object on disk, readable only by
// the owner.
type FileStore struct {
	path string
}

// NewFileStore returns a FileStore backed by path. The file is created on
// first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultStatePath returns the state file location under the user config
// directory.
func DefaultStatePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "loanerctl", "session.json"), nil
}

func (s *FileStore) Load() (string, *domain.AuthUser, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	values := map[string]string{}
	if err := json.Unmarshal(data, &values); err != nil {
		return "", nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return decodeValues(values)
}

func (s *FileStore) Save(token string, user domain.AuthUser) error {
	values, err := encodeValues(token, user)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", s.path, err)
	}
	return nil
}

func encodeValues(token string, user domain.AuthUser) (map[string]string, error) {
	encoded, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("encode user: %w", err)
	}
	return map[string]string{KeyToken: token, KeyUser: string(encoded)}, nil
}

// decodeValues treats an empty or "{}" user entry as absent.
func decodeValues(values map[string]string) (string, *domain.AuthUser, error) {
	token := values[KeyToken]
	raw := values[KeyUser]
	if raw == "" || raw == "{}" {
		return token, nil, nil
	}

	var user domain.AuthUser
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return token, nil, fmt.Errorf("decode stored user: %w", err)
	}
	return token, &user, nil
}

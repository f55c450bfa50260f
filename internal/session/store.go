// Package session holds the persisted bearer token and the login lifecycle
// built on top of it.
package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"

	"github.com/idlab-discover/carbonscope-cli/internal/api"
)

// TokenKey is the fixed key the token is stored under.
const TokenKey = "auth_token"

// TokenStore is the persistence the session and the API transport share.
type TokenStore = api.TokenStore

// FileTokenStore keeps the token in a small YAML file readable only by the
// owner. A missing file means "no token".
type FileTokenStore struct {
	Path string

	mu sync.Mutex
}

// NewFileTokenStore returns a store backed by path.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{Path: path}
}

// DefaultTokenPath is $HOME/.carbonscope/credentials.yaml.
func DefaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".carbonscope", "credentials.yaml")
	}
	return filepath.Join(home, ".carbonscope", "credentials.yaml")
}

func (s *FileTokenStore) read() (map[string]string, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}
	out := map[string]string{}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse token file %s: %w", s.Path, err)
	}
	return out, nil
}

// Token returns the stored token or "" when none is stored.
func (s *FileTokenStore) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.read()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(m[TokenKey]), nil
}

// SetToken persists token, creating the parent directory if needed.
func (s *FileTokenStore) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.read()
	if err != nil {
		// an unreadable file is replaced rather than blocking a fresh login
		m = map[string]string{}
	}
	m[TokenKey] = token
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(s.Path, data, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return os.Chmod(s.Path, 0o600)
}

// Clear removes the token. Clearing an absent token is not an error.
func (s *FileTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.Path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

// MemoryTokenStore keeps the token in memory; used by tests and the dummy
// backend.
type MemoryTokenStore struct {
	mu  sync.Mutex
	tok string
}

func (s *MemoryTokenStore) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tok, nil
}

func (s *MemoryTokenStore) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tok = token
	return nil
}

func (s *MemoryTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tok = ""
	return nil
}

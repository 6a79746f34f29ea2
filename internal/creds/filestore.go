package creds

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sibe7691/tablelink/internal/fileutil"
)

// FileStore persists credentials as JSON on disk and refreshes them via the
// auth API. Safe for concurrent use; Refresh holds the lock for the whole
// exchange so at most one refresh is in flight.
type FileStore struct {
	path string
	api  *API

	mu   sync.Mutex
	pair Credentials
}

// NewFileStore creates a store backed by the given file. The file may not
// exist yet; AccessToken returns "" until credentials are saved.
func NewFileStore(path string, api *API) (*FileStore, error) {
	s := &FileStore{path: path, api: api}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// DefaultPath returns the conventional credentials file location under the
// user config dir.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "tablelink", "credentials.json"), nil
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read credentials: %w", err)
	}
	if err := json.Unmarshal(data, &s.pair); err != nil {
		return fmt.Errorf("parse credentials file: %w", err)
	}
	return nil
}

func (s *FileStore) persist() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}
	data, err := json.MarshalIndent(s.pair, "", "  ")
	if err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

// Save replaces the stored pair, e.g. after login or register.
func (s *FileStore) Save(pair Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = pair
	return s.persist()
}

// AccessToken returns the current access token, or "" if none is stored.
func (s *FileStore) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pair.AccessToken
}

// Refresh exchanges the stored refresh token for a new pair and persists it.
func (s *FileStore) Refresh(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pair.RefreshToken == "" {
		return "", ErrNoCredentials
	}

	pair, err := s.api.Refresh(ctx, s.pair.RefreshToken)
	if err != nil {
		return "", err
	}

	s.pair = pair
	if err := s.persist(); err != nil {
		return "", err
	}
	return pair.AccessToken, nil
}

// Clear removes the stored credentials and deletes the file.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pair = Credentials{}
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

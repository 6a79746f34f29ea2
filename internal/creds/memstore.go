package creds

import (
	"context"
	"sync"
)

// MemoryStore keeps credentials in memory only. Useful for tests and for
// one-shot sessions that should not touch disk.
type MemoryStore struct {
	api *API

	mu   sync.Mutex
	pair Credentials
}

// NewMemoryStore creates an in-memory store seeded with the given pair.
func NewMemoryStore(pair Credentials, api *API) *MemoryStore {
	return &MemoryStore{pair: pair, api: api}
}

func (s *MemoryStore) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pair.AccessToken
}

func (s *MemoryStore) Refresh(ctx context.Context) (string, error) {
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
	return pair.AccessToken, nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = Credentials{}
	return nil
}

package credentials

import (
	"context"
	"sync"
)

// MemoryStore is an in-process credential store for tests.
type MemoryStore struct {
	mu     sync.Mutex
	hashes map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{hashes: make(map[string]string)}
}

func (s *MemoryStore) Save(ctx context.Context, userID, hash, version string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.hashes[userID]; ok {
		return ErrCredentialsExist
	}
	s.hashes[userID] = hash
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hash, ok := s.hashes[userID]
	if !ok {
		return "", ErrNoCredentials
	}
	return hash, nil
}

package secrets

import (
	"fmt"
	"sort"
	"sync"
)

// MemoryStore is an in-memory Store for tests and for callers that need a
// throwaway secret scope.
type MemoryStore struct {
	mu      sync.RWMutex
	secrets map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{secrets: make(map[string]string)}
}

func (s *MemoryStore) MethodID() string { return "memory" }

func (s *MemoryStore) MethodDescription() string {
	return "In-memory store (testing only)"
}

func (s *MemoryStore) Set(key, secret, _ string) bool {
	if !validRecord(s.MethodID(), key, secret) {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secrets[key] = secret
	return true
}

func (s *MemoryStore) Get(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	secret, ok := s.secrets[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return secret, nil
}

func (s *MemoryStore) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.secrets, key)
	return true
}

func (s *MemoryStore) Exists(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.secrets[key]
	return ok
}

func (s *MemoryStore) List() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.secrets))
	for k := range s.secrets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

package mem

import (
	"context"
	"fmt"
	"sync"

	"aqua/blob/blob"
)

// Store is an in-memory blob.Store for tests and dev mode. Uploaded
// objects are kept in a map keyed by name.
type Store struct {
	mu      sync.RWMutex
	objects map[string][]byte

	// FailNext makes the next Upload fail, for exercising the
	// UploadFailed path in tests.
	FailNext bool
}

func NewStore() *Store {
	return &Store{objects: make(map[string][]byte)}
}

func (s *Store) Upload(_ context.Context, name string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailNext {
		s.FailNext = false
		return "", fmt.Errorf("upload of %s rejected", name)
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	s.objects[name] = stored
	return "mem://receipts/" + name, nil
}

// Get returns a stored object, for test assertions.
func (s *Store) Get(name string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.objects[name]
	return data, ok
}

var _ blob.Store = (*Store)(nil)

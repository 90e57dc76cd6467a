package watermark

import (
	"context"
	"sync"
)

// MemoryStore is a process-local store. Valid for single-process deployments
// that accept a full re-scan after restart, and for tests.
type MemoryStore struct {
	mu sync.Mutex
	id string
	ok bool
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Read(ctx context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id, s.ok, nil
}

func (s *MemoryStore) Write(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = id
	s.ok = true
	return nil
}

package store

import (
	"context"
	"sync"
)

// MemoryStore is a minimal in-memory Store intended for tests and examples.
// Payloads are copied on the way in and out.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[string][]byte{}}
}

func (s *MemoryStore) Load(ctx context.Context, name string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if err := ValidateName(name); err != nil {
		return nil, false, err
	}

	s.mu.RLock()
	record, ok := s.records[name]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), record...), true, nil
}

func (s *MemoryStore) Save(ctx context.Context, name string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateName(name); err != nil {
		return err
	}

	s.mu.Lock()
	if s.records == nil {
		s.records = map[string][]byte{}
	}
	s.records[name] = append([]byte(nil), payload...)
	s.mu.Unlock()
	return nil
}

// Put replaces the payload for name without validation. Tests use it to
// plant corrupted saves.
func (s *MemoryStore) Put(name string, payload []byte) {
	s.mu.Lock()
	if s.records == nil {
		s.records = map[string][]byte{}
	}
	s.records[name] = append([]byte(nil), payload...)
	s.mu.Unlock()
}

// Delete removes the payload for name.
func (s *MemoryStore) Delete(name string) {
	s.mu.Lock()
	delete(s.records, name)
	s.mu.Unlock()
}

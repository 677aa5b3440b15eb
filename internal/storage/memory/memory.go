package memory

import (
	"context"
	"sync"
)

// Store keeps values in process memory. Values do not survive a restart.
type Store struct {
	mu    sync.Mutex
	items map[string][]byte
}

func New() *Store {
	return &Store{items: make(map[string][]byte)}
}

// NewWith returns a store pre-populated with the given values.
func NewWith(seed map[string][]byte) *Store {
	s := New()
	for k, v := range seed {
		s.items[k] = append([]byte(nil), v...)
	}
	return s
}

// Get returns a copy of the value stored under key.
func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = append([]byte(nil), value...)
	return nil
}

// Len reports the number of stored keys.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Discard is a no-op backend: every key is absent and writes are dropped.
// It stands in for durable storage where none is available.
type Discard struct{}

func (Discard) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (Discard) Set(context.Context, string, []byte) error         { return nil }

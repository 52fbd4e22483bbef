// Package memstore provides an in-memory scenario store for tests and for
// scenarios built into the binary.
package memstore

import (
	"context"
	"slices"
	"sync"

	"github.com/discochess/contagion/internal/store"
)

var _ store.Store = (*Store)(nil)

// Store is an in-memory store.
type Store struct {
	mu        sync.RWMutex
	scenarios map[string][]byte
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		scenarios: make(map[string][]byte),
	}
}

// SetScenario stores the document for a scenario.
// The data is copied to prevent caller mutations from affecting the store.
func (s *Store) SetScenario(name string, data []byte) error {
	if err := store.ValidateName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scenarios[name] = slices.Clone(data)
	return nil
}

// ReadScenario reads a scenario from memory.
func (s *Store) ReadScenario(ctx context.Context, name string) ([]byte, error) {
	if err := store.ValidateName(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.scenarios[name]
	if !ok {
		return nil, store.ErrNotFound
	}
	return slices.Clone(data), nil
}

// List returns the stored scenario names, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.scenarios))
	for name := range s.scenarios {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// Close is a no-op for the memory store.
func (s *Store) Close() error {
	return nil
}

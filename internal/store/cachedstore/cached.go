package cachedstore

import (
	"context"
	"slices"

	"github.com/discochess/contagion/internal/store"
)

var _ store.Store = (*Store)(nil)

// Store wraps another Store with caching of scenario documents.
// Listings are always served by the underlying store.
type Store struct {
	underlying store.Store
	backend    Backend
}

// New creates a new cached store wrapping the given store.
func New(underlying store.Store, backend Backend) *Store {
	return &Store{
		underlying: underlying,
		backend:    backend,
	}
}

// ReadScenario reads a scenario, checking the cache first.
func (s *Store) ReadScenario(ctx context.Context, name string) ([]byte, error) {
	if data, ok := s.backend.Get(name); ok {
		return slices.Clone(data), nil
	}

	data, err := s.underlying.ReadScenario(ctx, name)
	if err != nil {
		return nil, err
	}

	s.backend.Set(name, slices.Clone(data))
	return data, nil
}

// List delegates to the underlying store.
func (s *Store) List(ctx context.Context) ([]string, error) {
	return s.underlying.List(ctx)
}

// Close closes the underlying store.
func (s *Store) Close() error {
	return s.underlying.Close()
}

// Stats returns cache statistics.
func (s *Store) Stats() Stats {
	return s.backend.Stats()
}

// Package lru implements an LRU cache eviction strategy.
package lru

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/discochess/contagion/internal/cache"
)

var _ cache.Strategy[string, []byte] = (*Strategy[string, []byte])(nil)

// Strategy implements LRU eviction on top of hashicorp/golang-lru.
type Strategy[K comparable, V any] struct {
	cache *lru.Cache[K, V]
}

// New creates a new LRU strategy holding at most capacity entries.
func New[K comparable, V any](capacity int) (*Strategy[K, V], error) {
	c, err := lru.New[K, V](capacity)
	if err != nil {
		return nil, err
	}
	return &Strategy[K, V]{cache: c}, nil
}

// Get retrieves a value and marks it as recently used.
func (s *Strategy[K, V]) Get(key K) (V, bool) {
	return s.cache.Get(key)
}

// Add adds a value, evicting the least recently used entry if full.
func (s *Strategy[K, V]) Add(key K, value V) bool {
	return s.cache.Add(key, value)
}

// Len returns the number of items in the cache.
func (s *Strategy[K, V]) Len() int {
	return s.cache.Len()
}

// Package cache defines the eviction strategy interface shared by the
// engine's result cache and the scenario cache.
package cache

// Strategy is a bounded key/value cache with its own eviction policy.
// Implementations must be safe for concurrent use.
type Strategy[K comparable, V any] interface {
	Get(key K) (V, bool)
	// Add stores value under key and reports whether an entry was evicted.
	Add(key K, value V) bool
	Len() int
}

package engine

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// RecencyCache is a fixed-capacity map ordered by most recent access. Both Get and Put
// promote the key; inserting past capacity evicts the least recently used key first.
// Safe for concurrent use.
type RecencyCache[K comparable, V any] struct {
	cache    *lru.Cache[K, V]
	capacity int
}

// NewRecencyCache fails with a *ConfigurationError when capacity is not positive.
func NewRecencyCache[K comparable, V any](capacity int) (*RecencyCache[K, V], error) {
	if capacity <= 0 {
		return nil, &ConfigurationError{Field: "capacity", Value: capacity, Reason: "must be positive"}
	}
	cache, err := lru.New[K, V](capacity)
	if err != nil {
		return nil, &ConfigurationError{Field: "capacity", Value: capacity, Reason: err.Error()}
	}
	return &RecencyCache[K, V]{cache: cache, capacity: capacity}, nil
}

// Get returns the value for key and marks it most recently used.
func (c *RecencyCache[K, V]) Get(key K) (V, bool) {
	return c.cache.Get(key)
}

// Put inserts or overwrites key and marks it most recently used. Re-putting an existing key
// does not grow the cache.
func (c *RecencyCache[K, V]) Put(key K, value V) {
	c.cache.Add(key, value)
}

// GetAll returns the values most-recent-first.
func (c *RecencyCache[K, V]) GetAll() []V {
	// Values is oldest-to-newest.
	return Reverse(c.cache.Values())
}

// Size returns the number of cached entries.
func (c *RecencyCache[K, V]) Size() int {
	return c.cache.Len()
}

// Capacity returns the configured bound.
func (c *RecencyCache[K, V]) Capacity() int {
	return c.capacity
}

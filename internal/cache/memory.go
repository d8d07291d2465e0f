package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const defaultTTL = 5 * time.Minute

// Memory is an in-process TTL cache backed by patrickmn/go-cache.
// Entries expire after the TTL; expired entries are purged every 2x TTL.
type Memory struct {
	cache *gocache.Cache
	ttl   time.Duration
}

// NewMemory creates a new in-memory cache with the specified TTL.
// If ttl <= 0, defaults to 5 minutes.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Memory{
		cache: gocache.New(ttl, ttl*2),
		ttl:   ttl,
	}
}

// Get returns a copy of the cached document if present.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	cached, found := m.cache.Get(key)
	if !found {
		return nil, false, nil
	}
	value := cached.([]byte)
	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

// Set stores a copy of value with the default TTL.
func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	m.cache.Set(key, stored, gocache.DefaultExpiration)
	return nil
}

// Delete removes key and reports whether it was present.
func (m *Memory) Delete(_ context.Context, key string) (bool, error) {
	if _, found := m.cache.Get(key); !found {
		return false, nil
	}
	m.cache.Delete(key)
	return true, nil
}

// TTL returns the configured cache TTL.
func (m *Memory) TTL() time.Duration {
	return m.ttl
}

// Len returns the number of entries, including expired ones not yet purged.
func (m *Memory) Len() int {
	return m.cache.ItemCount()
}

// Flush clears all cached data.
func (m *Memory) Flush() {
	m.cache.Flush()
}

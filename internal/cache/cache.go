// Package cache provides the pluggable response cache used by the hrdir client.
// The client only sees the Cache interface; backends are chosen from the
// configuration by New.
package cache

import (
	"context"
	"fmt"

	"github.com/fjacquet/hrdir/internal/models"
)

// Cache stores raw JSON documents keyed by object id.
// Implementations must be safe for sequential use by a single client.
type Cache interface {
	// Get returns the stored value and true, or nil and false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key using the backend's default expiration.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key and reports whether an entry was removed.
	Delete(ctx context.Context, key string) (bool, error)
}

// New builds the cache backend selected by cfg.Cache.Backend.
// Returns a nil Cache for the "none" backend.
func New(ctx context.Context, cfg models.Config) (Cache, error) {
	switch cfg.Cache.Backend {
	case "", models.CacheBackendNone:
		return nil, nil
	case models.CacheBackendMemory:
		return NewMemory(cfg.GetCacheTTL()), nil
	case models.CacheBackendRedis:
		r, err := NewRedis(ctx, RedisConfig{
			Address:  cfg.Cache.Redis.Address,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			Prefix:   cfg.Cache.Redis.Prefix,
			TTL:      cfg.GetCacheTTL(),
		})
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", cfg.Cache.Backend)
	}
}

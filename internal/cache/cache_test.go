package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/fjacquet/hrdir/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SelectsBackend(t *testing.T) {
	ctx := context.Background()

	var cfg models.Config
	cfg.SetDefaults()
	c, err := New(ctx, cfg)
	require.NoError(t, err)
	assert.Nil(t, c, "none backend yields no cache")

	cfg.Cache.Backend = models.CacheBackendMemory
	c, err = New(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, c)

	mr := miniredis.RunT(t)
	cfg.Cache.Backend = models.CacheBackendRedis
	cfg.Cache.Redis.Address = mr.Addr()
	c, err = New(ctx, cfg)
	require.NoError(t, err)
	require.IsType(t, &Redis{}, c)
	_ = c.(*Redis).Close()

	cfg.Cache.Backend = "memcached"
	_, err = New(ctx, cfg)
	assert.Error(t, err)
}

func TestNew_RedisFailureReturnsNilCache(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	var cfg models.Config
	cfg.SetDefaults()
	cfg.Cache.Backend = models.CacheBackendRedis
	cfg.Cache.Redis.Address = addr

	c, err := New(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, c == nil, "a failed backend must not leak a typed nil")
}

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMemory_DefaultTTL(t *testing.T) {
	assert.Equal(t, defaultTTL, NewMemory(0).TTL())
	assert.Equal(t, defaultTTL, NewMemory(-5*time.Minute).TTL())
	assert.Equal(t, 2*time.Minute, NewMemory(2*time.Minute).TTL())
}

func TestMemory_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute)

	value, found, err := c.Get(ctx, "users/5")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, value)

	require.NoError(t, c.Set(ctx, "users/5", []byte(`{"id":5}`)))

	value, found, err = c.Get(ctx, "users/5")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"id":5}`, string(value))

	removed, err := c.Delete(ctx, "users/5")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = c.Delete(ctx, "users/5")
	require.NoError(t, err)
	assert.False(t, removed, "second delete has nothing to remove")
}

func TestMemory_StoresCopies(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute)

	original := []byte(`{"id":1}`)
	require.NoError(t, c.Set(ctx, "k", original))
	original[0] = 'X'

	got, _, _ := c.Get(ctx, "k")
	assert.Equal(t, `{"id":1}`, string(got))

	got[0] = 'Y'
	again, _, _ := c.Get(ctx, "k")
	assert.Equal(t, `{"id":1}`, string(again))
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(20 * time.Millisecond)
	require.NoError(t, c.Set(ctx, "k", []byte("1")))

	time.Sleep(40 * time.Millisecond)

	_, found, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemory_Flush(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute)
	require.NoError(t, c.Set(ctx, "a", []byte("1")))
	require.NoError(t, c.Set(ctx, "b", []byte("2")))
	assert.Equal(t, 2, c.Len())

	c.Flush()
	assert.Equal(t, 0, c.Len())
}

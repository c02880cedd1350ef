package cache

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studiofinder_backend/internal/config"
)

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	now := time.Now()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "lon", []string{"London"}))

	var got []string
	hit, err := c.Get(ctx, "lon", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"London"}, got)

	now = now.Add(2 * time.Minute)
	hit, err = c.Get(ctx, "lon", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestMemoryCacheDisabledWithZeroTTL(t *testing.T) {
	c := NewMemoryCache(0)
	require.NoError(t, c.Set(context.Background(), "k", 1))

	var v int
	hit, err := c.Get(context.Background(), "k", &v)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestNewWithoutRedisUsesMemory(t *testing.T) {
	c, err := New(config.RedisConfig{}, time.Minute)
	require.NoError(t, err)
	assert.IsType(t, &MemoryCache{}, c)
}

func TestNewClosesClientWhenRedisUnreachable(t *testing.T) {
	var created *redis.Client
	orig := newRedisClient
	newRedisClient = func(opts *redis.Options) *redis.Client {
		opts.MaxRetries = -1
		created = orig(opts)
		return created
	}
	t.Cleanup(func() { newRedisClient = orig })

	c, err := New(config.RedisConfig{Addr: "127.0.0.1:1"}, time.Minute)
	require.Error(t, err)
	assert.Nil(t, c)

	require.NotNil(t, created)
	assert.ErrorContains(t, created.Ping(context.Background()).Err(), "client is closed")
}

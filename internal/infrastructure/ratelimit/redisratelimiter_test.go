package ratelimit

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	client.FlushDB(ctx)

	t.Cleanup(func() {
		client.FlushDB(ctx)
		client.Close()
	})

	return client
}

func TestRedisRateLimiter_Allow(t *testing.T) {
	client := setupTestRedis(t)
	limiter := NewRedisRateLimiter(client)

	limit := Limit{Requests: 5, WindowSecs: 60}
	key := "test-key"

	for i := 0; i < 5; i++ {
		allowed, err := limiter.Allow(key, limit)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should be allowed", i+1)
	}

	allowed, err := limiter.Allow(key, limit)
	require.NoError(t, err)
	assert.False(t, allowed, "6th request should be throttled")
}

func TestRedisRateLimiter_AllowUnlimited(t *testing.T) {
	client := setupTestRedis(t)
	limiter := NewRedisRateLimiter(client)

	allowed, err := limiter.Allow("any", Limit{})
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRedisRateLimiter_Reset(t *testing.T) {
	client := setupTestRedis(t)
	limiter := NewRedisRateLimiter(client)

	limit := Limit{Requests: 1, WindowSecs: 60}
	key := "reset-key"

	allowed, err := limiter.Allow(key, limit)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = limiter.Allow(key, limit)
	require.NoError(t, err)
	assert.False(t, allowed)

	require.NoError(t, limiter.Reset(key))

	allowed, err = limiter.Allow(key, limit)
	require.NoError(t, err)
	assert.True(t, allowed)
}

package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter counts requests in fixed windows with INCR. The counter
// key carries the window index, so a new window starts from a fresh key and
// the expired one falls out of Redis on its own.
type RedisRateLimiter struct {
	client *redis.Client
	ctx    context.Context
}

func NewRedisRateLimiter(client *redis.Client) RateLimiter {
	return &RedisRateLimiter{
		client: client,
		ctx:    context.Background(),
	}
}

func (l *RedisRateLimiter) Allow(key string, limit Limit) (bool, error) {
	if limit.Requests <= 0 || limit.WindowSecs <= 0 {
		return true, nil
	}

	window := time.Duration(limit.WindowSecs) * time.Second
	redisKey := l.getKey(key, limit.WindowSecs)

	pipe := l.client.Pipeline()
	count := pipe.Incr(l.ctx, redisKey)
	pipe.Expire(l.ctx, redisKey, window)

	if _, err := pipe.Exec(l.ctx); err != nil {
		return false, fmt.Errorf("failed to execute pipeline: %w", err)
	}

	return count.Val() <= int64(limit.Requests), nil
}

func (l *RedisRateLimiter) Reset(key string) error {
	pattern := fmt.Sprintf("ratelimit:%s:*", key)

	iter := l.client.Scan(l.ctx, 0, pattern, 0).Iterator()
	for iter.Next(l.ctx) {
		if err := l.client.Del(l.ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete key %s: %w", iter.Val(), err)
		}
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan keys: %w", err)
	}
	return nil
}

func (l *RedisRateLimiter) getKey(identifier string, windowSecs int) string {
	windowIndex := time.Now().Unix() / int64(windowSecs)
	return fmt.Sprintf("ratelimit:%s:%d:%d", identifier, windowSecs, windowIndex)
}

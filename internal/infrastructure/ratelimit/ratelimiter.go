package ratelimit

// Limit is a fixed-window allowance.
type Limit struct {
	Requests   int
	WindowSecs int
}

// RateLimiter throttles callers by key.
type RateLimiter interface {
	Allow(key string, limit Limit) (bool, error)
	Reset(key string) error
}

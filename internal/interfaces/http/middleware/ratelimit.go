package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"keygate/internal/infrastructure/ratelimit"
	"keygate/internal/shared/logger"
	"keygate/internal/shared/utils"
)

// IPRateLimiter throttles requests per client IP. Redis keeps the counters,
// so the limit holds across instances. A limiter failure lets the request
// through; throttling must never take the validation surface down with it.
type IPRateLimiter struct {
	limiter ratelimit.RateLimiter
	limit   ratelimit.Limit
	logger  logger.Interface
}

func NewIPRateLimiter(limiter ratelimit.RateLimiter, limit ratelimit.Limit, logger logger.Interface) *IPRateLimiter {
	return &IPRateLimiter{
		limiter: limiter,
		limit:   limit,
		logger:  logger,
	}
}

// Limit returns a Gin middleware that enforces the rate limit per client IP.
func (rl *IPRateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := rl.limiter.Allow("ip:"+c.ClientIP(), rl.limit)
		if err != nil {
			rl.logger.Warnw("rate limiter unavailable, allowing request",
				"client_ip", c.ClientIP(),
				"error", err)
			c.Next()
			return
		}

		if !allowed {
			utils.ErrorResponse(c, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}

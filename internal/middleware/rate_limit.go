// internal/middleware/rate_limit.go
package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"sentra-auth/internal/pkg/response"
)

// RateLimiter throttles sensitive endpoints per client IP using a Redis
// counter with a sliding expiry window.
type RateLimiter struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRateLimiter(client *redis.Client, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{client: client, logger: logger}
}

// Limit allows at most maxAttempts requests per window for a named
// endpoint group. Counting errors fail open; throttling must not take the
// whole auth surface down with Redis.
func (r *RateLimiter) Limit(name string, maxAttempts int64, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("ratelimit:%s:%s", name, c.ClientIP())

		count, err := r.client.Incr(c.Request.Context(), key).Result()
		if err != nil {
			r.logger.Warn("rate limit counter unavailable", zap.Error(err))
			c.Next()
			return
		}

		// Set expiration on first attempt
		if count == 1 {
			r.client.Expire(c.Request.Context(), key, window)
		}

		if count > maxAttempts {
			response.Error(c, http.StatusTooManyRequests, "too many attempts, try again later", nil)
			return
		}

		c.Next()
	}
}

package middlewares

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimiter enforces a fixed window per derived key, counted in redis
// so limits hold across process restarts and replicas.
type RateLimiter struct {
	rdb    *redis.Client
	window time.Duration
	limit  int
}

func NewRateLimiter(rdb *redis.Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		rdb:    rdb,
		limit:  limit,
		window: window,
	}
}

// RateLimiterMiddleware returns a gin.HandlerFunc that enforces the
// limit for a derived key. Redis outages fail open: a broken limiter
// must not take the auth endpoints down with it.
func (rl *RateLimiter) RateLimiterMiddleware(keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)

		if key == "" {
			// fallback to IP if key cannot be derived
			key = clientIP(c)
		}

		redisKey := "ratelimit:" + key

		ctx := c.Request.Context()

		count, err := rl.rdb.Incr(ctx, redisKey).Result()

		if err != nil {
			c.Next()
			return
		}

		if count == 1 {
			_ = rl.rdb.Expire(ctx, redisKey, rl.window).Err()
		}

		if count > int64(rl.limit) {
			retryAfter := int(rl.window.Seconds())

			if ttl, err := rl.rdb.TTL(ctx, redisKey).Result(); err == nil && ttl > 0 {
				retryAfter = int(ttl.Seconds())
			}

			c.Header("Retry-After", strconv.Itoa(retryAfter))

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{
					"code":    "rate_limited",
					"message": "Too many requests. Please try again shortly.",
				},
			})

			return
		}

		c.Next()
	}
}

// for unauthenticated endpoints: rate limit by IP
func KeyByIP(c *gin.Context) string {
	return clientIP(c)
}

// For authenticated endpoints: rate limit by userID if available

func KeyByUserOrIP(c *gin.Context) string {
	id, ok := UserIDFromContext(c)

	if ok && id != "" {
		return "user:" + id
	}

	return clientIP(c)
}

func clientIP(c *gin.Context) string {
	// Gin's ClientIP respects X-Forwarded-For / X-Real-IP if configured.
	ip := c.ClientIP()

	host, _, err := net.SplitHostPort(ip)

	if err == nil && host != "" {
		return host
	}

	return ip
}

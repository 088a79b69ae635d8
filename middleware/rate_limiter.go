package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RateLimiter counts requests per client IP in Redis and rejects the ones
// past limit within a minute. Admin writes and public reads share one budget;
// the admin socket has its own, smaller one.
func RateLimiter(rdb *redis.Client, limit int, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		if c.Request.URL.Path == "/admin/ws" {
			handleRateLimit(c, rdb, logger, "livro:rate_limit:ws:"+clientIP, 5, time.Minute)
			return
		}
		handleRateLimit(c, rdb, logger, "livro:rate_limit:api:"+clientIP, limit, time.Minute)
	}
}

func handleRateLimit(c *gin.Context, rdb *redis.Client, logger *zap.Logger, key string, limit int, window time.Duration) {
	ctx := c.Request.Context()

	count, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		// fail open
		logger.Warn("rate limiter unavailable", zap.Error(err))
		c.Next()
		return
	}
	if count == 1 {
		if err := rdb.Expire(ctx, key, window).Err(); err != nil && !errors.Is(err, redis.Nil) {
			logger.Warn("rate limit window not set", zap.String("key", key), zap.Error(err))
		}
	}

	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

	if int(count) > limit {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"sucesso": false,
			"erro":    "Muitas requisições, tente novamente em instantes",
		})
		return
	}
	c.Next()
}

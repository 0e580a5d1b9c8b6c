package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/photogate-dev/photogate-backend/internal/pkg/response"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Sliding-window counter: drop entries older than the window, count the
// rest, and record the current request if it fits.
var rateLimitScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)
local count = redis.call('ZCARD', key)
if count >= limit then
	return 0
end
redis.call('ZADD', key, now, now .. '-' .. math.random())
redis.call('PEXPIRE', key, window)
return 1
`)

// RateLimiter throttles per-client request rates through Redis. A Redis
// failure fails open: throttling is protective, not a correctness gate.
type RateLimiter struct {
	client   *redis.Client
	requests int
	window   time.Duration
	logger   *zap.Logger
}

func NewRateLimiter(client *redis.Client, requests int, window time.Duration, log *zap.Logger) *RateLimiter {
	if requests <= 0 {
		requests = 100
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		client:   client,
		requests: requests,
		window:   window,
		logger:   log,
	}
}

// Allow reports whether the client identified by key may proceed.
func (l *RateLimiter) Allow(ctx context.Context, key string) bool {
	now := time.Now().UnixMilli()
	allowed, err := rateLimitScript.Run(ctx, l.client,
		[]string{"ratelimit:" + key},
		now, l.window.Milliseconds(), l.requests,
	).Int()
	if err != nil {
		l.logger.Warn("rate limit check failed, allowing request", zap.Error(err))
		return true
	}
	return allowed == 1
}

func RateLimitMiddleware(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.Request.Context(), c.ClientIP()) {
			response.Error(c, http.StatusTooManyRequests, "Too many requests")
			c.Abort()
			return
		}
		c.Next()
	}
}

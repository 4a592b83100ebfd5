package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"iisa-recruitment-backend/internal/delivery/http/response"
	"iisa-recruitment-backend/pkg/logger"
	"iisa-recruitment-backend/pkg/redis"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	// Requests per window
	Limit  int
	Window time.Duration
	// KeyFunc identifies the caller; defaults to the client IP
	KeyFunc   func(*gin.Context) string
	KeyPrefix string
	// FailClosed rejects requests when Redis errors instead of counting in memory
	FailClosed bool
}

// Lua script for atomic increment with TTL on first set
// KEYS[1] = counter key, ARGV[1] = TTL in seconds
// Returns: [current_count, ttl_remaining]
const rateLimitLuaScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('TTL', KEYS[1])
return {count, ttl}
`

func clientIPKey(c *gin.Context) string {
	return c.ClientIP()
}

// GlobalRateLimitConfig bounds every route per client IP.
func GlobalRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{Limit: limit, Window: window, KeyPrefix: "rl:ip:", KeyFunc: clientIPKey}
}

// PublicRateLimitConfig guards the anonymous write endpoints (registration, self-edit).
func PublicRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{
		Limit:     limit,
		Window:    window,
		KeyPrefix: "rl:public:",
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP() + ":" + c.FullPath()
		},
	}
}

// LoginRateLimitConfig is strict and fails closed.
func LoginRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{Limit: limit, Window: window, KeyPrefix: "rl:login:", KeyFunc: clientIPKey, FailClosed: true}
}

type memoryWindow struct {
	count   int
	resetAt time.Time
}

// memoryCounter is the fallback when Redis is not configured or failing.
// Expired windows are swept inline at most once per sweepEvery.
type memoryCounter struct {
	mu         sync.Mutex
	windows    map[string]*memoryWindow
	lastSweep  time.Time
	sweepEvery time.Duration
}

func newMemoryCounter() *memoryCounter {
	return &memoryCounter{windows: make(map[string]*memoryWindow), sweepEvery: 5 * time.Minute}
}

func (m *memoryCounter) hit(key string, window time.Duration, now time.Time) (int, time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if now.Sub(m.lastSweep) > m.sweepEvery {
		for k, w := range m.windows {
			if now.After(w.resetAt) {
				delete(m.windows, k)
			}
		}
		m.lastSweep = now
	}

	w, ok := m.windows[key]
	if !ok || now.After(w.resetAt) {
		w = &memoryWindow{resetAt: now.Add(window)}
		m.windows[key] = w
	}
	w.count++
	return w.count, w.resetAt
}

// RateLimitMiddleware counts requests per key in Redis when available and in
// process memory otherwise. A non-positive Limit disables the check.
func RateLimitMiddleware(config RateLimitConfig) gin.HandlerFunc {
	if config.Limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if config.KeyFunc == nil {
		config.KeyFunc = clientIPKey
	}
	fallback := newMemoryCounter()

	return func(c *gin.Context) {
		fullKey := config.KeyPrefix + config.KeyFunc(c)

		var count int
		var resetAt time.Time
		if client := redis.Client(); client != nil {
			var err error
			count, resetAt, err = hitRedis(c.Request.Context(), client, fullKey, config.Window)
			if err != nil {
				logRateLimitError(c, err)
				if config.FailClosed {
					response.Abort(c, http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again.")
					return
				}
				count, resetAt = fallback.hit(fullKey, config.Window, time.Now())
			}
		} else {
			count, resetAt = fallback.hit(fullKey, config.Window, time.Now())
		}

		remaining := config.Limit - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", resetAt.Format(time.RFC3339))

		if count > config.Limit {
			retryAfter := int(time.Until(resetAt).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			logger.Log.Warn("Rate limit exceeded",
				"request_id", c.GetString(response.RequestIDKey),
				"ip", c.ClientIP(),
				"path", c.FullPath())
			response.Abort(c, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}

		c.Next()
	}
}

func hitRedis(ctx context.Context, client *goredis.Client, key string, window time.Duration) (int, time.Time, error) {
	result, err := client.Eval(ctx, rateLimitLuaScript, []string{key}, int(window.Seconds())).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis rate limit eval failed: %w", err)
	}

	arr, ok := result.([]interface{})
	if !ok || len(arr) < 2 {
		return 0, time.Time{}, fmt.Errorf("unexpected redis result format")
	}
	count, _ := arr[0].(int64)
	ttl, _ := arr[1].(int64)

	return int(count), time.Now().Add(time.Duration(ttl) * time.Second), nil
}

func logRateLimitError(c *gin.Context, err error) {
	logger.Log.Error("Rate limit backend failed",
		"request_id", c.GetString(response.RequestIDKey),
		"path", c.FullPath(),
		"error", err)
}

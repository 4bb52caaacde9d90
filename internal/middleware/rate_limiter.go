package middleware

import (
	"sync"
	"time"

	appErrors "Parking/internal/errors"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
)

const maxTrackedClients = 10000

// RateLimiter is a sliding-window limiter. The least recently seen clients
// are evicted once maxTrackedClients keys are tracked.
type RateLimiter struct {
	requests *lru.Cache[string, []time.Time]
	mu       sync.Mutex
	limit    int
	window   time.Duration
	now      func() time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	cache, _ := lru.New[string, []time.Time](maxTrackedClients)
	return &RateLimiter{
		requests: cache,
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	windowStart := now.Add(-rl.window)

	timestamps, _ := rl.requests.Get(key)
	valid := make([]time.Time, 0, len(timestamps)+1)
	for _, t := range timestamps {
		if t.After(windowStart) {
			valid = append(valid, t)
		}
	}

	if len(valid) >= rl.limit {
		rl.requests.Add(key, valid)
		return false
	}

	rl.requests.Add(key, append(valid, now))
	return true
}

var errRateLimited = appErrors.NewAppError("RATE_LIMIT_EXCEEDED", "too many requests, try again later", 429)

func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			respondAbort(c, errRateLimited)
			return
		}
		c.Next()
	}
}

// RateLimitByUser keys on the authenticated operator, falling back to the client IP.
func RateLimitByUser(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if id, ok := c.Get(ContextUserID); ok {
			if s, ok := id.(string); ok {
				key = s
			}
		}
		if !limiter.Allow(key) {
			respondAbort(c, errRateLimited)
			return
		}
		c.Next()
	}
}

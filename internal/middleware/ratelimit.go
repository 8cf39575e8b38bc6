package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/classwork-backend/internal/response"
)

// KeyFunc picks the bucket a request is charged to.
type KeyFunc func(c *gin.Context) string

// ByIP charges each client address separately.
func ByIP(c *gin.Context) string {
	return c.ClientIP()
}

// ByIPAndParam charges each client address separately per value of a
// path parameter, e.g. one bucket per visitor per share token.
func ByIPAndParam(param string) KeyFunc {
	return func(c *gin.Context) string {
		return c.ClientIP() + "|" + c.Param(param)
	}
}

// RateLimiter is a keyed token bucket. Each key holds up to burst tokens
// and regains burst tokens every interval.
type RateLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	burst    int
	interval time.Duration
	idleTTL  time.Duration
	now      func() time.Time
}

type bucket struct {
	tokens     int
	lastRefill time.Time
	lastSeen   time.Time
}

// NewRateLimiter allows burst requests per interval for every key,
// e.g. NewRateLimiter(30, time.Minute).
func NewRateLimiter(burst int, interval time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets:  make(map[string]*bucket),
		burst:    burst,
		interval: interval,
		idleTTL:  3 * interval,
		now:      time.Now,
	}
	if rl.idleTTL < 3*time.Minute {
		rl.idleTTL = 3 * time.Minute
	}

	go func() {
		for range time.Tick(time.Minute) {
			rl.sweep()
		}
	}()

	return rl
}

// Middleware limits requests per client IP.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return rl.MiddlewareBy(ByIP)
}

// MiddlewareBy limits requests per key. Rejected requests get 429 with a
// Retry-After header in whole seconds.
func (rl *RateLimiter) MiddlewareBy(key KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, wait := rl.take(key(c))
		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			return
		}
		c.Next()
	}
}

// ctxWithinLimit is the gin context key set by MarkBy.
const ctxWithinLimit = "within_rate_limit"

// MarkBy spends a token for key like MiddlewareBy but never rejects. It
// records whether the request fit so the handler can skip side effects.
func (rl *RateLimiter) MarkBy(key KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, _ := rl.take(key(c))
		c.Set(ctxWithinLimit, allowed)
		c.Next()
	}
}

// WithinLimit reports whether MarkBy let this request through its limit.
// It is false when no MarkBy ran.
func WithinLimit(c *gin.Context) bool {
	return c.GetBool(ctxWithinLimit)
}

// take spends one token for key. When none is left it reports how long
// until the next refill.
func (rl *RateLimiter) take(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{tokens: rl.burst, lastRefill: now}
		rl.buckets[key] = b
	}
	b.lastSeen = now

	if periods := int(now.Sub(b.lastRefill) / rl.interval); periods > 0 {
		b.tokens = min(rl.burst, b.tokens+periods*rl.burst)
		b.lastRefill = b.lastRefill.Add(time.Duration(periods) * rl.interval)
	}

	if b.tokens <= 0 {
		return false, b.lastRefill.Add(rl.interval).Sub(now)
	}
	b.tokens--
	return true, 0
}

func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	for key, b := range rl.buckets {
		if now.Sub(b.lastSeen) > rl.idleTTL {
			delete(rl.buckets, key)
		}
	}
}

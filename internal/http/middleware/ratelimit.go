package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// visitor holds one token bucket and its last-seen time, so idle buckets can
// be evicted to bound memory.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a process-local, per-identity token-bucket limiter. Buckets
// are keyed by authenticated user id when available, client IP otherwise.
// It is intended for edge-level abuse control in a single-process
// deployment, not as an authorization mechanism, and is safe for concurrent
// use.
type RateLimiter struct {
	rps   rate.Limit
	burst int

	mu       sync.Mutex
	visitors map[string]*visitor
	lookups  int
	ttl      time.Duration
}

// NewRateLimiter constructs a limiter replenishing rps tokens per second
// with the given burst size (coerced to at least 1).
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		visitors: make(map[string]*visitor),
		ttl:      10 * time.Minute,
	}
}

// identity prefers the authenticated user id over the client IP; keys carry
// a namespace prefix so the two cannot collide.
func identity(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return "user:" + s
		}
	}
	return "ip:" + c.ClientIP()
}

// allow fetches or creates the bucket for key, with opportunistic GC of idle
// entries every few thousand lookups.
func (rl *RateLimiter) allow(key string) bool {
	now := time.Now()

	rl.mu.Lock()
	rl.lookups++
	if rl.lookups >= 5000 {
		for k, v := range rl.visitors {
			if now.Sub(v.lastSeen) >= rl.ttl {
				delete(rl.visitors, k)
			}
		}
		rl.lookups = 0
	}

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	lim := v.limiter
	rl.mu.Unlock()

	return lim.Allow()
}

// Handler returns the middleware. Requests over the limit get a 429 with the
// standard error envelope.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.allow(identity(c)) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "too_many_requests",
				"message":    "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}

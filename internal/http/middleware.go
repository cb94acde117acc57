package http

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// rateLimiter hands out one token bucket per client IP. Entries are never
// evicted; the per-client state is two words and the server is not exposed to
// the open internet.
type rateLimiter struct {
	mu      sync.Mutex
	clients map[string]*rate.Limiter
	perSec  rate.Limit
	burst   int
}

func newRateLimiter(perSecond float64, burst int) *rateLimiter {
	return &rateLimiter{
		clients: make(map[string]*rate.Limiter),
		perSec:  rate.Limit(perSecond),
		burst:   burst,
	}
}

func (rl *rateLimiter) limiterFor(clientIP string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	limiter, ok := rl.clients[clientIP]
	if !ok {
		limiter = rate.NewLimiter(rl.perSec, rl.burst)
		rl.clients[clientIP] = limiter
	}
	return limiter
}

// RateLimitMiddleware rejects requests over the configured per-IP rate with
// 429. A non-positive rate disables limiting.
func RateLimitMiddleware(perSecond float64, burst int) gin.HandlerFunc {
	if perSecond <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	rl := newRateLimiter(perSecond, burst)
	return func(c *gin.Context) {
		if !rl.limiterFor(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

// Package middleware holds the gin middleware shared by the API routes.
package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/lpaudit/config"
	"github.com/use-agent/lpaudit/models"
	"golang.org/x/time/rate"
)

const (
	// idleClientTTL is how long a client's bucket survives without requests.
	idleClientTTL = time.Hour

	// sweepEvery is the minimum gap between idle-bucket sweeps.
	sweepEvery = 5 * time.Minute
)

// buckets holds one token bucket per client IP. Idle buckets are swept
// lazily from the request path, so no goroutine outlives the router.
type buckets struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	clients   map[string]*bucket
	lastSweep time.Time
	now       func() time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newBuckets(cfg config.RateLimitConfig) *buckets {
	return &buckets{
		limit:   rate.Limit(cfg.RequestsPerSecond),
		burst:   cfg.Burst,
		clients: make(map[string]*bucket),
		now:     time.Now,
	}
}

// take consumes a token for ip. When none is available it returns the
// wait until the next one.
func (b *buckets) take(ip string) (bool, time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if now.Sub(b.lastSweep) >= sweepEvery {
		b.sweep(now)
	}

	c, ok := b.clients[ip]
	if !ok {
		c = &bucket{limiter: rate.NewLimiter(b.limit, b.burst)}
		b.clients[ip] = c
	}
	c.lastSeen = now

	r := c.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, 0
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// sweep must be called with mu held.
func (b *buckets) sweep(now time.Time) {
	cutoff := now.Add(-idleClientTTL)
	for ip, c := range b.clients {
		if c.lastSeen.Before(cutoff) {
			delete(b.clients, ip)
		}
	}
	b.lastSweep = now
}

// RateLimit returns per-client-IP token-bucket rate limiting middleware.
// Rejected requests get 429 with a Retry-After header in whole seconds.
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	b := newBuckets(cfg)

	return func(c *gin.Context) {
		ok, wait := b.take(c.ClientIP())
		if ok {
			c.Next()
			return
		}

		if wait > 0 {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		}
		c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{
			Success: false,
			Error: &models.ErrorDetail{
				Code:    models.ErrCodeRateLimited,
				Message: "rate limit exceeded, please slow down",
			},
		})
	}
}

// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements an in-memory token-bucket rate limiter with
// per-identity buckets (golang.org/x/time/rate). The login endpoint is keyed
// by client IP, authenticated shelter routes by user id. Replays flagged by
// IdempotencyValidator skip the limiter. The limiter is process-local.
package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"
)

var rateLimited = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "shelter_rate_limited_total",
		Help: "Requests rejected by the rate limiter, by limiter scope.",
	},
	[]string{"scope"},
)

func init() {
	prometheus.MustRegister(rateLimited)
}

// KeyFunc selects the identity whose bucket a request draws from.
type KeyFunc func(*gin.Context) string

// KeyByUserOrIP keys buckets by the user id published by BasicAuth, falling
// back to the client IP ("user:7" vs "ip:203.0.113.7").
func KeyByUserOrIP() KeyFunc {
	return func(c *gin.Context) string {
		if v, ok := c.Get(ctxKeyUserID); ok {
			if s, ok := v.(string); ok && s != "" {
				return "user:" + s
			}
		}
		return "ip:" + c.ClientIP()
	}
}

// RateLimitOptions configures a RateLimiter.
type RateLimitOptions struct {
	Scope string  // metric label, e.g. "login" or "user"
	RPS   float64 // refill rate
	Burst int     // bucket size, at least 1
	Key   KeyFunc // defaults to KeyByUserOrIP

	// IdleTTL evicts buckets unused for this long (default 10m).
	IdleTTL time.Duration
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per-key token-bucket limiter, safe for concurrent use.
type RateLimiter struct {
	opt RateLimitOptions
	now func() time.Time

	mu        sync.Mutex
	buckets   map[string]*bucket
	nextSweep time.Time
}

// NewRateLimiter builds a limiter from opt.
func NewRateLimiter(opt RateLimitOptions) *RateLimiter {
	if opt.Burst <= 0 {
		opt.Burst = 1
	}
	if opt.Key == nil {
		opt.Key = KeyByUserOrIP()
	}
	if opt.IdleTTL <= 0 {
		opt.IdleTTL = 10 * time.Minute
	}
	if opt.Scope == "" {
		opt.Scope = "default"
	}
	return &RateLimiter{opt: opt, now: time.Now, buckets: make(map[string]*bucket)}
}

// bucketFor returns key's limiter, creating it if absent. Idle buckets are
// swept at most once per IdleTTL.
func (rl *RateLimiter) bucketFor(key string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if !now.Before(rl.nextSweep) {
		for k, b := range rl.buckets {
			if now.Sub(b.lastSeen) >= rl.opt.IdleTTL {
				delete(rl.buckets, k)
			}
		}
		rl.nextSweep = now.Add(rl.opt.IdleTTL)
	}

	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(rate.Limit(rl.opt.RPS), rl.opt.Burst)}
		rl.buckets[key] = b
	}
	b.lastSeen = now
	return b.lim
}

// reserve takes a token for key. When none is available it returns the
// wait until one will be, without consuming anything.
func (rl *RateLimiter) reserve(key string) (ok bool, wait time.Duration) {
	now := rl.now()
	r := rl.bucketFor(key, now).ReserveN(now, 1)
	if !r.OK() {
		return false, time.Second
	}
	if d := r.DelayFrom(now); d > 0 {
		r.CancelAt(now)
		return false, d
	}
	return true, 0
}

// IsRateBypass reports whether IdempotencyValidator exempted the request.
func IsRateBypass(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyRateBypass)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// Handler enforces the limit. Rejections get 429, a Retry-After in whole
// seconds (at least 1) and the standard error envelope.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsRateBypass(c) {
			c.Next()
			return
		}
		ok, wait := rl.reserve(rl.opt.Key(c))
		if ok {
			c.Next()
			return
		}

		rateLimited.WithLabelValues(rl.opt.Scope).Inc()
		secs := int(math.Ceil(wait.Seconds()))
		if secs < 1 {
			secs = 1
		}
		c.Header("Retry-After", strconv.Itoa(secs))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"request_id": c.Writer.Header().Get(requestIDHeader),
			"code":       "too_many_requests",
			"message":    "rate limit exceeded",
		})
	}
}

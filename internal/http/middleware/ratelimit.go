// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements the coarse, per-client token-bucket limiter that sits
// in front of the per-path overload protection. Buckets live in process
// memory and idle ones are evicted opportunistically.
//
// A denied request is not answered here: it is failed with an overload fault
// so the failure pipeline renders it like any other rejection.
package middleware

import (
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/tbourn/go-http-governance/internal/faults"
)

// keyFunc selects the identity used to key a rate-limit bucket.
type keyFunc func(*gin.Context) string

// KeyByUserOrIP prefers the caller's user id and falls back to the
// proxy-aware client address. Keys are namespaced ("user:", "ip:").
//
// The limiter runs globally, ahead of per-route authentication, so the
// X-User-ID header is read directly when no user is in the context yet.
func KeyByUserOrIP() keyFunc {
	return func(c *gin.Context) string {
		uid := UserID(c)
		if uid == "" {
			uid = strings.TrimSpace(c.GetHeader(UserIDHeader))
		}
		if uid != "" {
			return "user:" + uid
		}
		return "ip:" + ResolveClientIP(c.Request)
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter implements a per-key token-bucket rate limiter. It is safe for
// concurrent use.
type RateLimiter struct {
	rps      rate.Limit
	burst    int
	keyFn    keyFunc
	mu       sync.Mutex
	visitors map[string]*visitor

	ttl      time.Duration
	cleanupN uint64
}

// NewRateLimiter constructs a RateLimiter refilling rps tokens per second
// with the given burst (coerced to at least 1), keyed by keyFn.
func NewRateLimiter(rps float64, burst int, keyFn keyFunc) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	if keyFn == nil {
		keyFn = KeyByUserOrIP()
	}
	return &RateLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		keyFn:    keyFn,
		visitors: make(map[string]*visitor),
		ttl:      10 * time.Minute,
	}
}

// getVisitor returns the limiter for key, creating it if absent. Every 5000
// lookups idle buckets are evicted first, so a stale bucket can be dropped
// even when it is the one being fetched.
func (rl *RateLimiter) getVisitor(key string) *rate.Limiter {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.cleanupN++
	if rl.cleanupN >= 5000 {
		for k, vv := range rl.visitors {
			if now.Sub(vv.lastSeen) >= rl.ttl {
				delete(rl.visitors, k)
			}
		}
		rl.cleanupN = 0
	}

	if v, ok := rl.visitors[key]; ok {
		v.lastSeen = now
		return v.limiter
	}
	lim := rate.NewLimiter(rl.rps, rl.burst)
	rl.visitors[key] = &visitor{limiter: lim, lastSeen: now}
	return lim
}

// Handler returns a Gin middleware enforcing the per-key limits. Denied
// requests get a Retry-After hint and an overload fault.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.getVisitor(rl.keyFn(c)).Allow() {
			c.Next()
			return
		}

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		c.Header("Retry-After", "1")
		Fail(c, faults.Overload(path))
	}
}

package registry

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Limit is a registered admission-control limit.
type Limit struct {
	Threshold int
	Window    time.Duration
}

// Overloads is an in-memory overload registry and enforcer. Each registered
// path gets a token bucket that refills Threshold tokens per Window with a
// burst of Threshold, so a quiet path admits a full window's worth at once.
//
// Unregistered paths are always admitted. A non-positive threshold or window
// disables the limit for that path.
type Overloads struct {
	mu       sync.RWMutex
	limits   map[string]Limit
	limiters map[string]*rate.Limiter
}

// NewOverloads returns an empty registry.
func NewOverloads() *Overloads {
	return &Overloads{
		limits:   make(map[string]Limit),
		limiters: make(map[string]*rate.Limiter),
	}
}

// Register sets the limit for fullPath, replacing any earlier one.
func (o *Overloads) Register(fullPath string, threshold int, window time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.limits[fullPath] = Limit{Threshold: threshold, Window: window}
	if threshold <= 0 || window <= 0 {
		delete(o.limiters, fullPath)
		log.Warn().Str("path", fullPath).Int("threshold", threshold).Dur("window", window).
			Msg("overload limit disabled: threshold and window must be positive")
		return
	}
	// window/threshold as a Duration truncates to 0 (rate.Inf) for sub-ns
	// intervals, so the refill rate is computed in tokens per second.
	perSec := rate.Limit(float64(threshold) / window.Seconds())
	o.limiters[fullPath] = rate.NewLimiter(perSec, threshold)
}

// Lookup returns the limit registered for fullPath.
func (o *Overloads) Lookup(fullPath string) (Limit, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	l, ok := o.limits[fullPath]
	return l, ok
}

// Allow consumes one admission for fullPath. It never returns an error; the
// signature matches enforcers backed by remote stores.
func (o *Overloads) Allow(_ context.Context, fullPath string) (bool, error) {
	o.mu.RLock()
	lim, ok := o.limiters[fullPath]
	o.mu.RUnlock()
	if !ok {
		return true, nil
	}
	return lim.Allow(), nil
}

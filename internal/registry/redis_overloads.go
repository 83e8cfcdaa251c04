package registry

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOverloads shares admission-control limits across replicas. Limits are
// registered locally at start-up; admissions are counted in Redis with a
// fixed window per path (INCR + PEXPIRE on a key that embeds the window
// start).
type RedisOverloads struct {
	client *redis.Client
	prefix string
	now    func() time.Time

	mu     sync.RWMutex
	limits map[string]Limit
}

// NewRedisOverloads returns a Redis-backed registry. keyPrefix namespaces
// the counters, e.g. "overload".
func NewRedisOverloads(client *redis.Client, keyPrefix string) *RedisOverloads {
	if keyPrefix == "" {
		keyPrefix = "overload"
	}
	return &RedisOverloads{
		client: client,
		prefix: keyPrefix,
		now:    time.Now,
		limits: make(map[string]Limit),
	}
}

// Register sets the limit for fullPath.
func (r *RedisOverloads) Register(fullPath string, threshold int, window time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.limits[fullPath] = Limit{Threshold: threshold, Window: window}
}

// Lookup returns the limit registered for fullPath.
func (r *RedisOverloads) Lookup(fullPath string) (Limit, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.limits[fullPath]
	return l, ok
}

// Allow increments the current window's counter for fullPath and reports
// whether it is still within the threshold. Unregistered or disabled paths
// are admitted without touching Redis.
func (r *RedisOverloads) Allow(ctx context.Context, fullPath string) (bool, error) {
	l, ok := r.Lookup(fullPath)
	if !ok || l.Threshold <= 0 || l.Window <= 0 {
		return true, nil
	}

	key := r.windowKey(fullPath, l.Window)
	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, key)
		p.PExpire(ctx, key, l.Window)
		return nil
	})
	if err != nil {
		return false, err
	}
	return incr.Val() <= int64(l.Threshold), nil
}

// windowKey names the counter of the window containing now.
func (r *RedisOverloads) windowKey(fullPath string, window time.Duration) string {
	ms := window.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	start := r.now().UnixMilli() / ms * ms
	return r.prefix + ":" + fullPath + ":" + strconv.FormatInt(start, 10)
}

// Ping checks connectivity.
func (r *RedisOverloads) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (r *RedisOverloads) Close() error {
	return r.client.Close()
}

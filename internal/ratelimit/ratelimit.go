// Package ratelimit implements fixed-window request counters keyed by client.
package ratelimit

import (
	"context"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/tazhibayda/bootcamp-service/internal/apperr"
)

// Counter increments key in a window of the given length and reports the
// count so far and when the window resets.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, time.Time, error)
}

type Rule struct {
	Name   string
	Max    int64
	Window time.Duration
}

var (
	General        = Rule{Name: "general", Max: 100, Window: 10 * time.Minute}
	ForgotPassword = Rule{Name: "forgotpassword", Max: 5, Window: 24 * time.Hour}
)

type RedisCounter struct {
	C     *redis.Client
	Clock clock.Clock
}

func NewRedis(addr string) *RedisCounter {
	return &RedisCounter{C: redis.NewClient(&redis.Options{Addr: addr}), Clock: clock.New()}
}

func (r *RedisCounter) Ping(ctx context.Context) error { return r.C.Ping(ctx).Err() }
func (r *RedisCounter) Close() error                   { return r.C.Close() }

func (r *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	n, err := r.C.Incr(ctx, key).Result()
	if err != nil {
		return 0, time.Time{}, err
	}
	if n == 1 {
		if err := r.C.Expire(ctx, key, window).Err(); err != nil {
			return n, time.Time{}, err
		}
		return n, r.Clock.Now().Add(window), nil
	}
	ttl, err := r.C.PTTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		// lost expiry; restore it so the key cannot live forever
		_ = r.C.Expire(ctx, key, window).Err()
		ttl = window
	}
	return n, r.Clock.Now().Add(ttl), nil
}

type window struct {
	count int64
	reset time.Time
}

// MemoryCounter is the single-process fallback when Redis is not configured.
type MemoryCounter struct {
	mu      sync.Mutex
	clock   clock.Clock
	windows map[string]*window
}

func NewMemory(clk clock.Clock) *MemoryCounter {
	if clk == nil {
		clk = clock.New()
	}
	return &MemoryCounter{clock: clk, windows: make(map[string]*window)}
}

func (m *MemoryCounter) Incr(_ context.Context, key string, d time.Duration) (int64, time.Time, error) {
	now := m.clock.Now()
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[key]
	if !ok || !now.Before(w.reset) {
		w = &window{reset: now.Add(d)}
		m.windows[key] = w
		m.sweep(now)
	}
	w.count++
	return w.count, w.reset, nil
}

// sweep drops expired windows; callers hold mu.
func (m *MemoryCounter) sweep(now time.Time) {
	for k, w := range m.windows {
		if !now.Before(w.reset) {
			delete(m.windows, k)
		}
	}
}

func ClientIP(c *gin.Context) string {
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	host, _, err := net.SplitHostPort(ip)
	if err == nil && host != "" {
		return host
	}
	return ip
}

// Middleware rejects requests beyond rule.Max per client in rule.Window.
// Counter failures let the request through.
func Middleware(ctr Counter, rule Rule, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ratelimit:" + rule.Name + ":" + ClientIP(c)
		n, reset, err := ctr.Incr(c.Request.Context(), key, rule.Window)
		if err != nil {
			log.Warn("rate limit counter failed", zap.String("rule", rule.Name), zap.Error(err))
			c.Next()
			return
		}

		remaining := rule.Max - n
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.FormatInt(rule.Max, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))

		if n > rule.Max {
			_ = c.Error(apperr.New(apperr.KindRateLimited, "Too many requests, please try again later"))
			c.Abort()
			return
		}
		c.Next()
	}
}

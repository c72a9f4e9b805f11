package mw

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/MrSnakeDoc/newtab/internal/utils"
)

// RateLimitConfig configures a per-client-IP token bucket.
type RateLimitConfig struct {
	Burst             int
	RefillPerIPPerMin int
	MaxEntries        int // sweep idle clients early once this many are tracked
	SweepInterval     time.Duration
	IdleTTL           time.Duration
	TrustProxy        bool             // resolve IP from proxy headers
	Now               func() time.Time // defaults to time.Now
}

func (c RateLimitConfig) withDefaults() RateLimitConfig {
	if c.SweepInterval <= 0 {
		c.SweepInterval = time.Minute
	}
	if c.IdleTTL <= 0 {
		c.IdleTTL = 15 * time.Minute
	}
	c.Burst = max(c.Burst, 1)
	c.RefillPerIPPerMin = max(c.RefillPerIPPerMin, 1)
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

type client struct {
	tokens float64
	filled time.Time // last refill
	seen   time.Time // last accepted request
}

// verdict is the outcome of one take.
type verdict struct {
	allowed    bool
	remaining  int
	retryAfter int // seconds, only set when !allowed
}

// buckets tracks one token bucket per key under a single lock.
type buckets struct {
	cfg       RateLimitConfig
	perSecond float64
	size      float64

	mu        sync.Mutex
	clients   map[string]*client
	lastSweep time.Time
}

func newBuckets(cfg RateLimitConfig) *buckets {
	return &buckets{
		cfg:       cfg,
		perSecond: float64(cfg.RefillPerIPPerMin) / 60,
		size:      float64(cfg.Burst),
		clients:   make(map[string]*client),
		lastSweep: cfg.Now(),
	}
}

func (b *buckets) take(key string, now time.Time) verdict {
	b.mu.Lock()
	defer b.mu.Unlock()

	crowded := b.cfg.MaxEntries > 0 && len(b.clients) >= b.cfg.MaxEntries
	if crowded || now.Sub(b.lastSweep) >= b.cfg.SweepInterval {
		b.sweep(now)
	}

	c, ok := b.clients[key]
	if !ok {
		c = &client{tokens: b.size, filled: now, seen: now}
		b.clients[key] = c
	}

	if dt := now.Sub(c.filled).Seconds(); dt > 0 {
		c.tokens = math.Min(b.size, c.tokens+dt*b.perSecond)
		c.filled = now
	}

	if c.tokens < 1 {
		wait := int(math.Ceil((1 - c.tokens) / b.perSecond))
		return verdict{retryAfter: max(wait, 1)}
	}

	c.tokens--
	c.seen = now
	return verdict{allowed: true, remaining: int(c.tokens)}
}

// sweep forgets clients idle for longer than IdleTTL. Callers hold b.mu.
func (b *buckets) sweep(now time.Time) {
	for key, c := range b.clients {
		if now.Sub(c.seen) > b.cfg.IdleTTL {
			delete(b.clients, key)
		}
	}
	b.lastSweep = now
}

// RateLimit rejects requests with 429 once a client IP has spent its burst.
// Every response carries X-RateLimit-Limit and X-RateLimit-Remaining.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	cfg = cfg.withDefaults()
	b := newBuckets(cfg)
	limit := strconv.Itoa(cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			v := b.take(utils.ClientIP(r, cfg.TrustProxy), cfg.Now())

			h := w.Header()
			h.Set("X-RateLimit-Limit", limit)
			h.Set("X-RateLimit-Remaining", strconv.Itoa(v.remaining))

			if !v.allowed {
				h.Set("Retry-After", strconv.Itoa(v.retryAfter))
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

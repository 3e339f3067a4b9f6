package memory

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/alanyoungcy/quiverx/internal/domain"
)

// sweepEvery is how often idle buckets are looked for.
const sweepEvery = time.Minute

// RateLimiter is a per-key token bucket. A bucket refills limit tokens per
// window and allows bursts of up to limit. Buckets idle for a full window
// are full again and get evicted.
type RateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
	now       func() time.Time
}

type bucket struct {
	lim      *rate.Limiter
	window   time.Duration
	lastSeen time.Time
}

// NewRateLimiter creates an empty limiter set.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{buckets: make(map[string]*bucket), now: time.Now}
}

// Allow implements domain.RateLimiter.
func (r *RateLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 || window <= 0 {
		return true, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if now.Sub(r.lastSweep) >= sweepEvery {
		r.sweep(now)
	}
	b, ok := r.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(rate.Every(window/time.Duration(limit)), limit), window: window}
		r.buckets[key] = b
	}
	b.lastSeen = now
	return b.lim.AllowN(now, 1), nil
}

// sweep must be called with r.mu held.
func (r *RateLimiter) sweep(now time.Time) {
	for key, b := range r.buckets {
		if now.Sub(b.lastSeen) >= b.window {
			delete(r.buckets, key)
		}
	}
	r.lastSweep = now
}

// Len reports how many buckets are tracked.
func (r *RateLimiter) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buckets)
}

var _ domain.RateLimiter = (*RateLimiter)(nil)

package ratelimit

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// TokenBucketLimiter is an in-process per-key limiter used when no Redis is
// configured. Quotas are per replica.
type TokenBucketLimiter struct {
	mu      sync.Mutex
	every   rate.Limit
	burst   int
	idleTTL time.Duration
	buckets map[string]*bucket
	sweepAt time.Time
	now     func() time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewTokenBucketLimiter allows limit events per window with a burst of limit.
func NewTokenBucketLimiter(limit int, window time.Duration) *TokenBucketLimiter {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &TokenBucketLimiter{
		every:   rate.Limit(float64(limit) / window.Seconds()),
		burst:   limit,
		idleTTL: 10 * window,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

func (l *TokenBucketLimiter) Allow(key string) bool {
	key = strings.TrimSpace(key)
	if key == "" {
		key = "unknown"
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.every, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

func (l *TokenBucketLimiter) sweep(now time.Time) {
	if now.Before(l.sweepAt) {
		return
	}
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.idleTTL {
			delete(l.buckets, key)
		}
	}
	l.sweepAt = now.Add(l.idleTTL)
}

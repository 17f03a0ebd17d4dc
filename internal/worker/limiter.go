package worker

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter implements per-key token-bucket rate limiting.
// Keys are client IPs for the HTTP server and a single shared key for batch runs.
type Limiter struct {
	limiters     map[string]*entry
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
	now          func() time.Time
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLimiter creates a new rate limiter
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}

	return &Limiter{
		limiters:     make(map[string]*entry),
		defaultRate:  rate.Limit(requestsPerSecond),
		defaultBurst: burst,
		now:          time.Now,
	}
}

// Wait waits for rate limit clearance for the given key
func (l *Limiter) Wait(ctx context.Context, key string) error {
	return l.getLimiter(key).Wait(ctx)
}

// Allow checks if a request is allowed without waiting
func (l *Limiter) Allow(key string) bool {
	return l.getLimiter(key).Allow()
}

// getLimiter returns the rate limiter for a key, creating it on first use
func (l *Limiter) getLimiter(key string) *rate.Limiter {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if e, exists := l.limiters[key]; exists {
		e.lastSeen = now
		return e.limiter
	}

	e := &entry{
		limiter:  rate.NewLimiter(l.defaultRate, l.defaultBurst),
		lastSeen: now,
	}
	l.limiters[key] = e

	return e.limiter
}

// Sweep drops keys not seen for longer than idle and returns how many were removed
func (l *Limiter) Sweep(idle time.Duration) int {
	cutoff := l.now().Add(-idle)

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, e := range l.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(l.limiters, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys
func (l *Limiter) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.limiters)
}

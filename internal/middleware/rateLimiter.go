package middleware

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/svemula/chatvector/internal/config"
)

var limiterInstance = newIPRateLimiter(rate.Limit(config.RATE_LIMIT_PER_SECOND), config.BURST_RATE_LIMIT_PER_SECOND)

type ipEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipRateLimiter keeps one token bucket per caller IP. Entries idle longer
// than the eviction window are dropped so the map stays bounded.
type ipRateLimiter struct {
	entries   map[string]*ipEntry
	mu        sync.Mutex
	rateLimit rate.Limit
	burstRate int
}

func newIPRateLimiter(r rate.Limit, b int) *ipRateLimiter {
	l := &ipRateLimiter{
		entries:   make(map[string]*ipEntry),
		rateLimit: r,
		burstRate: b,
	}
	go l.evictIdle()
	return l
}

func (l *ipRateLimiter) GetLimiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, exists := l.entries[ip]
	if !exists {
		entry = &ipEntry{limiter: rate.NewLimiter(l.rateLimit, l.burstRate)}
		l.entries[ip] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter
}

func (l *ipRateLimiter) evictIdle() {
	ticker := time.NewTicker(config.RateLimitEvictionInterval)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-config.RateLimitEvictionInterval)
		l.mu.Lock()
		for ip, entry := range l.entries {
			if entry.lastSeen.Before(cutoff) {
				delete(l.entries, ip)
			}
		}
		l.mu.Unlock()
	}
}

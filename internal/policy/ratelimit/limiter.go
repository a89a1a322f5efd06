// Package ratelimit paces client document fetches per target host with token buckets.
package ratelimit

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/JakeFAU/indieauth-client-discovery/internal/metrics"
)

const (
	// unknownHost collects URLs whose host cannot be determined.
	unknownHost = "unknown"

	// DefaultMaxHosts bounds the number of buckets held at once.
	DefaultMaxHosts = 10000
)

// Config holds rate limiter configuration. A non-positive PerHostRPS disables limiting.
type Config struct {
	PerHostRPS   float64
	PerHostBurst int
	// MaxHosts caps the buckets kept in memory. Zero means DefaultMaxHosts.
	MaxHosts int
}

type bucket struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// Limiter keeps one token bucket per host. A bucket idle for longer than it takes to
// refill completely is indistinguishable from a new one, so such buckets are dropped.
type Limiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	rate     rate.Limit
	burst    int
	maxHosts int
	idleTTL  time.Duration
	now      func() time.Time
}

// New creates a Limiter.
func New(cfg Config) *Limiter {
	r := rate.Limit(cfg.PerHostRPS)
	if cfg.PerHostRPS <= 0 {
		r = rate.Inf
	}
	burst := cfg.PerHostBurst
	if burst <= 0 {
		burst = 1
	}
	maxHosts := cfg.MaxHosts
	if maxHosts <= 0 {
		maxHosts = DefaultMaxHosts
	}
	var idle time.Duration
	if r != rate.Inf {
		idle = time.Duration(float64(burst) / float64(r) * float64(time.Second))
	}
	return &Limiter{
		buckets:  make(map[string]*bucket),
		rate:     r,
		burst:    burst,
		maxHosts: maxHosts,
		idleTTL:  idle,
		now:      time.Now,
	}
}

// Enabled reports whether the limiter ever delays a request.
func (l *Limiter) Enabled() bool {
	return l.rate != rate.Inf
}

// Wait blocks until rawURL's host has a token or ctx is done.
func (l *Limiter) Wait(ctx context.Context, rawURL string) error {
	if !l.Enabled() {
		return nil
	}
	host := hostOf(rawURL)
	limiter := l.forHost(host)

	start := time.Now()
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait for %s: %w", host, err)
	}
	if delay := time.Since(start); delay > time.Millisecond {
		metrics.ObserveRateLimitDelay(delay)
	}
	return nil
}

// Len reports the number of buckets currently held.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *Limiter) forHost(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if b, ok := l.buckets[host]; ok {
		b.lastUsed = now
		return b.limiter
	}
	if len(l.buckets) >= l.maxHosts {
		l.evict(now)
	}
	b := &bucket{limiter: rate.NewLimiter(l.rate, l.burst), lastUsed: now}
	l.buckets[host] = b
	return b.limiter
}

// evict drops every bucket idle past idleTTL. When all buckets are recent it drops the
// least recently used one so the map never exceeds maxHosts. Callers hold l.mu.
func (l *Limiter) evict(now time.Time) {
	var (
		oldestHost string
		oldest     time.Time
	)
	for host, b := range l.buckets {
		if now.Sub(b.lastUsed) > l.idleTTL {
			delete(l.buckets, host)
			continue
		}
		if oldestHost == "" || b.lastUsed.Before(oldest) {
			oldestHost, oldest = host, b.lastUsed
		}
	}
	if len(l.buckets) >= l.maxHosts && oldestHost != "" {
		delete(l.buckets, oldestHost)
	}
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return unknownHost
	}
	return strings.ToLower(u.Hostname())
}

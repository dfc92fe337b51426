// Package ratelimit caps mutating requests per client IP. The app is
// single-user, so the limit is generous; it exists to blunt scripted
// abuse, not to shape legitimate traffic.
package ratelimit

import (
	"sync"
	"time"
)

// Config tunes the limiter.
type Config struct {
	// RequestsPerMinute is the budget per client IP in a fixed window.
	RequestsPerMinute int

	// CleanupInterval controls how often idle IP entries are dropped.
	CleanupInterval time.Duration
}

// DefaultConfig allows one request per second on average.
func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 60,
		CleanupInterval:   5 * time.Minute,
	}
}

// Limiter counts requests per client IP in fixed one-minute windows.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket

	limit    int
	interval time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

type bucket struct {
	windowStart time.Time
	count       int
}

// NewLimiter starts a limiter and its janitor goroutine. Call Stop on
// shutdown.
func NewLimiter(cfg Config) *Limiter {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = DefaultConfig().RequestsPerMinute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultConfig().CleanupInterval
	}

	l := &Limiter{
		buckets:  make(map[string]*bucket),
		limit:    cfg.RequestsPerMinute,
		interval: cfg.CleanupInterval,
		stop:     make(chan struct{}),
	}
	go l.janitor()
	return l
}

// Allow reports whether a request from clientIP fits in the current
// window. The counter resets once the window is a minute old.
func (l *Limiter) Allow(clientIP string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	b, ok := l.buckets[clientIP]
	if !ok || now.Sub(b.windowStart) >= time.Minute {
		l.buckets[clientIP] = &bucket{windowStart: now, count: 1}
		return true
	}

	b.count++
	return b.count <= l.limit
}

// ActiveClients returns the number of IPs currently tracked.
func (l *Limiter) ActiveClients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Stop terminates the janitor goroutine.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *Limiter) janitor() {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.dropIdle()
		case <-l.stop:
			return
		}
	}
}

// dropIdle removes IPs whose window closed several minutes ago.
func (l *Limiter) dropIdle() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, b := range l.buckets {
		if b.windowStart.Before(cutoff) {
			delete(l.buckets, ip)
		}
	}
}

package http

import (
	"sync"
	"sync/atomic"
	"time"
)

// Mutating API requests draw from a per-client budget over a fixed
// one-minute window. The ledger is effectively single-user, so the limiter
// only needs to stop a runaway client, not shape traffic.
const (
	rateLimitWindow  = time.Minute
	defaultRateLimit = 60
	bucketSweepEvery = 5 * time.Minute
	bucketStaleAfter = 10 * time.Minute
)

type rateLimiter struct {
	mu        sync.Mutex
	perWindow int
	buckets   map[string]*requestBucket
	done      chan struct{}
	closeOnce sync.Once
}

type requestBucket struct {
	windowStart time.Time
	lastSeen    time.Time
	count       int
}

func newRateLimiter(perWindow int) *rateLimiter {
	if perWindow < 1 {
		perWindow = defaultRateLimit
	}
	rl := &rateLimiter{
		perWindow: perWindow,
		buckets:   make(map[string]*requestBucket),
		done:      make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

// allow records one request from clientIP and reports whether it fits the
// current window's budget. A bucket resets once its window has elapsed.
func (rl *rateLimiter) allow(clientIP string, metrics *securityMetrics) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b, ok := rl.buckets[clientIP]
	if !ok || now.Sub(b.windowStart) >= rateLimitWindow {
		rl.buckets[clientIP] = &requestBucket{windowStart: now, lastSeen: now, count: 1}
		return true
	}

	b.count++
	b.lastSeen = now
	if b.count > rl.perWindow {
		if metrics != nil {
			atomic.AddInt64(&metrics.rateLimitHits, 1)
		}
		return false
	}
	return true
}

// sweepLoop drops buckets for clients that have gone quiet, so the map does
// not grow with every address ever seen.
func (rl *rateLimiter) sweepLoop() {
	ticker := time.NewTicker(bucketSweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweep(time.Now())
		case <-rl.done:
			return
		}
	}
}

func (rl *rateLimiter) sweep(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, b := range rl.buckets {
		if now.Sub(b.lastSeen) > bucketStaleAfter {
			delete(rl.buckets, ip)
		}
	}
}

// stop ends the sweep goroutine. Safe to call more than once.
func (rl *rateLimiter) stop() {
	rl.closeOnce.Do(func() {
		close(rl.done)
	})
}

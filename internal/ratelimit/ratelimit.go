// Package ratelimit provides a best-effort per-IP limiter and a small
// idempotency cache for the public API routes. Both are in-process; a
// multi-instance deployment would swap these for a shared store.
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

type bucket struct {
	count   int
	resetAt time.Time
}

// Limiter counts requests per key inside a fixed window.
type Limiter struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

func NewLimiter(limit int, window time.Duration) *Limiter {
	return &Limiter{
		limit:   limit,
		window:  window,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Allow reports whether the key is within its budget, and when it is not,
// how long until the window resets.
func (l *Limiter) Allow(key string) (bool, time.Duration) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok || now.After(b.resetAt) {
		l.buckets[key] = &bucket{count: 1, resetAt: now.Add(l.window)}
		return true, 0
	}

	b.count++
	if b.count > l.limit {
		retry := b.resetAt.Sub(now)
		if retry < time.Second {
			retry = time.Second
		}
		return false, retry
	}
	return true, 0
}

// ClientIP extracts the caller's address, preferring X-Forwarded-For when a
// proxy sits in front.
func ClientIP(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		if ip := strings.TrimSpace(strings.Split(xf, ",")[0]); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

// IdempotencyCache remembers responses for repeated turn requests so retries
// don't re-run the engine.
type IdempotencyCache struct {
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]cacheEntry
	now     func() time.Time
}

func NewIdempotencyCache(ttl time.Duration) *IdempotencyCache {
	return &IdempotencyCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached response for key, if present and fresh.
func (c *IdempotencyCache) Get(key string) ([]byte, bool) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if now.After(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.value, true
}

// Set stores the response for key for the cache's TTL.
func (c *IdempotencyCache) Set(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{value: value, expiresAt: c.now().Add(c.ttl)}
}

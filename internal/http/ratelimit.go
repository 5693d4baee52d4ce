package http

import (
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

const (
	defaultBurst = 10
	// maxClients bounds the number of token buckets kept; the least recently
	// seen client is forgotten first.
	maxClients = 1024
)

// RateLimiter enforces per-client request rates with a token bucket per key.
type RateLimiter struct {
	buckets *lru.Cache[string, *rate.Limiter]
	r       rate.Limit // refill rate, requests per second
	burst   int
}

// NewRateLimiter allows rpm requests per minute per key with the given burst.
// rpm <= 0 disables limiting.
func NewRateLimiter(rpm, burst int) *RateLimiter {
	if burst <= 0 {
		burst = defaultBurst
	}
	rl := &RateLimiter{burst: burst}
	if rpm > 0 {
		rl.r = rate.Limit(float64(rpm) / 60)
		rl.buckets, _ = lru.New[string, *rate.Limiter](maxClients)
	}
	return rl
}

// Allow reports whether a request from key may proceed.
func (rl *RateLimiter) Allow(key string) bool {
	if !rl.Enabled() {
		return true
	}
	if !rl.bucket(key).Allow() {
		slog.Warn("security.rate_limited", "key", key)
		return false
	}
	return true
}

// Enabled reports whether the limiter is active.
func (rl *RateLimiter) Enabled() bool {
	return rl.r > 0
}

func (rl *RateLimiter) bucket(key string) *rate.Limiter {
	if b, ok := rl.buckets.Get(key); ok {
		return b
	}
	b := rate.NewLimiter(rl.r, rl.burst)
	if prev, found, _ := rl.buckets.PeekOrAdd(key, b); found {
		return prev
	}
	return b
}

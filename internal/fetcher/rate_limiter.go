package fetcher

import (
	"context"
	"net/url"
	"sync"
	"time"
)

// RateLimiter enforces a minimum delay between requests to the same host.
// Both source sites throttle aggressive crawlers, so every fetch waits here
// before going out.
type RateLimiter struct {
	limiters     map[string]*hostLimiter
	mu           sync.Mutex
	defaultDelay time.Duration
}

type hostLimiter struct {
	lastRequest time.Time
	mu          sync.Mutex
	delay       time.Duration
}

// NewRateLimiter creates a new rate limiter with the specified default delay
func NewRateLimiter(defaultDelay time.Duration) *RateLimiter {
	return &RateLimiter{
		limiters:     make(map[string]*hostLimiter),
		defaultDelay: defaultDelay,
	}
}

// Wait blocks until the rate limit for the URL's host is satisfied
func (rl *RateLimiter) Wait(ctx context.Context, rawURL string) error {
	host := extractHost(rawURL)
	if host == "" || rl.defaultDelay <= 0 {
		return nil
	}

	rl.mu.Lock()
	limiter, exists := rl.limiters[host]
	if !exists {
		limiter = &hostLimiter{delay: rl.defaultDelay}
		rl.limiters[host] = limiter
	}
	rl.mu.Unlock()

	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	now := time.Now()
	nextAllowed := limiter.lastRequest.Add(limiter.delay)

	if now.Before(nextAllowed) {
		timer := time.NewTimer(nextAllowed.Sub(now))
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	limiter.lastRequest = time.Now()
	return nil
}

func extractHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}

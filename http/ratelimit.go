package http

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter manages per-domain request rate limiting using token bucket algorithm.
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	config   RateLimiterConfig
}

// RateLimiterConfig defines rate limiting behavior.
type RateLimiterConfig struct {
	// DataAPIRPS is requests per second for the YouTube Data API.
	DataAPIRPS float64
	// WebRPS is requests per second for youtube.com pages and caption tracks.
	WebRPS float64
	// CustomRates maps domains to RPS values. A zero value disables limiting
	// for that domain.
	CustomRates map[string]float64
}

// DefaultRateLimiterConfig returns defaults aligned with YouTube's rate limits.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		DataAPIRPS:  1.0,
		WebRPS:      2.5,
		CustomRates: make(map[string]float64),
	}
}

// NewRateLimiter creates a new rate limiter with the given configuration.
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	if cfg.DataAPIRPS == 0 {
		cfg.DataAPIRPS = DefaultRateLimiterConfig().DataAPIRPS
	}
	if cfg.WebRPS == 0 {
		cfg.WebRPS = DefaultRateLimiterConfig().WebRPS
	}
	if cfg.CustomRates == nil {
		cfg.CustomRates = make(map[string]float64)
	}

	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		config:   cfg,
	}
}

// Wait waits until the rate limit allows a request for the given URL.
// Returns an error if the context is canceled or exceeded deadline.
func (rl *RateLimiter) Wait(ctx context.Context, urlStr string) error {
	if rl == nil {
		return nil
	}

	limiter := rl.getLimiter(urlStr)
	if limiter == nil {
		return nil
	}

	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	return nil
}

// getLimiter returns the rate limiter for a given URL, creating one if necessary.
func (rl *RateLimiter) getLimiter(urlStr string) *rate.Limiter {
	domain := extractDomain(urlStr)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rps := rl.getRPS(domain)
	if rps <= 0 {
		return nil
	}

	if limiter, ok := rl.limiters[domain]; ok {
		return limiter
	}

	// Burst of 1: requests are spaced evenly rather than bunched.
	limiter := rate.NewLimiter(rate.Limit(rps), 1)
	rl.limiters[domain] = limiter
	return limiter
}

// getRPS returns the requests per second for a given domain.
// Callers must hold rl.mu.
func (rl *RateLimiter) getRPS(domain string) float64 {
	if rps, ok := rl.config.CustomRates[domain]; ok {
		return rps
	}

	switch domain {
	case "youtube.googleapis.com", "www.googleapis.com", "googleapis.com":
		return rl.config.DataAPIRPS
	case "www.youtube.com", "youtube.com", "m.youtube.com":
		return rl.config.WebRPS
	default:
		return 0
	}
}

// extractDomain extracts the host (without port) from a URL string.
func extractDomain(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Hostname()
}

// SetCustomRate sets a custom rate limit for a specific domain.
func (rl *RateLimiter) SetCustomRate(domain string, rps float64) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.config.CustomRates[domain] = rps

	// Clear existing limiter to force recreation with new rate
	delete(rl.limiters, domain)
}

// Stats returns the configured rate of every domain that has been used.
func (rl *RateLimiter) Stats() map[string]float64 {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	stats := make(map[string]float64, len(rl.limiters))
	for domain := range rl.limiters {
		stats[domain] = rl.getRPS(domain)
	}
	return stats
}

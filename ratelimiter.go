package qexp

import (
	"context"
	"sync"
	"time"
)

/*
RateLimiter throttles requests to a remote service with a token bucket.
Each request takes one token and tokens come back at one per refillRate, up to
maxTokens, so short bursts go through and sustained polling settles at the
refill rate.
*/
type RateLimiter struct {
	tokens     int           // Current number of available tokens
	maxTokens  int           // Maximum token capacity
	refillRate time.Duration // Time between token replenishments
	lastRefill time.Time     // Last time tokens were added
	mu         sync.Mutex
}

/*
NewRateLimiter creates a limiter that starts with a full bucket.

Example:

	limiter := NewRateLimiter(5, 200*time.Millisecond) // bursts of 5, then 5 req/s
*/
func NewRateLimiter(maxTokens int, refillRate time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Limit consumes a token if one is available and reports whether the caller must hold off.
func (rl *RateLimiter) Limit() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill()
	if rl.tokens > 0 {
		rl.tokens--
		return false
	}
	return true
}

// Wait blocks until a token is available or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for rl.Limit() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(rl.untilNext()):
		}
	}
	return nil
}

func (rl *RateLimiter) untilNext() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	wait := rl.refillRate - time.Since(rl.lastRefill)
	if wait <= 0 {
		return time.Millisecond
	}
	return wait
}

// refill assumes the caller holds the mutex.
func (rl *RateLimiter) refill() {
	if rl.refillRate <= 0 {
		rl.tokens = rl.maxTokens
		return
	}

	periods := int(time.Since(rl.lastRefill) / rl.refillRate)
	if periods > 0 {
		rl.tokens = min(rl.maxTokens, rl.tokens+periods)
		// keep the partial period so the next token is not delayed
		rl.lastRefill = rl.lastRefill.Add(time.Duration(periods) * rl.refillRate)
	}
}

package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

type RateLimiter interface {
	Wait(ctx context.Context) error
}

// JitteredRateLimiter spaces outbound fetches by a random delay between
// minDelay and maxDelay, so batch runs do not hammer the marketplace with a
// fixed cadence.
type JitteredRateLimiter struct {
	minDelay   time.Duration
	maxDelay   time.Duration
	lastAction time.Time
	mu         sync.Mutex
}

func NewJitteredRateLimiter(minDelay, maxDelay time.Duration) *JitteredRateLimiter {
	return &JitteredRateLimiter{
		minDelay: minDelay,
		maxDelay: maxDelay,
	}
}

func (r *JitteredRateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	elapsed := time.Since(r.lastAction)
	delay := r.delay()

	if elapsed < delay {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay - elapsed):
		}
	}

	r.lastAction = time.Now()
	return nil
}

func (r *JitteredRateLimiter) delay() time.Duration {
	if r.maxDelay <= r.minDelay {
		return r.minDelay
	}
	jitter := time.Duration(rand.Int63n(int64(r.maxDelay - r.minDelay)))
	return r.minDelay + jitter
}

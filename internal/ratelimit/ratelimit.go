package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/amishk599/internradar/internal/model"
)

// Limiter enforces a minimum delay between consecutive calls sharing a key.
// Keys are platform names for page requests, "telegram" for message sends.
type Limiter struct {
	mu       sync.Mutex
	lastCall map[string]time.Time
	minDelay time.Duration
}

// NewLimiter creates a limiter that spaces calls with the same key by minDelay.
func NewLimiter(minDelay time.Duration) *Limiter {
	return &Limiter{
		lastCall: make(map[string]time.Time),
		minDelay: minDelay,
	}
}

// Wait blocks until minDelay has passed since the previous call for key.
// Returns an error if ctx is cancelled while waiting.
func (r *Limiter) Wait(ctx context.Context, key string) error {
	r.mu.Lock()
	last, ok := r.lastCall[key]
	now := time.Now()

	if !ok || now.Sub(last) >= r.minDelay {
		r.lastCall[key] = now
		r.mu.Unlock()
		return nil
	}

	remaining := r.minDelay - now.Sub(last)
	// Reserve the slot so concurrent callers queue behind this one.
	r.lastCall[key] = now.Add(remaining)
	r.mu.Unlock()

	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limiter wait for %s: %w", key, ctx.Err())
	case <-time.After(remaining):
	}
	return nil
}

// RateLimitedSource spaces whole fetches that share a key. The poller wraps
// every platform with the same key so consecutive platforms are not hit
// back to back.
type RateLimitedSource struct {
	inner   model.Source
	limiter *Limiter
	key     string
}

// NewRateLimitedSource wraps a Source with a shared limiter.
func NewRateLimitedSource(inner model.Source, limiter *Limiter, key string) *RateLimitedSource {
	return &RateLimitedSource{
		inner:   inner,
		limiter: limiter,
		key:     key,
	}
}

func (s *RateLimitedSource) Platform() model.Platform {
	return s.inner.Platform()
}

// FetchPostings waits for the limiter, then delegates to the wrapped source.
func (s *RateLimitedSource) FetchPostings(ctx context.Context) ([]model.Posting, error) {
	if err := s.limiter.Wait(ctx, s.key); err != nil {
		return nil, err
	}
	return s.inner.FetchPostings(ctx)
}

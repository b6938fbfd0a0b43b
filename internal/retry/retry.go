package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/amishk599/internradar/internal/model"
)

// maxRetryAfter caps how long a server-provided Retry-After may stall a cycle.
const maxRetryAfter = 2 * time.Minute

// RetrySource is a decorator that retries transient failures with exponential
// backoff and jitter before giving up on a platform for this cycle.
type RetrySource struct {
	inner      model.Source
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger
}

// NewRetrySource wraps a Source with retry logic.
// maxRetries is the number of additional attempts after the first failure.
// baseDelay is the delay before the first retry, doubled on each subsequent retry.
func NewRetrySource(inner model.Source, maxRetries int, baseDelay time.Duration, logger *slog.Logger) *RetrySource {
	return &RetrySource{
		inner:      inner,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     logger.With("platform", string(inner.Platform())),
	}
}

func (s *RetrySource) Platform() model.Platform {
	return s.inner.Platform()
}

// FetchPostings attempts the fetch, retrying on transient errors.
func (s *RetrySource) FetchPostings(ctx context.Context) ([]model.Posting, error) {
	postings, err := s.inner.FetchPostings(ctx)
	if err == nil {
		return postings, nil
	}
	if !isRetryable(err) {
		return nil, err
	}

	lastErr := err
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		delay := s.backoffDelay(attempt, lastErr)

		s.logger.Warn("retrying after transient error",
			"attempt", attempt,
			"max_retries", s.maxRetries,
			"delay", delay,
			"error", lastErr,
		)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}

		postings, err = s.inner.FetchPostings(ctx)
		if err == nil {
			return postings, nil
		}
		if !isRetryable(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}

// backoffDelay computes the delay for a given attempt with ±30% jitter.
// A Retry-After from the server takes precedence, capped at maxRetryAfter.
func (s *RetrySource) backoffDelay(attempt int, err error) time.Duration {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		return min(httpErr.RetryAfter, maxRetryAfter)
	}

	delay := s.baseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
	}

	jitter := float64(delay) * 0.3
	return time.Duration(float64(delay) + (rand.Float64()*2-1)*jitter)
}

// isRetryable returns true if the error represents a transient failure worth retrying.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= 500
	}

	// Network, DNS and decode errors.
	return true
}

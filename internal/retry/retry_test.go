package retry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/amishk599/internradar/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockSource calls a function on each invocation, tracking call count.
type mockSource struct {
	calls int
	fn    func(attempt int) ([]model.Posting, error)
}

func (m *mockSource) Platform() model.Platform { return model.PlatformAICTE }

func (m *mockSource) FetchPostings(_ context.Context) ([]model.Posting, error) {
	m.calls++
	return m.fn(m.calls)
}

func TestRetry_SucceedsOnFirstAttempt(t *testing.T) {
	postings := []model.Posting{{ID: "1", Title: "ML Intern"}}
	mock := &mockSource{fn: func(_ int) ([]model.Posting, error) {
		return postings, nil
	}}

	rs := NewRetrySource(mock, 2, 10*time.Millisecond, discardLogger())
	got, err := rs.FetchPostings(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("unexpected postings: %v", got)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call, got %d", mock.calls)
	}
	if rs.Platform() != model.PlatformAICTE {
		t.Errorf("expected platform passthrough, got %s", rs.Platform())
	}
}

func TestRetry_RetriesOn5xx_SucceedsOnSecondAttempt(t *testing.T) {
	mock := &mockSource{fn: func(attempt int) ([]model.Posting, error) {
		if attempt == 1 {
			return nil, &model.HTTPError{StatusCode: 503, Err: errors.New("service unavailable")}
		}
		return []model.Posting{{ID: "1"}}, nil
	}}

	rs := NewRetrySource(mock, 2, 10*time.Millisecond, discardLogger())
	got, err := rs.FetchPostings(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(got))
	}
	if mock.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.calls)
	}
}

func TestRetry_RetriesNetworkErrors(t *testing.T) {
	mock := &mockSource{fn: func(attempt int) ([]model.Posting, error) {
		if attempt < 3 {
			return nil, errors.New("connection reset by peer")
		}
		return nil, nil
	}}

	rs := NewRetrySource(mock, 2, 5*time.Millisecond, discardLogger())
	if _, err := rs.FetchPostings(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.calls != 3 {
		t.Fatalf("expected 3 calls, got %d", mock.calls)
	}
}

func TestRetry_DoesNotRetryOn4xx(t *testing.T) {
	mock := &mockSource{fn: func(_ int) ([]model.Posting, error) {
		return nil, &model.HTTPError{StatusCode: 404, Err: errors.New("not found")}
	}}

	rs := NewRetrySource(mock, 2, 10*time.Millisecond, discardLogger())
	_, err := rs.FetchPostings(context.Background())
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != 404 {
		t.Fatalf("expected HTTPError with status 404, got %v", err)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call (no retry), got %d", mock.calls)
	}
}

func TestRetry_GivesUpAfterMaxRetries(t *testing.T) {
	mock := &mockSource{fn: func(_ int) ([]model.Posting, error) {
		return nil, &model.HTTPError{StatusCode: 500, Err: errors.New("internal error")}
	}}

	rs := NewRetrySource(mock, 2, 10*time.Millisecond, discardLogger())
	if _, err := rs.FetchPostings(context.Background()); err == nil {
		t.Fatal("expected error after max retries, got nil")
	}
	// 1 initial + 2 retries
	if mock.calls != 3 {
		t.Fatalf("expected 3 calls, got %d", mock.calls)
	}
}

func TestRetry_RespectsContextCancellation(t *testing.T) {
	mock := &mockSource{fn: func(_ int) ([]model.Posting, error) {
		return nil, &model.HTTPError{StatusCode: 500, Err: errors.New("internal error")}
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rs := NewRetrySource(mock, 2, time.Second, discardLogger())
	_, err := rs.FetchPostings(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call before cancellation, got %d", mock.calls)
	}
}

func TestBackoffDelay_PrefersRetryAfter(t *testing.T) {
	rs := NewRetrySource(&mockSource{}, 2, time.Second, discardLogger())

	got := rs.backoffDelay(1, &model.HTTPError{StatusCode: 429, RetryAfter: 7 * time.Second})
	if got != 7*time.Second {
		t.Errorf("expected 7s, got %v", got)
	}

	got = rs.backoffDelay(1, &model.HTTPError{StatusCode: 429, RetryAfter: time.Hour})
	if got != maxRetryAfter {
		t.Errorf("expected cap %v, got %v", maxRetryAfter, got)
	}

	got = rs.backoffDelay(2, errors.New("eof"))
	if got < 1400*time.Millisecond || got > 2600*time.Millisecond {
		t.Errorf("expected ~2s with jitter, got %v", got)
	}
}

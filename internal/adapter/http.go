package adapter

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/amishk599/internradar/internal/model"
)

// Both sites serve a reduced page (or a bot wall) to non-browser agents.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

func setBrowserHeaders(req *http.Request, accept string) {
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
}

// statusError converts a non-200 response into a model.HTTPError so the retry
// decorator can classify it.
func statusError(resp *http.Response) error {
	return &model.HTTPError{
		StatusCode: resp.StatusCode,
		RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		Err:        fmt.Errorf("unexpected status %s", resp.Status),
	}
}

// parseRetryAfter parses the Retry-After header value into a duration.
// Supports seconds format (e.g. "120"). Returns zero if absent or unparseable.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

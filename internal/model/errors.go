package model

import (
	"fmt"
	"time"
)

// HTTPError wraps an HTTP status code so retry logic can inspect it.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// ConfigError reports an invalid or missing setting. It is only produced at
// startup.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.Reason)
}

// FetchError reports that a whole platform could not be scraped this cycle.
type FetchError struct {
	Platform Platform
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Platform, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// DeliveryError reports that a single posting could not be delivered.
type DeliveryError struct {
	PostingID string
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver %s: %v", e.PostingID, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// PersistenceError reports a failed SeenSet snapshot write or read.
type PersistenceError struct {
	Backend string
	Err     error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist seen set (%s): %v", e.Backend, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

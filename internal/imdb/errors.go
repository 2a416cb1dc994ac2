package imdb

import (
	"errors"
	"fmt"
	"time"
)

// Error kinds surfaced by the review source. Callers classify failures with
// errors.Is rather than inspecting payloads.
var (
	// ErrRateLimited marks a 429 response; retry the same cursor after
	// backing off.
	ErrRateLimited = errors.New("rate limited")
	// ErrTransient marks a server-side failure worth retrying against a
	// bounded budget.
	ErrTransient = errors.New("transient failure")
	// ErrValidation marks a malformed payload, usually a shape change in
	// the remote source. Not retryable.
	ErrValidation = errors.New("validation failure")
	// ErrNetwork marks a connection-level failure after transport retries
	// were exhausted. Fatal for the current title.
	ErrNetwork = errors.New("network failure")
)

// RateLimitError carries the server's retry hint alongside the ErrRateLimited
// marker.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: retry after %s", e.RetryAfter)
	}
	return "rate limited"
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }

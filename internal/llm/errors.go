package llm

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrRateLimited is returned when the upstream API responds with HTTP 429.
	// Callers can recover from this during generation (fallback message) or
	// retry once during batch embedding.
	ErrRateLimited = errors.New("rate limited")
	// ErrUnavailable is returned for any other upstream failure.
	ErrUnavailable = errors.New("service unavailable")
)

// statusError maps a non-200 HTTP status to a distinguishable error kind.
func statusError(statusCode int, body []byte) error {
	if statusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: bad status %d: %s", ErrRateLimited, statusCode, string(body))
	}
	return fmt.Errorf("%w: bad status %d: %s", ErrUnavailable, statusCode, string(body))
}

// internal/errors/errors.go
package errors

import (
	"errors"
	"fmt"
)

// ErrNetworkTimeout is returned when an upstream call exceeds its time budget.
// It is never retried; callers treat it as a hard failure of the operation.
type ErrNetworkTimeout struct {
	Path string
}

func (e *ErrNetworkTimeout) Error() string {
	return fmt.Sprintf("upstream request timed out: %s", e.Path)
}

// ErrUpstream is returned for a non-2xx, non-304 upstream response.
type ErrUpstream struct {
	StatusCode int
	Body       string
}

func (e *ErrUpstream) Error() string {
	return fmt.Sprintf("upstream API error %d: %s", e.StatusCode, e.Body)
}

// ErrValidation is returned for malformed admin or contact input. It is
// recovered locally and surfaced as a user-facing message.
type ErrValidation struct {
	Field  string
	Reason string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ErrRejectedRequest marks a failed same-origin check on a contact
// submission. Callers treat it like a validation failure.
var ErrRejectedRequest = errors.New("request rejected")

// ErrRateLimited is returned when a rate-limit check denies a request.
var ErrRateLimited = errors.New("too many requests")

// ErrNotConfigured is returned from write paths that need configuration
// (database, credentials) which is absent. Read paths in the sync core
// degrade to empty results instead of returning this.
var ErrNotConfigured = errors.New("required configuration is missing")

package adapter

import (
	"context"
	"errors"
	"net"
)

// Sentinel transport errors. mapHTTPError wraps these with the response
// body so callers can both match with errors.Is and log the server
// message.
var (
	// ErrUnauthorized indicates the API key was rejected (401/403). The
	// controller treats this as fatal for the whole run.
	ErrUnauthorized = errors.New("api key rejected")
	// ErrPreconditionFailed indicates a stale since version (412). Never
	// surfaced to the user; it drives the conflict resolver.
	ErrPreconditionFailed = errors.New("version precondition failed")
	// ErrConflict indicates a named submission failure (409).
	ErrConflict = errors.New("submission conflict")
	// ErrNotFound indicates the requested object does not exist (404).
	ErrNotFound = errors.New("not found")
	// ErrServerUnavailable indicates a 5xx response; retried as transient.
	ErrServerUnavailable = errors.New("server unavailable")
)

// IsTransient reports whether err should go through the transient retry
// path: server-side 5xx failures, network errors and timeouts. Version
// conflicts and auth failures are never transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrServerUnavailable) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

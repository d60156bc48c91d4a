package transport

import (
	"errors"
	"fmt"
)

// NotStartedError is returned when an operation other than Start/Close is
// invoked before a successful Start.
type NotStartedError struct{}

func (e *NotStartedError) Error() string { return "transport: not started" }

// ErrNotStarted is returned by operations requiring a started transport.
var ErrNotStarted error = &NotStartedError{}

// IsNotStarted reports whether err is or wraps a NotStartedError.
func IsNotStarted(err error) bool {
	var target *NotStartedError
	return errors.As(err, &target)
}

// SpawnFailedError reports that the transport's child process or connection
// could not be established.
type SpawnFailedError struct {
	Cause error
}

func (e *SpawnFailedError) Error() string {
	return fmt.Sprintf("transport: spawn failed: %v", e.Cause)
}

func (e *SpawnFailedError) Unwrap() error { return e.Cause }

// NewSpawnFailedError constructs a SpawnFailedError.
func NewSpawnFailedError(cause error) *SpawnFailedError {
	return &SpawnFailedError{Cause: cause}
}

// PeerClosedError reports that the remote peer went away unexpectedly: the
// child process exited, or the HTTP/SSE stream terminated without a clean
// close. Every in-flight request on the transport fails with this error.
type PeerClosedError struct {
	Cause error
}

func (e *PeerClosedError) Error() string {
	if e.Cause == nil {
		return "transport: peer closed"
	}
	return fmt.Sprintf("transport: peer closed: %v", e.Cause)
}

func (e *PeerClosedError) Unwrap() error { return e.Cause }

// NewPeerClosedError constructs a PeerClosedError.
func NewPeerClosedError(cause error) *PeerClosedError {
	return &PeerClosedError{Cause: cause}
}

// InvalidURLError reports a malformed or unsupported transport endpoint.
type InvalidURLError struct {
	URL   string
	Cause error
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("transport: invalid url %q: %v", e.URL, e.Cause)
}

func (e *InvalidURLError) Unwrap() error { return e.Cause }

// NewInvalidURLError constructs an InvalidURLError.
func NewInvalidURLError(url string, cause error) *InvalidURLError {
	return &InvalidURLError{URL: url, Cause: cause}
}

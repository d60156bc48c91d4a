// Package transport defines the contract shared by the stdio, streamable
// HTTP and package (DXT) transports: a serialized actor that ships raw
// JSON-RPC frames in both directions and reports its lifecycle as a state
// stream. Encoding/decoding, request/response correlation, capability
// gating and everything else protocol-shaped lives one layer up, in
// mcpsession; the only wire-codec use inside a transport is httpmcp decoding
// a JSON-RPC error body to report an HTTP failure.
package transport

import "context"

// Transport is the uniform contract the session client drives. A Transport
// owns exactly one underlying I/O resource (a child process, an HTTP
// session) and is never shared between sessions.
type Transport interface {
	// Start launches the transport. It is idempotent once connected: a
	// second call while already started is a no-op.
	Start(ctx context.Context) error

	// Send ships one already-encoded JSON-RPC frame to the peer. It does
	// not wait for a reply; matching a request to its response is the
	// caller's job, driven off Receive.
	Send(ctx context.Context, frame []byte) error

	// Receive returns the channel of raw inbound frames read off the
	// wire, one JSON-RPC message (request, notification or response) per
	// value. The channel is closed when the transport is closed.
	Receive() <-chan []byte

	// Logs returns free-text log lines surfaced out-of-band (stdio
	// stderr, or transport-internal diagnostics). The channel is closed
	// when the transport is closed.
	Logs() <-chan string

	// State returns the connection-state stream. A successful Start emits
	// StateConnected (the stdio and HTTP transports emit StateStarting
	// just before it); subsequent values
	// reflect reconnects and terminal failures. The channel is closed
	// when the transport is closed.
	State() <-chan State

	// Close tears down the transport and its I/O resource. Idempotent.
	Close() error
}

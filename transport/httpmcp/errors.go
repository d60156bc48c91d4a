package httpmcp

import (
	"fmt"

	"github.com/mcphost/mcpclient/jsonrpc"
)

// ServerHTTPError reports an HTTP 4xx/5xx response, optionally carrying the
// JSON-RPC error object decoded from the body.
type ServerHTTPError struct {
	Status      int
	Body        []byte
	DecodedRPC  *jsonrpc.InnerError
}

func (e *ServerHTTPError) Error() string {
	if e.DecodedRPC != nil {
		return fmt.Sprintf("httpmcp: server returned %d: %s", e.Status, e.DecodedRPC.Message)
	}
	return fmt.Sprintf("httpmcp: server returned %d", e.Status)
}

// NewServerHTTPError constructs a ServerHTTPError.
func NewServerHTTPError(status int, body []byte, decoded *jsonrpc.InnerError) *ServerHTTPError {
	return &ServerHTTPError{Status: status, Body: body, DecodedRPC: decoded}
}

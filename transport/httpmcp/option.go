package httpmcp

import (
	"context"
	"net/http"

	"github.com/mcphost/mcpclient/jsonrpc"
)

// Option configures a Transport at construction.
type Option func(*Transport)

// WithHTTPClient overrides the *http.Client used for POST/GET/DELETE.
func WithHTTPClient(client *http.Client) Option {
	return func(t *Transport) { t.HTTPClient = client }
}

// WithAuthorizationToken sets the bearer token sent as Authorization on
// every request.
func WithAuthorizationToken(token string) Option {
	return func(t *Transport) { t.token = token }
}

// WithAuthFlow installs the collaborator invoked on a 401 response. It must
// return a fresh bearer token; the transport retries the triggering request
// once with it.
func WithAuthFlow(flow func(ctx context.Context) (string, error)) Option {
	return func(t *Transport) { t.authFlow = flow }
}

// WithPingFunc installs the callback the transport invokes to issue a
// self-initiated keep-alive ping (see §4.4). mcpsession.Client wires this to
// its own correlated Ping call via SetPingFunc once Connect has a session to
// call back into; the transport only owns the timer. WithPingFunc exists for
// callers constructing a Transport directly, outside a session client.
func WithPingFunc(fn func(ctx context.Context) error) Option {
	return func(t *Transport) { t.SetPingFunc(fn) }
}

// WithLogger sets Transport.Logger. The HTTP transport writes nothing to it;
// a terminal GET-stream failure is reported on Logs and by LastError.
func WithLogger(logger jsonrpc.Logger) Option {
	return func(t *Transport) { t.Logger = logger }
}

// WithSessionHeaderName overrides the default "Mcp-Session-Id" header name.
func WithSessionHeaderName(name string) Option {
	return func(t *Transport) { t.sessionHeaderName = name }
}

// Package mcpsession implements the MCP session client (spec §4.6): version
// negotiation, capability gating, request/response correlation, in-flight
// cancellation, server-to-client request handling, and the log/progress/
// error/notification streams. It drives a transport.Transport and never
// touches transport internals directly.
package mcpsession

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/mcphost/mcpclient/internal/broadcast"
	"github.com/mcphost/mcpclient/jsonrpc"
	"github.com/mcphost/mcpclient/mcptype"
	"github.com/mcphost/mcpclient/transport"
)

// defaultLogBufferSize is the per-subscriber cap for the log stream (§4.6).
const defaultLogBufferSize = 1000

// defaultStreamBufferSize is the per-subscriber cap for the lower-volume
// error/progress/notification streams.
const defaultStreamBufferSize = 256

// IDGenerator produces fresh, session-unique request ids.
type IDGenerator interface {
	Next() jsonrpc.RequestId
}

// uuidIDGenerator generates string ids using google/uuid; collisions are
// astronomically unlikely, so no explicit uniqueness bookkeeping is needed
// beyond the in-flight table's natural rejection of a reused key.
type uuidIDGenerator struct{}

func (uuidIDGenerator) Next() jsonrpc.RequestId { return uuid.NewString() }

// protocolVersionSetter is implemented by transports (httpmcp.Transport)
// that need the negotiated version to stamp their own headers.
type protocolVersionSetter interface {
	SetProtocolVersion(string)
}

// pingWirer is implemented by transports (httpmcp.Transport) that drive
// their own keep-alive ping timer (§4.4) but have no Ping call of their
// own: they need the session client to supply one that round-trips
// through the wire instead of answering locally.
type pingWirer interface {
	SetPingFunc(func(ctx context.Context) error)
}

// pendingRequest is one outbound call awaiting its response. err is set only
// on the completeWithError path (local failure, no wire response) and is
// safe to read once done is closed, since the write happens-before the close.
type pendingRequest struct {
	resultCh  chan *jsonrpc.Response
	done      chan struct{}
	cancelled bool
	err       error
}

// Client is the MCP session client.
type Client struct {
	Transport       transport.Transport
	ClientInfo      mcptype.Implementation
	Capabilities    mcptype.ClientCapabilities
	SamplingHandler SamplingHandler
	IDGen           IDGenerator
	Logger          jsonrpc.Logger

	logBufferSize    int
	streamBufferSize int

	mu                sync.Mutex
	negotiatedVersion string
	serverCaps        mcptype.ServerCapabilities
	roots             []mcptype.Root
	inflight          map[any]*pendingRequest
	closed            bool

	errors        *broadcast.Broadcaster[error]
	logs          *broadcast.Broadcaster[mcptype.LoggingMessageParams]
	progress      *broadcast.Broadcaster[mcptype.ProgressParams]
	notifications *broadcast.Broadcaster[*jsonrpc.Notification]
	transportLogs *broadcast.Broadcaster[string]

	pumpDone chan struct{}
}

// Option configures a Client at construction.
type Option func(*Client)

// WithClientInfo sets the name/version reported to the server in initialize.
func WithClientInfo(info mcptype.Implementation) Option {
	return func(c *Client) { c.ClientInfo = info }
}

// WithCapabilities overrides the client capabilities sent during initialize.
func WithCapabilities(caps mcptype.ClientCapabilities) Option {
	return func(c *Client) { c.Capabilities = caps }
}

// WithSamplingHandler installs the collaborator that answers
// sampling/createMessage requests from the server.
func WithSamplingHandler(h SamplingHandler) Option {
	return func(c *Client) { c.SamplingHandler = h }
}

// WithIDGenerator overrides the default UUID request-id generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(c *Client) { c.IDGen = g }
}

// WithLogger sets Client.Logger. The session client itself writes nothing to
// it; session-scoped faults are reported on StreamErrors.
func WithLogger(logger jsonrpc.Logger) Option {
	return func(c *Client) { c.Logger = logger }
}

// WithLogBufferSize overrides the per-subscriber log-stream ring size.
func WithLogBufferSize(n int) Option {
	return func(c *Client) { c.logBufferSize = n }
}

// WithStreamBufferSize overrides the per-subscriber buffer for the error,
// progress and notification streams.
func WithStreamBufferSize(n int) Option {
	return func(c *Client) { c.streamBufferSize = n }
}

// New constructs a Client driving tr. Connect must be called before any
// other request.
func New(tr transport.Transport, opts ...Option) *Client {
	c := &Client{
		Transport:        tr,
		ClientInfo:       mcptype.Implementation{Name: "mcpclient", Version: "0.1.0"},
		Capabilities:     mcptype.ClientCapabilities{Roots: &mcptype.RootsCapability{}},
		IDGen:            uuidIDGenerator{},
		Logger:           jsonrpc.DefaultLogger,
		logBufferSize:    defaultLogBufferSize,
		streamBufferSize: defaultStreamBufferSize,
		inflight:         make(map[any]*pendingRequest),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.errors = broadcast.New[error](c.streamBufferSize)
	c.notifications = broadcast.New[*jsonrpc.Notification](c.streamBufferSize)
	c.progress = broadcast.New[mcptype.ProgressParams](c.streamBufferSize)
	c.logs = broadcast.New[mcptype.LoggingMessageParams](c.logBufferSize)
	c.transportLogs = broadcast.New[string](c.streamBufferSize)
	return c
}

// Connect starts the transport, negotiates the protocol version and
// capabilities, and begins consuming inbound traffic. The initialize
// exchange completes before Connect returns; no other request may be sent
// first (§3 invariants).
func (c *Client) Connect(ctx context.Context) error {
	if err := c.Transport.Start(ctx); err != nil {
		c.publishError(err)
		return err
	}

	if wirer, ok := c.Transport.(pingWirer); ok {
		wirer.SetPingFunc(c.pingSelf)
	}

	c.pumpDone = make(chan struct{})
	go c.pump()

	params := mcptype.InitializeParams{
		ProtocolVersion: mcptype.LatestProtocolVersion,
		Capabilities:    c.Capabilities,
		ClientInfo:      c.ClientInfo,
	}
	var result mcptype.InitializeResult
	if err := c.call(ctx, mcptype.MethodInitialize, params, &result); err != nil {
		return err
	}

	if !mcptype.SupportedProtocolVersions[result.ProtocolVersion] {
		err := &UnsupportedProtocolError{ServerVersion: result.ProtocolVersion}
		return err
	}

	c.mu.Lock()
	c.negotiatedVersion = result.ProtocolVersion
	c.serverCaps = result.Capabilities
	c.mu.Unlock()

	if setter, ok := c.Transport.(protocolVersionSetter); ok {
		setter.SetProtocolVersion(result.ProtocolVersion)
	}

	return c.notify(ctx, mcptype.MethodInitialized, nil)
}

// Disconnect cancels every in-flight request with SessionClosedError, closes
// the transport, and drains the streams.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	pending := c.inflight
	c.inflight = make(map[any]*pendingRequest)
	c.mu.Unlock()

	for _, p := range pending {
		c.completeWithError(p, &SessionClosedError{})
	}

	err := c.Transport.Close()
	if c.pumpDone != nil {
		<-c.pumpDone
	}
	c.errors.Close()
	c.notifications.Close()
	c.progress.Close()
	c.logs.Close()
	c.transportLogs.Close()
	return err
}

// NegotiatedVersion returns the protocol version agreed on during Connect.
func (c *Client) NegotiatedVersion() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.negotiatedVersion
}

// ServerCapabilities returns the capabilities the server advertised.
func (c *Client) ServerCapabilities() mcptype.ServerCapabilities {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.serverCaps
}

// StreamErrors returns a subscription to session-scoped errors (decode
// failures, orphan/late responses, transport faults). Call the returned
// cancel function to unsubscribe.
func (c *Client) StreamErrors() (<-chan error, func()) {
	id, ch := c.errors.Subscribe()
	return ch, func() { c.errors.Unsubscribe(id) }
}

// StreamLogs returns a subscription to notifications/message entries.
func (c *Client) StreamLogs() (<-chan mcptype.LoggingMessageParams, func()) {
	id, ch := c.logs.Subscribe()
	return ch, func() { c.logs.Unsubscribe(id) }
}

// StreamProgress returns a subscription to notifications/progress entries.
func (c *Client) StreamProgress() (<-chan mcptype.ProgressParams, func()) {
	id, ch := c.progress.Subscribe()
	return ch, func() { c.progress.Unsubscribe(id) }
}

// StreamNotifications returns a subscription to every other inbound
// notification (list-changed, resource-updated, and so on) verbatim.
func (c *Client) StreamNotifications() (<-chan *jsonrpc.Notification, func()) {
	id, ch := c.notifications.Subscribe()
	return ch, func() { c.notifications.Unsubscribe(id) }
}

// StreamTransportLogs returns a subscription to the transport's own
// free-text diagnostics (stdio stderr lines, reconnect chatter) — distinct
// from StreamLogs, which carries the server's notifications/message.
func (c *Client) StreamTransportLogs() (<-chan string, func()) {
	id, ch := c.transportLogs.Subscribe()
	return ch, func() { c.transportLogs.Unsubscribe(id) }
}

// SetRoots replaces the roots the client answers roots/list with.
func (c *Client) SetRoots(roots []mcptype.Root) {
	c.mu.Lock()
	c.roots = roots
	c.mu.Unlock()
}

// Roots returns the client's current roots.
func (c *Client) Roots() []mcptype.Root {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]mcptype.Root, len(c.roots))
	copy(out, c.roots)
	return out
}

func (c *Client) publishError(err error) {
	if err == nil {
		return
	}
	c.errors.Publish(err)
}

// call issues a request, waits for its matching response (or cancellation),
// and decodes the result into out.
func (c *Client) call(ctx context.Context, method string, params any, out any) error {
	id := c.IDGen.Next()
	req, err := jsonrpc.NewRequest(method, params)
	if err != nil {
		return err
	}
	req.Id = id

	pending := &pendingRequest{resultCh: make(chan *jsonrpc.Response, 1), done: make(chan struct{})}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return &SessionClosedError{}
	}
	if _, inUse := c.inflight[id]; inUse {
		c.mu.Unlock()
		return fmt.Errorf("mcpsession: request id %v is already in flight", id)
	}
	c.inflight[id] = pending
	c.mu.Unlock()

	frame, err := jsonrpc.Encode(jsonrpc.NewRequestMessage(req))
	if err != nil {
		c.removePending(id)
		return err
	}

	if err := c.Transport.Send(ctx, frame); err != nil {
		c.removePending(id)
		return err
	}

	select {
	case <-pending.done:
		// pending.done is the single completion signal for both a real wire
		// response (routeResponse) and a local failure (completeWithError);
		// the latter sets pending.err before closing it.
		if pending.err != nil {
			return pending.err
		}
		resp := <-pending.resultCh
		if resp.Error != nil {
			return *resp.Error
		}
		if out != nil && len(resp.Result) > 0 {
			if err := json.Unmarshal(resp.Result, out); err != nil {
				return fmt.Errorf("mcpsession: decode result of %s: %w", method, err)
			}
		}
		return nil
	case <-ctx.Done():
		c.cancelRequest(id, "context done")
		return &CancelledError{Reason: ctx.Err().Error()}
	}
}

func (c *Client) removePending(id any) {
	c.mu.Lock()
	delete(c.inflight, id)
	c.mu.Unlock()
}

// cancelRequest sends notifications/cancelled best-effort (§9 open
// question) and marks the in-flight record so a response arriving later is
// reported as late rather than orphaned.
func (c *Client) cancelRequest(id any, reason string) {
	c.mu.Lock()
	if pending, ok := c.inflight[id]; ok {
		pending.cancelled = true
	}
	c.mu.Unlock()

	notif := &jsonrpc.Notification{
		Jsonrpc: jsonrpc.Version,
		Method:  mcptype.MethodCancelled,
	}
	params := mcptype.CancelledParams{RequestID: id, Reason: reason}
	if data, err := json.Marshal(params); err == nil {
		notif.Params = data
	}
	if frame, err := jsonrpc.Encode(jsonrpc.NewNotificationMessage(notif)); err == nil {
		_ = c.Transport.Send(context.Background(), frame)
	}
}

func (c *Client) completeWithError(p *pendingRequest, err error) {
	p.err = err
	close(p.done)
}

// notify sends a one-way JSON-RPC notification.
func (c *Client) notify(ctx context.Context, method string, params any) error {
	var raw json.RawMessage
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return err
		}
		raw = data
	}
	notif := &jsonrpc.Notification{Jsonrpc: jsonrpc.Version, Method: method, Params: raw}
	frame, err := jsonrpc.Encode(jsonrpc.NewNotificationMessage(notif))
	if err != nil {
		return err
	}
	return c.Transport.Send(ctx, frame)
}

// requireCapability fails locally, without wire traffic, when ok is false.
func requireCapability(ok bool, name string) error {
	if ok {
		return nil
	}
	return &CapabilityUnsupportedError{Capability: name}
}

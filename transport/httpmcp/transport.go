// Package httpmcp implements the streamable HTTP MCP transport: a single
// base URL accepting POST for JSON-RPC traffic (replying with either a JSON
// body or a text/event-stream of JSON-RPC frames) plus a long-lived GET for
// server-initiated messages, with a fallback to the legacy SSE handshake
// when the streamable endpoint isn't available.
package httpmcp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	afsurl "github.com/viant/afs/url"

	"github.com/mcphost/mcpclient/jsonrpc"
	"github.com/mcphost/mcpclient/transport"
	"github.com/mcphost/mcpclient/transport/ssestream"
)

// DefaultProtocolVersion is sent as MCP-Protocol-Version before the session
// has negotiated one with the server.
const DefaultProtocolVersion = "2025-06-18"

const sseContentType = "text/event-stream"
const jsonContentType = "application/json"

// maxGetReconnectAttempts bounds the long-lived GET stream's exponential
// backoff retry before the failure is treated as terminal.
const maxGetReconnectAttempts = 6

type mode int

const (
	modeUnknown mode = iota
	modeStreamable
	modeLegacySSE
)

// Transport implements transport.Transport over the streamable-HTTP wire
// style described in spec §4.4, including the legacy-SSE fallback.
type Transport struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     jsonrpc.Logger

	sessionHeaderName string
	token             string
	authFlow          func(ctx context.Context) (string, error)

	mu              sync.Mutex
	started         bool
	closed          bool
	mode            mode
	legacyPostURL   string
	sessionID       string
	negotiatedProto string
	lastErr         error
	getStreamOnce   bool

	recv  chan []byte
	logs  chan string
	state chan transport.State

	pingMu      sync.Mutex
	pingFunc    func(ctx context.Context) error
	pingTimer   *time.Timer
	pingStop    chan struct{}
	pingRunning bool
	pingPeriod  time.Duration
}

// New constructs a Transport targeting baseURL. Start must be called before
// Send/Receive/Logs/State are usable.
func New(baseURL string, opts ...Option) *Transport {
	t := &Transport{
		BaseURL:           baseURL,
		HTTPClient:        http.DefaultClient,
		Logger:            jsonrpc.DefaultLogger,
		sessionHeaderName: "Mcp-Session-Id",
		recv:              make(chan []byte, 64),
		logs:              make(chan string, 256),
		state:             make(chan transport.State, 8),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SetAuthorizationToken updates the bearer token used on subsequent
// requests. It is the only supported way to mutate a running transport's
// configuration (§5): the HTTP session itself is treated as immutable.
func (t *Transport) SetAuthorizationToken(token string) {
	t.mu.Lock()
	t.token = token
	t.mu.Unlock()
}

// SetProtocolVersion records the protocol version negotiated during
// initialize, sent as MCP-Protocol-Version on every subsequent request.
func (t *Transport) SetProtocolVersion(version string) {
	t.mu.Lock()
	t.negotiatedProto = version
	t.mu.Unlock()
}

// SetPingFunc installs the callback the keep-alive timer invokes once a
// response carries a Keep-Alive header (§4.4). It may be called after
// Start: the session client wires it in as soon as Connect has a live
// transport to call back into, which is before the initialize response (and
// therefore any Keep-Alive header) can arrive.
func (t *Transport) SetPingFunc(fn func(ctx context.Context) error) {
	t.pingMu.Lock()
	t.pingFunc = fn
	t.pingMu.Unlock()
}

// SessionID returns the Mcp-Session-Id adopted from the initialize
// response, or "" in sessionless mode.
func (t *Transport) SessionID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sessionID
}

// LastError returns the error that caused the long-lived GET stream to stop
// retrying, if any.
func (t *Transport) LastError() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastErr
}

func (t *Transport) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.started {
		t.mu.Unlock()
		return nil
	}
	t.mu.Unlock()

	scheme := afsurl.Scheme(t.BaseURL, "http")
	if scheme != "http" && scheme != "https" {
		return transport.NewInvalidURLError(t.BaseURL, fmt.Errorf("unsupported scheme %q", scheme))
	}
	if afsurl.Host(t.BaseURL) == "" {
		return transport.NewInvalidURLError(t.BaseURL, fmt.Errorf("missing host"))
	}

	t.mu.Lock()
	t.started = true
	t.mu.Unlock()

	t.emitState(transport.StateStarting)
	t.emitState(transport.StateConnected)
	return nil
}

func (t *Transport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	sessionID := t.sessionID
	t.mu.Unlock()

	t.stopPing()

	if sessionID != "" {
		req, err := http.NewRequest(http.MethodDelete, t.BaseURL, nil)
		if err == nil {
			t.applyHeaders(req)
			if resp, derr := t.HTTPClient.Do(req); derr == nil {
				_ = resp.Body.Close()
			}
		}
	}

	t.emitState(transport.StateClosed)
	close(t.recv)
	close(t.logs)
	close(t.state)
	return nil
}

func (t *Transport) Receive() <-chan []byte        { return t.recv }
func (t *Transport) Logs() <-chan string            { return t.logs }
func (t *Transport) State() <-chan transport.State { return t.state }

// Send POSTs one already-encoded JSON-RPC frame (request, notification,
// response or batch) and routes whatever comes back onto Receive.
func (t *Transport) Send(ctx context.Context, frame []byte) error {
	t.mu.Lock()
	started := t.started
	closed := t.closed
	currentMode := t.mode
	t.mu.Unlock()
	if !started {
		return transport.ErrNotStarted
	}
	if closed {
		return transport.NewPeerClosedError(nil)
	}

	t.resetPingTimer()

	if currentMode == modeLegacySSE {
		return t.sendLegacy(ctx, frame)
	}
	return t.sendStreamable(ctx, frame, true)
}

func (t *Transport) sendStreamable(ctx context.Context, frame []byte, allowFallback bool) error {
	resp, err := t.post(ctx, t.BaseURL, frame, true)
	if err != nil {
		return transport.NewPeerClosedError(err)
	}
	defer resp.Body.Close()

	if allowFallback && (resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusMethodNotAllowed) {
		if err := t.switchToLegacy(ctx); err != nil {
			return err
		}
		return t.sendLegacy(ctx, frame)
	}

	t.mu.Lock()
	if t.mode == modeUnknown {
		t.mode = modeStreamable
	}
	t.mu.Unlock()

	err = t.handlePostResponse(resp)
	t.ensureStreamableGet()
	return err
}

// ensureStreamableGet starts the long-lived server-push GET exactly once,
// after a session has been established. A 405 response means the server is
// POST-only, per spec §4.4; the loop exits quietly without retrying.
func (t *Transport) ensureStreamableGet() {
	t.mu.Lock()
	if t.getStreamOnce || t.sessionID == "" {
		t.mu.Unlock()
		return
	}
	t.getStreamOnce = true
	t.mu.Unlock()

	go t.runGetLoop(t.openStreamableGet)
}

func (t *Transport) openStreamableGet(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.BaseURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", sseContentType)
	t.applyHeaders(req)

	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusMethodNotAllowed {
		return nil // POST-only mode: stop retrying, not an error.
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("httpmcp: server push stream failed: status %d", resp.StatusCode)
	}

	return t.consumeResponseStream(ctx, resp.Body)
}

func (t *Transport) handlePostResponse(resp *http.Response) error {
	t.captureSessionID(resp)
	t.captureKeepAlive(resp)

	if resp.StatusCode == http.StatusUnauthorized {
		return jsonrpc.NewUnauthorizedError(resp.StatusCode, readAll(resp.Body))
	}

	if resp.StatusCode >= 400 {
		body := readAll(resp.Body)
		return NewServerHTTPError(resp.StatusCode, body, decodeRPCError(body))
	}

	if resp.StatusCode == http.StatusAccepted || resp.ContentLength == 0 {
		return nil
	}

	ct, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	switch ct {
	case sseContentType:
		return t.consumeResponseStream(context.Background(), resp.Body)
	default:
		body := readAll(resp.Body)
		if len(body) == 0 {
			return nil
		}
		t.deliver(body)
		return nil
	}
}

// consumeResponseStream reads a response-attached SSE stream (one JSON-RPC
// message per event) until the server closes it, delivering each message.
func (t *Transport) consumeResponseStream(ctx context.Context, body io.Reader) error {
	parser := ssestream.NewParser()
	events := make(chan *ssestream.Event, 16)
	done := make(chan error, 1)
	go func() { done <- parser.Run(ctx, body, events) }()
	for ev := range events {
		if ev.Data == "" {
			continue
		}
		t.deliver([]byte(ev.Data))
	}
	return <-done
}

func (t *Transport) post(ctx context.Context, targetURL string, frame []byte, acceptBoth bool) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, targetURL, bytes.NewReader(frame))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", jsonContentType)
	if acceptBoth {
		req.Header.Set("Accept", jsonContentType+", "+sseContentType)
	} else {
		req.Header.Set("Accept", jsonContentType)
	}
	t.applyHeaders(req)

	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && t.authFlow != nil {
		_ = resp.Body.Close()
		token, authErr := t.authFlow(ctx)
		if authErr != nil {
			return nil, authErr
		}
		t.SetAuthorizationToken(token)
		req2, err := http.NewRequestWithContext(ctx, http.MethodPost, targetURL, bytes.NewReader(frame))
		if err != nil {
			return nil, err
		}
		req2.Header.Set("Content-Type", jsonContentType)
		req2.Header.Set("Accept", req.Header.Get("Accept"))
		t.applyHeaders(req2)
		return t.HTTPClient.Do(req2)
	}

	return resp, nil
}

func (t *Transport) applyHeaders(req *http.Request) {
	t.mu.Lock()
	version := t.negotiatedProto
	if version == "" {
		version = DefaultProtocolVersion
	}
	token := t.token
	sessionID := t.sessionID
	t.mu.Unlock()

	req.Header.Set("MCP-Protocol-Version", version)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if sessionID != "" {
		req.Header.Set(t.sessionHeaderName, sessionID)
	}
}

func (t *Transport) captureSessionID(resp *http.Response) {
	if id := resp.Header.Get(t.sessionHeaderName); id != "" {
		t.mu.Lock()
		t.sessionID = id
		t.mu.Unlock()
	}
}

// captureKeepAlive reads a "Keep-Alive: timeout=N" header and (re)starts the
// ping timer at 0.8*N seconds, per spec §4.4.
func (t *Transport) captureKeepAlive(resp *http.Response) {
	header := resp.Header.Get("Keep-Alive")
	if header == "" {
		return
	}
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if !strings.HasPrefix(part, "timeout=") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(part, "timeout="))
		if err != nil || n <= 0 {
			continue
		}
		t.startPing(time.Duration(float64(n)*0.8*float64(time.Second)))
		return
	}
}

func (t *Transport) deliver(frame []byte) {
	select {
	case t.recv <- frame:
	default:
		select {
		case <-t.recv:
		default:
		}
		select {
		case t.recv <- frame:
		default:
		}
	}
}

func (t *Transport) emitState(s transport.State) {
	select {
	case t.state <- s:
	default:
	}
}

func readAll(r io.Reader) []byte {
	b, _ := io.ReadAll(r)
	return b
}

func decodeRPCError(body []byte) *jsonrpc.InnerError {
	msg, err := jsonrpc.Decode(body)
	if err != nil || msg.Type != jsonrpc.MessageTypeResponse || msg.JsonRpcResponse.Error == nil {
		return nil
	}
	return msg.JsonRpcResponse.Error
}

func resolveEndpointURL(base string, ref string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(refURL).String(), nil
}

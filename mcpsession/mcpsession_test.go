package mcpsession

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mcphost/mcpclient/jsonrpc"
	"github.com/mcphost/mcpclient/mcptype"
	"github.com/mcphost/mcpclient/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport is an in-memory transport.Transport double: every outgoing
// frame lands on sent, and the test drives the inbound side by pushing onto
// recv directly, mirroring how a real transport's pump loop is fed.
type fakeTransport struct {
	sent     chan []byte
	recv     chan []byte
	logs     chan string
	state    chan transport.State
	pingFunc func(ctx context.Context) error
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		sent:  make(chan []byte, 16),
		recv:  make(chan []byte, 16),
		logs:  make(chan string, 16),
		state: make(chan transport.State, 4),
	}
}

func (f *fakeTransport) Start(context.Context) error {
	f.state <- transport.StateConnected
	return nil
}
func (f *fakeTransport) Send(_ context.Context, frame []byte) error {
	f.sent <- frame
	return nil
}
func (f *fakeTransport) Receive() <-chan []byte       { return f.recv }
func (f *fakeTransport) Logs() <-chan string           { return f.logs }
func (f *fakeTransport) State() <-chan transport.State { return f.state }
func (f *fakeTransport) Close() error {
	close(f.recv)
	close(f.logs)
	close(f.state)
	return nil
}

// SetPingFunc makes fakeTransport satisfy pingWirer, mirroring
// httpmcp.Transport so Connect's wiring can be exercised without a real
// HTTP transport.
func (f *fakeTransport) SetPingFunc(fn func(ctx context.Context) error) {
	f.pingFunc = fn
}

// respondToNext reads one frame off sent, decodes it as a request, and
// writes back a response built by result for the same id.
func respondToNext(t *testing.T, tr *fakeTransport, result any) {
	t.Helper()
	frame := <-tr.sent
	msg, err := jsonrpc.Decode(frame)
	require.NoError(t, err)
	require.Equal(t, jsonrpc.MessageTypeRequest, msg.Type)

	data, err := json.Marshal(result)
	require.NoError(t, err)
	resp := jsonrpc.NewResponse(msg.JsonRpcRequest.Id, data)
	frame, err = jsonrpc.Encode(jsonrpc.NewResponseMessage(resp))
	require.NoError(t, err)
	tr.recv <- frame
}

func connectedClient(t *testing.T, serverCaps mcptype.ServerCapabilities) (*Client, *fakeTransport) {
	t.Helper()
	tr := newFakeTransport()
	c := New(tr, WithIDGenerator(&CounterIDGenerator{}))

	done := make(chan error, 1)
	go func() { done <- c.Connect(context.Background()) }()

	respondToNext(t, tr, mcptype.InitializeResult{
		ProtocolVersion: mcptype.LatestProtocolVersion,
		Capabilities:    serverCaps,
		ServerInfo:      mcptype.Implementation{Name: "fake-server", Version: "1.0"},
	})

	// Connect also sends notifications/initialized; drain it so it doesn't
	// show up unexpectedly in a later respondToNext call.
	initializedFrame := <-tr.sent
	msg, err := jsonrpc.Decode(initializedFrame)
	require.NoError(t, err)
	require.Equal(t, jsonrpc.MessageTypeNotification, msg.Type)
	require.Equal(t, mcptype.MethodInitialized, msg.JsonRpcNotification.Method)

	require.NoError(t, <-done)
	return c, tr
}

func TestClient_Connect_NegotiatesVersionAndCapabilities(t *testing.T) {
	c, _ := connectedClient(t, mcptype.ServerCapabilities{Tools: &mcptype.ToolsCapability{}})
	defer c.Disconnect()

	assert.Equal(t, mcptype.LatestProtocolVersion, c.NegotiatedVersion())
	assert.NotNil(t, c.ServerCapabilities().Tools)
}

func TestClient_Connect_RejectsUnsupportedProtocolVersion(t *testing.T) {
	tr := newFakeTransport()
	c := New(tr, WithIDGenerator(&CounterIDGenerator{}))

	done := make(chan error, 1)
	go func() { done <- c.Connect(context.Background()) }()

	respondToNext(t, tr, mcptype.InitializeResult{ProtocolVersion: "1999-01-01"})

	err := <-done
	var unsupported *UnsupportedProtocolError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "1999-01-01", unsupported.ServerVersion)
}

func TestClient_ListTools_RequiresCapability(t *testing.T) {
	c, _ := connectedClient(t, mcptype.ServerCapabilities{})
	defer c.Disconnect()

	_, err := c.ListTools(context.Background(), "")
	var capErr *CapabilityUnsupportedError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, "tools", capErr.Capability)
}

func TestClient_CallTool_RoundTrip(t *testing.T) {
	c, tr := connectedClient(t, mcptype.ServerCapabilities{Tools: &mcptype.ToolsCapability{}})
	defer c.Disconnect()

	resultCh := make(chan *mcptype.CallToolResult, 1)
	errCh := make(chan error, 1)
	go func() {
		r, err := c.CallTool(context.Background(), "echo", map[string]any{"text": "hi"})
		resultCh <- r
		errCh <- err
	}()

	respondToNext(t, tr, mcptype.CallToolResult{
		Content: []mcptype.Content{{Type: "text", Text: "hi"}},
	})

	require.NoError(t, <-errCh)
	result := <-resultCh
	require.Len(t, result.Content, 1)
	assert.Equal(t, "hi", result.Content[0].Text)
}

func TestClient_Disconnect_CancelsInFlightRequests(t *testing.T) {
	c, tr := connectedClient(t, mcptype.ServerCapabilities{Tools: &mcptype.ToolsCapability{}})

	errCh := make(chan error, 1)
	go func() {
		_, err := c.CallTool(context.Background(), "slow", nil)
		errCh <- err
	}()
	<-tr.sent // drain the outbound tools/call frame; never answer it

	require.NoError(t, c.Disconnect())

	var closedErr *SessionClosedError
	require.ErrorAs(t, <-errCh, &closedErr)
}

func TestClient_StreamLogs_DeliversLoggingNotifications(t *testing.T) {
	c, tr := connectedClient(t, mcptype.ServerCapabilities{})
	defer c.Disconnect()

	logs, cancel := c.StreamLogs()
	defer cancel()

	params := mcptype.LoggingMessageParams{Level: "info", Data: "hello"}
	data, err := json.Marshal(params)
	require.NoError(t, err)
	notif := &jsonrpc.Notification{Jsonrpc: jsonrpc.Version, Method: mcptype.MethodLoggingMessage, Params: data}
	frame, err := jsonrpc.Encode(jsonrpc.NewNotificationMessage(notif))
	require.NoError(t, err)
	tr.recv <- frame

	select {
	case got := <-logs:
		assert.Equal(t, "info", got.Level)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for log notification")
	}
}

func TestClient_Connect_WiresPingFuncForKeepAliveCapableTransports(t *testing.T) {
	c, tr := connectedClient(t, mcptype.ServerCapabilities{})
	defer c.Disconnect()

	require.NotNil(t, tr.pingFunc, "Connect should have wired a ping callback into the pingWirer transport")

	errCh := make(chan error, 1)
	go func() { errCh <- tr.pingFunc(context.Background()) }()

	respondToNext(t, tr, struct{}{})
	require.NoError(t, <-errCh)
}

func TestClient_Ping_AnswersServerInitiatedPing(t *testing.T) {
	c, tr := connectedClient(t, mcptype.ServerCapabilities{})
	defer c.Disconnect()

	req := &jsonrpc.Request{Jsonrpc: jsonrpc.Version, Id: "server-1", Method: mcptype.MethodPing}
	frame, err := jsonrpc.Encode(jsonrpc.NewRequestMessage(req))
	require.NoError(t, err)
	tr.recv <- frame

	select {
	case reply := <-tr.sent:
		msg, err := jsonrpc.Decode(reply)
		require.NoError(t, err)
		require.Equal(t, jsonrpc.MessageTypeResponse, msg.Type)
		assert.Equal(t, "server-1", msg.JsonRpcResponse.Id)
		assert.Nil(t, msg.JsonRpcResponse.Error)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for ping reply")
	}
}

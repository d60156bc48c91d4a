package httpmcp

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mcphost/mcpclient/transport"
	"github.com/mcphost/mcpclient/transport/ssestream"
)

// switchToLegacy performs the legacy-SSE handshake: a GET that opens an SSE
// stream whose first event (event: endpoint) declares the URL subsequent
// POSTs must target. The stream then keeps running in the background,
// carrying every response as an "message" event.
func (t *Transport) switchToLegacy(ctx context.Context) error {
	t.mu.Lock()
	if t.mode == modeLegacySSE && t.legacyPostURL != "" {
		t.mu.Unlock()
		return nil
	}
	t.mode = modeLegacySSE
	t.mu.Unlock()

	ready := make(chan struct{})
	var readyOnce bool
	go t.runGetLoop(func(gctx context.Context) error {
		return t.openLegacyStream(gctx, func() {
			if !readyOnce {
				readyOnce = true
				close(ready)
			}
		})
	})

	select {
	case <-ready:
		return nil
	case <-time.After(10 * time.Second):
		return fmt.Errorf("httpmcp: legacy sse handshake timed out")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Transport) openLegacyStream(ctx context.Context, onEndpoint func()) error {
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
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("httpmcp: legacy sse handshake failed: status %d", resp.StatusCode)
	}

	parser := ssestream.NewParser()
	events := make(chan *ssestream.Event, 16)
	done := make(chan error, 1)
	go func() { done <- parser.Run(ctx, resp.Body, events) }()

	for ev := range events {
		switch ev.Name {
		case "endpoint":
			endpointURL, err := resolveEndpointURL(t.BaseURL, ev.Data)
			if err != nil {
				continue
			}
			t.mu.Lock()
			t.legacyPostURL = endpointURL
			t.mu.Unlock()
			onEndpoint()
		default:
			if ev.Data != "" {
				t.deliver([]byte(ev.Data))
			}
		}
	}
	return <-done
}

// sendLegacy POSTs frame to the endpoint discovered during the handshake.
// The response body is consumed but not routed: legacy-SSE responses arrive
// asynchronously on the GET stream instead.
func (t *Transport) sendLegacy(ctx context.Context, frame []byte) error {
	t.mu.Lock()
	postURL := t.legacyPostURL
	t.mu.Unlock()
	if postURL == "" {
		return fmt.Errorf("httpmcp: legacy sse endpoint not yet known")
	}

	resp, err := t.post(ctx, postURL, frame, false)
	if err != nil {
		return transport.NewPeerClosedError(err)
	}
	defer resp.Body.Close()

	t.captureSessionID(resp)
	t.captureKeepAlive(resp)

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("httpmcp: unauthorized posting to legacy endpoint")
	}
	if resp.StatusCode >= 400 {
		body := readAll(resp.Body)
		return NewServerHTTPError(resp.StatusCode, body, decodeRPCError(body))
	}
	return nil
}

// runGetLoop drives a long-lived GET connection (legacy handshake stream or
// streamable-mode server push stream), retrying with exponential backoff on
// unexpected termination while the transport is still started. Exhausting
// maxGetReconnectAttempts consecutive failures is terminal: the loop stops,
// and the cause is recorded for LastError and written to Logs. Receive, Logs
// and State are not closed here; they stay open until Close.
func (t *Transport) runGetLoop(open func(ctx context.Context) error) {
	backoff := 500 * time.Millisecond
	const maxBackoff = 10 * time.Second
	attempts := 0

	for {
		t.mu.Lock()
		closed := t.closed
		t.mu.Unlock()
		if closed {
			return
		}

		err := open(context.Background())
		if err == nil {
			attempts = 0
			backoff = 500 * time.Millisecond
			continue
		}

		attempts++
		t.emitState(transport.StateDisconnected)
		if attempts >= maxGetReconnectAttempts {
			t.mu.Lock()
			t.lastErr = err
			t.mu.Unlock()
			select {
			case t.logs <- fmt.Sprintf("httpmcp: get stream terminated: %v", err):
			default:
			}
			return
		}

		time.Sleep(backoff)
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
		t.emitState(transport.StateConnected)
	}
}

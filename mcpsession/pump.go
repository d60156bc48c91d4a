package mcpsession

import (
	"github.com/mcphost/mcpclient/jsonrpc"
	"github.com/mcphost/mcpclient/transport"
)

// pump is the session's single inbound actor: it owns the transport's
// Receive/Logs/State channels and is the only goroutine that ever routes a
// decoded frame to a pending request or a stream subscriber.
func (c *Client) pump() {
	defer close(c.pumpDone)

	recv := c.Transport.Receive()
	logs := c.Transport.Logs()
	state := c.Transport.State()

	for recv != nil || logs != nil || state != nil {
		select {
		case frame, ok := <-recv:
			if !ok {
				recv = nil
				continue
			}
			c.handleFrame(frame)

		case line, ok := <-logs:
			if !ok {
				logs = nil
				continue
			}
			c.transportLogs.Publish(line)

		case s, ok := <-state:
			if !ok {
				state = nil
				continue
			}
			if s == transport.StateDisconnected {
				c.failAllInflight(transport.NewPeerClosedError(nil))
			}
		}
	}
}

// handleFrame decodes one raw inbound frame (a single message or a batch)
// and routes each contained message, or reports a per-item decode failure.
func (c *Client) handleFrame(frame []byte) {
	messages, errs := jsonrpc.DecodeAny(frame)
	for i := range errs {
		if errs[i] != nil {
			c.publishError(errs[i])
			continue
		}
		if i < len(messages) && messages[i] != nil {
			c.handleMessage(messages[i])
		}
	}
}

func (c *Client) handleMessage(msg *jsonrpc.Message) {
	switch msg.Type {
	case jsonrpc.MessageTypeResponse:
		c.routeResponse(msg.JsonRpcResponse)
	case jsonrpc.MessageTypeRequest:
		c.handleServerRequest(msg.JsonRpcRequest)
	case jsonrpc.MessageTypeNotification:
		c.handleServerNotification(msg.JsonRpcNotification)
	}
}

// routeResponse matches resp to its pending call by id. A response whose id
// was already marked cancelled is reported as late and dropped; a response
// matching nothing in-flight is reported as orphaned. Neither aborts the
// session (§7 propagation policy).
func (c *Client) routeResponse(resp *jsonrpc.Response) {
	c.mu.Lock()
	pending, ok := c.inflight[resp.Id]
	if ok {
		delete(c.inflight, resp.Id)
	}
	c.mu.Unlock()

	if !ok {
		c.publishError(&OrphanResponseError{ID: resp.Id})
		return
	}
	if pending.cancelled {
		c.publishError(&LateResponseError{ID: resp.Id})
		return
	}

	select {
	case pending.resultCh <- resp:
	default:
	}
	close(pending.done)
}

func (c *Client) failAllInflight(err error) {
	c.mu.Lock()
	pending := c.inflight
	c.inflight = make(map[any]*pendingRequest)
	c.mu.Unlock()

	for _, p := range pending {
		if !p.cancelled {
			c.completeWithError(p, err)
		}
	}
	c.publishError(err)
}

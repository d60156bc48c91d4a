package mcpsession

import (
	"context"
	"encoding/json"

	"github.com/mcphost/mcpclient/jsonrpc"
	"github.com/mcphost/mcpclient/mcptype"
)

// handleServerRequest answers a server-initiated request locally: ping,
// roots/list and sampling/createMessage are handled inline; anything else
// gets a method-not-found response (§9 dispatch-table pattern).
func (c *Client) handleServerRequest(req *jsonrpc.Request) {
	var resp *jsonrpc.Response
	switch req.Method {
	case mcptype.MethodPing:
		resp = c.replyResult(req.Id, struct{}{})
	case mcptype.MethodRootsList:
		resp = c.replyResult(req.Id, mcptype.RootsListResult{Roots: c.Roots()})
	case mcptype.MethodSamplingCreateMessage:
		resp = c.handleSamplingRequest(req)
	default:
		resp = jsonrpc.NewMethodNotFound(req.Id, errMethodNotFound(req.Method), nil)
	}

	frame, err := jsonrpc.Encode(jsonrpc.NewResponseMessage(resp))
	if err != nil {
		c.publishError(err)
		return
	}
	if err := c.Transport.Send(context.Background(), frame); err != nil {
		c.publishError(err)
	}
}

func (c *Client) handleSamplingRequest(req *jsonrpc.Request) *jsonrpc.Response {
	if c.SamplingHandler == nil {
		return jsonrpc.NewMethodNotFound(req.Id, errMethodNotFound(req.Method), nil)
	}
	var params mcptype.CreateMessageParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return jsonrpc.NewInvalidParams(req.Id, err, nil)
		}
	}
	result, err := c.SamplingHandler.Sample(context.Background(), &params)
	if err != nil {
		return jsonrpc.NewInternalError(req.Id, err, nil)
	}
	return c.replyResult(req.Id, result)
}

func (c *Client) replyResult(id jsonrpc.RequestId, result any) *jsonrpc.Response {
	data, err := json.Marshal(result)
	if err != nil {
		return jsonrpc.NewInternalError(id, err, nil)
	}
	return jsonrpc.NewResponse(id, data)
}

// handleServerNotification dispatches an inbound notification by method:
// logs and progress get dedicated streams, everything else is surfaced
// verbatim on stream_notifications.
func (c *Client) handleServerNotification(n *jsonrpc.Notification) {
	switch n.Method {
	case mcptype.MethodLoggingMessage:
		var params mcptype.LoggingMessageParams
		if err := json.Unmarshal(n.Params, &params); err != nil {
			c.publishError(err)
			return
		}
		c.logs.Publish(params)
	case mcptype.MethodProgress:
		var params mcptype.ProgressParams
		if err := json.Unmarshal(n.Params, &params); err != nil {
			c.publishError(err)
			return
		}
		c.progress.Publish(params)
	default:
		c.notifications.Publish(n)
	}
}

type methodNotFoundError string

func (e methodNotFoundError) Error() string { return "method not found: " + string(e) }

func errMethodNotFound(method string) error { return methodNotFoundError(method) }

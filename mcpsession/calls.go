package mcpsession

import (
	"context"

	"github.com/mcphost/mcpclient/mcptype"
)

// Ping issues the client-initiated keep-alive/liveness check. It is not
// capability-gated: every MCP server must answer ping.
func (c *Client) Ping(ctx context.Context) error {
	return c.call(ctx, mcptype.MethodPing, struct{}{}, nil)
}

// pingSelf is the callback wired into a transport's keep-alive timer (see
// pingWirer). It exists because the timer only knows how to invoke a
// context-in/error-out function; the correlated request/response and the
// in-flight bookkeeping still go through the normal Ping call.
func (c *Client) pingSelf(ctx context.Context) error {
	return c.Ping(ctx)
}

// ListPrompts returns the server's advertised prompts.
func (c *Client) ListPrompts(ctx context.Context, cursor string) (*mcptype.PromptsListResult, error) {
	if err := requireCapability(c.serverCapsSnapshot().Prompts != nil, "prompts"); err != nil {
		return nil, err
	}
	var result mcptype.PromptsListResult
	params := listParams(cursor)
	if err := c.call(ctx, mcptype.MethodPromptsList, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetPrompt renders one prompt template with the given arguments.
func (c *Client) GetPrompt(ctx context.Context, name string, arguments map[string]string) (*mcptype.GetPromptResult, error) {
	if err := requireCapability(c.serverCapsSnapshot().Prompts != nil, "prompts"); err != nil {
		return nil, err
	}
	var result mcptype.GetPromptResult
	params := mcptype.GetPromptParams{Name: name, Arguments: arguments}
	if err := c.call(ctx, mcptype.MethodPromptsGet, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListResources returns the server's advertised resources.
func (c *Client) ListResources(ctx context.Context, cursor string) (*mcptype.ResourcesListResult, error) {
	if err := requireCapability(c.serverCapsSnapshot().Resources != nil, "resources"); err != nil {
		return nil, err
	}
	var result mcptype.ResourcesListResult
	if err := c.call(ctx, mcptype.MethodResourcesList, listParams(cursor), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListResourceTemplates returns the server's advertised resource templates.
func (c *Client) ListResourceTemplates(ctx context.Context, cursor string) (*mcptype.ResourceTemplatesListResult, error) {
	if err := requireCapability(c.serverCapsSnapshot().Resources != nil, "resources"); err != nil {
		return nil, err
	}
	var result mcptype.ResourceTemplatesListResult
	if err := c.call(ctx, mcptype.MethodResourcesTemplates, listParams(cursor), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ReadResource fetches one resource's contents.
func (c *Client) ReadResource(ctx context.Context, uri string) (*mcptype.ReadResourceResult, error) {
	if err := requireCapability(c.serverCapsSnapshot().Resources != nil, "resources"); err != nil {
		return nil, err
	}
	var result mcptype.ReadResourceResult
	params := mcptype.ReadResourceParams{URI: uri}
	if err := c.call(ctx, mcptype.MethodResourcesRead, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SubscribeResource asks the server to notify on changes to uri.
func (c *Client) SubscribeResource(ctx context.Context, uri string) error {
	caps := c.serverCapsSnapshot().Resources
	if err := requireCapability(caps != nil && caps.Subscribe, "resources.subscribe"); err != nil {
		return err
	}
	params := mcptype.SubscribeResourceParams{URI: uri}
	return c.call(ctx, mcptype.MethodResourcesSubscribe, params, nil)
}

// UnsubscribeResource undoes a prior SubscribeResource.
func (c *Client) UnsubscribeResource(ctx context.Context, uri string) error {
	caps := c.serverCapsSnapshot().Resources
	if err := requireCapability(caps != nil && caps.Subscribe, "resources.subscribe"); err != nil {
		return err
	}
	params := mcptype.SubscribeResourceParams{URI: uri}
	return c.call(ctx, mcptype.MethodResourcesUnsubscribe, params, nil)
}

// ListTools returns the server's advertised tools.
func (c *Client) ListTools(ctx context.Context, cursor string) (*mcptype.ToolsListResult, error) {
	if err := requireCapability(c.serverCapsSnapshot().Tools != nil, "tools"); err != nil {
		return nil, err
	}
	var result mcptype.ToolsListResult
	if err := c.call(ctx, mcptype.MethodToolsList, listParams(cursor), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CallTool invokes one tool by name.
func (c *Client) CallTool(ctx context.Context, name string, arguments map[string]any) (*mcptype.CallToolResult, error) {
	if err := requireCapability(c.serverCapsSnapshot().Tools != nil, "tools"); err != nil {
		return nil, err
	}
	var result mcptype.CallToolResult
	params := mcptype.CallToolParams{Name: name, Arguments: arguments}
	if err := c.call(ctx, mcptype.MethodToolsCall, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Complete requests argument completion suggestions.
func (c *Client) Complete(ctx context.Context, ref mcptype.CompletionReference, argument mcptype.CompletionArgument) (*mcptype.CompleteResult, error) {
	if err := requireCapability(c.serverCapsSnapshot().Completions != nil, "completions"); err != nil {
		return nil, err
	}
	var result mcptype.CompleteResult
	params := mcptype.CompleteParams{Ref: ref, Argument: argument}
	if err := c.call(ctx, mcptype.MethodCompletionComplete, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) serverCapsSnapshot() mcptype.ServerCapabilities {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.serverCaps
}

func listParams(cursor string) any {
	if cursor == "" {
		return struct{}{}
	}
	return struct {
		Cursor string `json:"cursor"`
	}{Cursor: cursor}
}

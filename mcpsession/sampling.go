package mcpsession

import (
	"context"

	"github.com/mcphost/mcpclient/mcptype"
)

// SamplingHandler is the external collaborator that answers a server's
// sampling/createMessage request. If none is installed, the session
// replies with a method-not-found error (§4.6).
type SamplingHandler interface {
	Sample(ctx context.Context, params *mcptype.CreateMessageParams) (*mcptype.CreateMessageResult, error)
}

// SamplingHandlerFunc adapts a plain function to a SamplingHandler.
type SamplingHandlerFunc func(ctx context.Context, params *mcptype.CreateMessageParams) (*mcptype.CreateMessageResult, error)

func (f SamplingHandlerFunc) Sample(ctx context.Context, params *mcptype.CreateMessageParams) (*mcptype.CreateMessageResult, error) {
	return f(ctx, params)
}

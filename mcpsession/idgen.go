package mcpsession

import (
	"strconv"
	"sync/atomic"

	"github.com/mcphost/mcpclient/jsonrpc"
)

// CounterIDGenerator produces sequential string ids starting at 1. It exists
// for tests and other callers that need reproducible request ids instead of
// the default uuidIDGenerator.
type CounterIDGenerator struct {
	n atomic.Int64
}

// Next returns the next id in sequence, formatted as a decimal string.
func (g *CounterIDGenerator) Next() jsonrpc.RequestId {
	return strconv.FormatInt(g.n.Add(1), 10)
}

// Package mcptype defines the MCP-specific request/result payloads and
// capability structures carried inside JSON-RPC params/result fields. The
// wire envelope itself (Request/Response/Notification/Error) lives in
// package jsonrpc; mcptype only shapes what flows through Params/Result.
package mcptype

// LatestProtocolVersion is offered by the client during initialize. The
// server may negotiate down to an older version it also supports.
const LatestProtocolVersion = "2025-06-18"

// SupportedProtocolVersions is the set this client can operate against; an
// initialize response naming any other version fails connect with
// unsupported-protocol.
var SupportedProtocolVersions = map[string]bool{
	"2025-06-18": true,
	"2025-03-26": true,
	"2024-11-05": true,
}

// ClientCapabilities is sent by the client during initialize.
type ClientCapabilities struct {
	Roots        *RootsCapability `json:"roots,omitempty"`
	Sampling     map[string]any   `json:"sampling,omitempty"`
	Experimental map[string]any   `json:"experimental,omitempty"`
}

// RootsCapability declares the client supports roots/list and, if
// ListChanged is true, sends notifications/roots/list_changed.
type RootsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// ServerCapabilities is advertised by the server in the initialize result;
// capability gating in mcpsession checks these maps/pointers for nil.
type ServerCapabilities struct {
	Logging      map[string]any      `json:"logging,omitempty"`
	Prompts      *PromptsCapability  `json:"prompts,omitempty"`
	Resources    *ResourcesCapability `json:"resources,omitempty"`
	Tools        *ToolsCapability    `json:"tools,omitempty"`
	Completions  map[string]any      `json:"completions,omitempty"`
	Experimental map[string]any      `json:"experimental,omitempty"`
}

type PromptsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

type ResourcesCapability struct {
	Subscribe   bool `json:"subscribe,omitempty"`
	ListChanged bool `json:"listChanged,omitempty"`
}

type ToolsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// Implementation identifies either end of the session in initialize.
type Implementation struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// InitializeParams is sent as the params of the initial "initialize" request.
type InitializeParams struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ClientCapabilities `json:"capabilities"`
	ClientInfo      Implementation     `json:"clientInfo"`
}

// InitializeResult is the "initialize" response's result.
type InitializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ServerCapabilities `json:"capabilities"`
	ServerInfo      Implementation     `json:"serverInfo"`
	Instructions    string             `json:"instructions,omitempty"`
}

// Method names used across the session client and transports.
const (
	MethodInitialize            = "initialize"
	MethodInitialized           = "notifications/initialized"
	MethodPing                  = "ping"
	MethodCancelled              = "notifications/cancelled"
	MethodRootsList             = "roots/list"
	MethodRootsListChanged       = "notifications/roots/list_changed"
	MethodSamplingCreateMessage = "sampling/createMessage"
	MethodLoggingSetLevel       = "logging/setLevel"
	MethodLoggingMessage        = "notifications/message"
	MethodProgress              = "notifications/progress"
	MethodPromptsList           = "prompts/list"
	MethodPromptsGet            = "prompts/get"
	MethodPromptsListChanged    = "notifications/prompts/list_changed"
	MethodResourcesList         = "resources/list"
	MethodResourcesRead         = "resources/read"
	MethodResourcesTemplates    = "resources/templates/list"
	MethodResourcesSubscribe    = "resources/subscribe"
	MethodResourcesUnsubscribe  = "resources/unsubscribe"
	MethodResourcesUpdated      = "notifications/resources/updated"
	MethodResourcesListChanged  = "notifications/resources/list_changed"
	MethodToolsList             = "tools/list"
	MethodToolsCall              = "tools/call"
	MethodToolsListChanged      = "notifications/tools/list_changed"
	MethodCompletionComplete    = "completion/complete"
)

// CancelledParams is sent as notifications/cancelled when a caller cancels
// an in-flight request.
type CancelledParams struct {
	RequestID any    `json:"requestId"`
	Reason    string `json:"reason,omitempty"`
}

// ProgressParams is the payload of notifications/progress.
type ProgressParams struct {
	ProgressToken any     `json:"progressToken"`
	Progress      float64 `json:"progress"`
	Total         float64 `json:"total,omitempty"`
	Message       string  `json:"message,omitempty"`
}

// LoggingMessageParams is the payload of notifications/message.
type LoggingMessageParams struct {
	Level  string `json:"level"`
	Logger string `json:"logger,omitempty"`
	Data   any    `json:"data"`
}

// Root describes one filesystem root the client exposes to the server.
type Root struct {
	URI  string `json:"uri"`
	Name string `json:"name,omitempty"`
}

// RootsListResult answers a server roots/list request.
type RootsListResult struct {
	Roots []Root `json:"roots"`
}

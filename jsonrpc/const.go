package jsonrpc

// JSON-RPC 2.0 standard error codes (https://www.jsonrpc.org/specification#error_object).
const (
	ParseError     = -32700
	InvalidRequest = -32600
	MethodNotFound = -32601
	InvalidParams  = -32602
	InternalError  = -32603
)

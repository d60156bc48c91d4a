package jsonrpc

import "encoding/json"

// NewParsingError creates a new parsing error response.
func NewParsingError(id RequestId, err error, data []byte) *Response {
	return NewError(id, NewInnerError(ParseError, err.Error(), json.RawMessage(data)))
}

// NewInternalError creates a new internal error response.
func NewInternalError(id RequestId, err error, data []byte) *Response {
	return NewError(id, NewInnerError(InternalError, err.Error(), json.RawMessage(data)))
}

// NewInvalidRequest creates a new invalid request error response.
func NewInvalidRequest(id RequestId, err error, data []byte) *Response {
	return NewError(id, NewInnerError(InvalidRequest, err.Error(), json.RawMessage(data)))
}

// NewInvalidParams creates a new invalid params error response.
func NewInvalidParams(id RequestId, err error, data []byte) *Response {
	return NewError(id, NewInnerError(InvalidParams, err.Error(), json.RawMessage(data)))
}

// NewMethodNotFound creates a new method-not-found error response.
func NewMethodNotFound(id RequestId, err error, data []byte) *Response {
	return NewError(id, NewInnerError(MethodNotFound, err.Error(), json.RawMessage(data)))
}

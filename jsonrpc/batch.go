package jsonrpc

import (
	"encoding/json"
	"errors"
)

// BatchRequest represents a JSON-RPC 2.0 batch request: one or more
// requests/notifications sent as a single array. An empty array is rejected
// per spec.
type BatchRequest []*Request

// BatchResponse represents a JSON-RPC 2.0 batch response: one reply per
// request in the originating batch, omitting notifications.
type BatchResponse []*Response

// UnmarshalJSON is a custom JSON unmarshaler for the BatchRequest type.
func (b *BatchRequest) UnmarshalJSON(data []byte) error {
	if string(data) == "[]" {
		return errors.New("invalid batch request: empty array")
	}

	var requests []*Request
	if err := json.Unmarshal(data, &requests); err != nil {
		return err
	}
	if len(requests) == 0 {
		return errors.New("invalid batch request: empty array")
	}

	*b = requests
	return nil
}

// NewBatchResponseFromResponses builds a BatchResponse from successful responses.
func NewBatchResponseFromResponses(responses []*Response) BatchResponse {
	br := make(BatchResponse, 0, len(responses))
	br = append(br, responses...)
	return br
}

// NewBatchResponseFromErrors builds a BatchResponse from error responses.
func NewBatchResponseFromErrors(errs []*Response) BatchResponse {
	br := make(BatchResponse, 0, len(errs))
	br = append(br, errs...)
	return br
}

// NewBatchResponseMixed builds a BatchResponse combining successful and error responses.
func NewBatchResponseMixed(responses []*Response, errs []*Response) BatchResponse {
	br := make(BatchResponse, 0, len(responses)+len(errs))
	br = append(br, responses...)
	br = append(br, errs...)
	return br
}

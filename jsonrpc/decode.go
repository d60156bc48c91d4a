package jsonrpc

import (
	"bytes"
	"encoding/json"
	"fmt"

	goccyjson "github.com/goccy/go-json"
)

// DecodeError represents a JSON-RPC message that could not be decoded: the
// jsonrpc field was wrong, the JSON was malformed, or the id was null (which
// the protocol reserves for "the server could not identify the request").
// It carries the original bytes so a caller can log or replay them.
type DecodeError struct {
	Bytes []byte
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("jsonrpc: decode failed: %v", e.Cause)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// probe is a cheap, partial decode used to classify a frame as request,
// notification or response before committing to the strict typed decode.
type probe struct {
	Jsonrpc string          `json:"jsonrpc"`
	Id      json.RawMessage `json:"id"`
	Method  *string         `json:"method"`
	Result  json.RawMessage `json:"result"`
	Error   json.RawMessage `json:"error"`
}

// Decode parses a single JSON-RPC frame (request, notification or response)
// and classifies it into a Message. Use DecodeAny to also accept batches.
func Decode(data []byte) (*Message, error) {
	var p probe
	if err := goccyjson.Unmarshal(data, &p); err != nil {
		return nil, &DecodeError{Bytes: data, Cause: err}
	}
	if p.Jsonrpc != Version {
		return nil, &DecodeError{Bytes: data, Cause: fmt.Errorf("unsupported jsonrpc version %q", p.Jsonrpc)}
	}
	if bytes.Equal(bytes.TrimSpace(p.Id), []byte("null")) {
		return nil, &DecodeError{Bytes: data, Cause: fmt.Errorf("id is null")}
	}

	switch {
	case p.Method != nil && len(p.Id) == 0:
		var notification Notification
		if err := json.Unmarshal(data, &notification); err != nil {
			return nil, &DecodeError{Bytes: data, Cause: err}
		}
		return NewNotificationMessage(&notification), nil
	case p.Method != nil:
		var request Request
		if err := json.Unmarshal(data, &request); err != nil {
			return nil, &DecodeError{Bytes: data, Cause: err}
		}
		return NewRequestMessage(&request), nil
	case len(p.Result) > 0 || len(p.Error) > 0:
		var response Response
		if err := json.Unmarshal(data, &response); err != nil {
			return nil, &DecodeError{Bytes: data, Cause: err}
		}
		return NewResponseMessage(&response), nil
	default:
		return nil, &DecodeError{Bytes: data, Cause: fmt.Errorf("frame is neither request, notification nor response")}
	}
}

// DecodeAny parses a single frame or a batch array, always returning a slice
// of Messages in wire order. A batch element that fails to decode does not
// abort the rest of the batch; it is reported via errs at the same index.
func DecodeAny(data []byte) (messages []*Message, errs []error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		msg, err := Decode(data)
		if err != nil {
			return nil, []error{err}
		}
		return []*Message{msg}, []error{nil}
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, []error{&DecodeError{Bytes: data, Cause: err}}
	}
	if len(raw) == 0 {
		return nil, []error{&DecodeError{Bytes: data, Cause: fmt.Errorf("empty batch")}}
	}

	messages = make([]*Message, len(raw))
	errs = make([]error, len(raw))
	for i, item := range raw {
		msg, err := Decode(item)
		messages[i] = msg
		errs[i] = err
	}
	return messages, errs
}

// Encode serializes a Message back to its wire form.
func Encode(message *Message) ([]byte, error) {
	return json.Marshal(message)
}

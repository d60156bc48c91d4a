package jsonrpc

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestRequest_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      *Request
		wantError bool
	}{
		{
			name:  "valid request",
			input: `{"jsonrpc":"2.0","method":"test","id":1,"params":{"name":"test"}}`,
			want: &Request{
				Jsonrpc: "2.0",
				Method:  "test",
				Id:      int64(1),
				Params:  json.RawMessage(`{"name":"test"}`),
			},
			wantError: false,
		},
		{
			name:      "missing jsonrpc version",
			input:     `{"method":"test","id":1,"params":{"name":"test"}}`,
			want:      nil,
			wantError: true,
		},
		{
			name:      "missing method",
			input:     `{"jsonrpc":"2.0","id":1,"params":{"name":"test"}}`,
			want:      nil,
			wantError: true,
		},
		{
			name:      "missing id",
			input:     `{"jsonrpc":"2.0","method":"test","params":{"name":"test"}}`,
			want:      nil,
			wantError: true,
		},
		{
			name:  "params optional",
			input: `{"jsonrpc":"2.0","method":"test","id":1}`,
			want: &Request{
				Jsonrpc: "2.0",
				Method:  "test",
				Id:      int64(1),
				Params:  json.RawMessage("null"),
			},
			wantError: false,
		},
		{
			name:  "string id preserved",
			input: `{"jsonrpc":"2.0","method":"test","id":"abc"}`,
			want: &Request{
				Jsonrpc: "2.0",
				Method:  "test",
				Id:      "abc",
				Params:  json.RawMessage("null"),
			},
			wantError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Request
			err := json.Unmarshal([]byte(tt.input), &got)

			if tt.wantError {
				if err == nil {
					t.Errorf("Expected error but got nil")
				}
				return
			}

			if err != nil {
				t.Errorf("Unexpected error: %v", err)
				return
			}

			if got.Jsonrpc != tt.want.Jsonrpc {
				t.Errorf("Jsonrpc: got %v, want %v", got.Jsonrpc, tt.want.Jsonrpc)
			}

			if got.Method != tt.want.Method {
				t.Errorf("Method: got %v, want %v", got.Method, tt.want.Method)
			}

			if !reflect.DeepEqual(got.Id, tt.want.Id) {
				t.Errorf("Id: got %v (%T), want %v (%T)", got.Id, got.Id, tt.want.Id, tt.want.Id)
			}

			gotParams := string(got.Params)
			wantParams := string(tt.want.Params)
			if gotParams != wantParams && gotParams != "null" && wantParams != "null" {
				t.Errorf("Params: got %v, want %v", gotParams, wantParams)
			}
		})
	}
}

func TestNotification_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      *Notification
		wantError bool
	}{
		{
			name:  "valid notification",
			input: `{"jsonrpc":"2.0","method":"test","params":{"name":"test"}}`,
			want: &Notification{
				Jsonrpc: "2.0",
				Method:  "test",
				Params:  json.RawMessage(`{"name":"test"}`),
			},
			wantError: false,
		},
		{
			name:      "missing jsonrpc version",
			input:     `{"method":"test","params":{"name":"test"}}`,
			want:      nil,
			wantError: true,
		},
		{
			name:      "missing method",
			input:     `{"jsonrpc":"2.0","params":{"name":"test"}}`,
			want:      nil,
			wantError: true,
		},
		{
			name:      "with id field (not allowed)",
			input:     `{"jsonrpc":"2.0","method":"test","id":1,"params":{"name":"test"}}`,
			want:      nil,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Notification
			err := json.Unmarshal([]byte(tt.input), &got)

			if tt.wantError {
				if err == nil {
					t.Errorf("Expected error but got nil")
				}
				return
			}

			if err != nil {
				t.Errorf("Unexpected error: %v", err)
				return
			}

			if got.Jsonrpc != tt.want.Jsonrpc {
				t.Errorf("Jsonrpc: got %v, want %v", got.Jsonrpc, tt.want.Jsonrpc)
			}

			if got.Method != tt.want.Method {
				t.Errorf("Method: got %v, want %v", got.Method, tt.want.Method)
			}
		})
	}
}

func TestResponse_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      *Response
		wantError bool
	}{
		{
			name:  "valid result response",
			input: `{"jsonrpc":"2.0","id":1,"result":{"status":"ok"}}`,
			want: &Response{
				Jsonrpc: "2.0",
				Id:      int64(1),
				Result:  json.RawMessage(`{"status":"ok"}`),
			},
			wantError: false,
		},
		{
			name:  "valid error response",
			input: `{"jsonrpc":"2.0","id":1,"error":{"code":-32601,"message":"Method not found"}}`,
			want: &Response{
				Jsonrpc: "2.0",
				Id:      int64(1),
				Error:   &InnerError{Code: MethodNotFound, Message: "Method not found"},
			},
			wantError: false,
		},
		{
			name:      "missing jsonrpc version",
			input:     `{"id":1,"result":{"status":"ok"}}`,
			want:      nil,
			wantError: true,
		},
		{
			name:      "missing id",
			input:     `{"jsonrpc":"2.0","result":{"status":"ok"}}`,
			want:      nil,
			wantError: true,
		},
		{
			name:      "missing result and error",
			input:     `{"jsonrpc":"2.0","id":1}`,
			want:      nil,
			wantError: true,
		},
		{
			name:      "both result and error",
			input:     `{"jsonrpc":"2.0","id":1,"result":{},"error":{"code":-32600,"message":"bad"}}`,
			want:      nil,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Response
			err := json.Unmarshal([]byte(tt.input), &got)

			if tt.wantError {
				if err == nil {
					t.Errorf("Expected error but got nil")
				}
				return
			}

			if err != nil {
				t.Errorf("Unexpected error: %v", err)
				return
			}

			if got.Jsonrpc != tt.want.Jsonrpc {
				t.Errorf("Jsonrpc: got %v, want %v", got.Jsonrpc, tt.want.Jsonrpc)
			}

			if !reflect.DeepEqual(got.Id, tt.want.Id) {
				t.Errorf("Id: got %v (%T), want %v (%T)", got.Id, got.Id, tt.want.Id, tt.want.Id)
			}

			if tt.want.Error != nil {
				if got.Error == nil || *got.Error != *tt.want.Error {
					t.Errorf("Error: got %+v, want %+v", got.Error, tt.want.Error)
				}
				return
			}

			gotResult := string(got.Result)
			wantResult := string(tt.want.Result)
			if gotResult != wantResult {
				t.Errorf("Result: got %v, want %v", gotResult, wantResult)
			}
		})
	}
}

func TestMessage_MarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		message  *Message
		expected string
	}{
		{
			name: "request message",
			message: NewRequestMessage(&Request{
				Jsonrpc: "2.0",
				Method:  "test",
				Id:      1,
				Params:  json.RawMessage(`{"name":"test"}`),
			}),
			expected: `{"jsonrpc":"2.0","id":1,"method":"test","params":{"name":"test"}}`,
		},
		{
			name: "notification message",
			message: NewNotificationMessage(&Notification{
				Jsonrpc: "2.0",
				Method:  "notify",
				Params:  json.RawMessage(`{"event":"update"}`),
			}),
			expected: `{"jsonrpc":"2.0","method":"notify","params":{"event":"update"}}`,
		},
		{
			name: "response message",
			message: NewResponseMessage(&Response{
				Jsonrpc: "2.0",
				Id:      2,
				Result:  json.RawMessage(`{"status":"ok"}`),
			}),
			expected: `{"jsonrpc":"2.0","id":2,"result":{"status":"ok"}}`,
		},
		{
			name: "error response message",
			message: NewResponseMessage(NewError(3, NewInnerError(InvalidRequest, "Invalid Request", "Details here"))),
			expected: `{"error":{"code":-32600,"data":"Details here","message":"Invalid Request"},"id":3,"jsonrpc":"2.0"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.message)
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
				return
			}

			var gotObj, expectedObj interface{}
			if err := json.Unmarshal(got, &gotObj); err != nil {
				t.Errorf("Failed to unmarshal result: %v", err)
			}
			if err := json.Unmarshal([]byte(tt.expected), &expectedObj); err != nil {
				t.Errorf("Failed to unmarshal expected: %v", err)
			}

			if !reflect.DeepEqual(gotObj, expectedObj) {
				t.Errorf("Message JSON\ngot:  %s\nwant: %s", got, tt.expected)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	t.Run("request", func(t *testing.T) {
		msg, err := Decode([]byte(`{"jsonrpc":"2.0","id":1,"method":"ping"}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if msg.Type != MessageTypeRequest || msg.Method() != "ping" {
			t.Errorf("got %+v", msg)
		}
	})

	t.Run("notification", func(t *testing.T) {
		msg, err := Decode([]byte(`{"jsonrpc":"2.0","method":"notifications/progress"}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if msg.Type != MessageTypeNotification {
			t.Errorf("got %+v", msg)
		}
	})

	t.Run("response", func(t *testing.T) {
		msg, err := Decode([]byte(`{"jsonrpc":"2.0","id":1,"result":{}}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if msg.Type != MessageTypeResponse {
			t.Errorf("got %+v", msg)
		}
	})

	t.Run("wrong version rejected", func(t *testing.T) {
		_, err := Decode([]byte(`{"jsonrpc":"1.0","id":1,"method":"ping"}`))
		if err == nil {
			t.Fatal("expected error")
		}
		var decodeErr *DecodeError
		if !asDecodeError(err, &decodeErr) {
			t.Fatalf("expected *DecodeError, got %T", err)
		}
	})

	t.Run("null id is a decode failure", func(t *testing.T) {
		_, err := Decode([]byte(`{"jsonrpc":"2.0","id":null,"result":{}}`))
		if err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestDecodeAny_Batch(t *testing.T) {
	data := []byte(`[
		{"jsonrpc":"2.0","method":"sum","params":[1,2,4],"id":1},
		{"jsonrpc":"2.0","method":"notify_hello","params":[7]},
		{"jsonrpc":"2.0","method":"subtract","params":[42,23],"id":2}
	]`)
	messages, errs := DecodeAny(data)
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}
	for i, err := range errs {
		if err != nil {
			t.Errorf("message %d: unexpected error %v", i, err)
		}
	}
	if messages[0].Type != MessageTypeRequest || messages[1].Type != MessageTypeNotification || messages[2].Type != MessageTypeRequest {
		t.Errorf("unexpected message types: %+v", messages)
	}
}

func TestDecodeAny_EmptyBatchRejected(t *testing.T) {
	_, errs := DecodeAny([]byte(`[]`))
	if len(errs) != 1 || errs[0] == nil {
		t.Fatalf("expected one error for empty batch, got %+v", errs)
	}
}

func asDecodeError(err error, target **DecodeError) bool {
	if de, ok := err.(*DecodeError); ok {
		*target = de
		return true
	}
	return false
}

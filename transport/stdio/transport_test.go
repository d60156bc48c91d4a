package stdio

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/mcphost/mcpclient/transport"
	"github.com/viant/gosh/runner"
)

type mockRunner struct {
	mu          sync.Mutex
	sent        []string
	runFunc     func(ctx context.Context, command string, options ...runner.Option) (string, int, error)
	shouldError bool
}

func (m *mockRunner) PID() int   { return 1 }
func (m *mockRunner) Close() error { return nil }

func (m *mockRunner) Send(ctx context.Context, data []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, string(data))
	if m.shouldError {
		return 0, fmt.Errorf("mock send error")
	}
	return len(data), nil
}

func (m *mockRunner) Run(ctx context.Context, command string, options ...runner.Option) (string, int, error) {
	if m.runFunc != nil {
		return m.runFunc(ctx, command, options...)
	}
	return "", 0, nil
}

func TestTransport_SendWritesLine(t *testing.T) {
	mr := &mockRunner{}
	tr := New("test-command")
	tr.runner = mr
	tr.started = true

	if err := tr.Send(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"ping"}`)); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(mr.sent) != 1 {
		t.Fatalf("expected 1 send, got %d", len(mr.sent))
	}
	if mr.sent[0][len(mr.sent[0])-1] != '\n' {
		t.Errorf("expected trailing newline, got %q", mr.sent[0])
	}
}

func TestTransport_SendBeforeStartFails(t *testing.T) {
	tr := New("test-command")
	err := tr.Send(context.Background(), []byte(`{}`))
	if !transport.IsNotStarted(err) {
		t.Fatalf("expected NotStartedError, got %v", err)
	}
}

func TestTransport_MergedOutputListenerSplitsLines(t *testing.T) {
	tr := New("test-command")
	listener := tr.mergedOutputListener()

	listener(`{"jsonrpc":"2.0","id":1,"result":{}}`+"\n", true)
	listener(`{"jsonrpc":"2.0","method":"notifications/progress"}`+"\n", true)

	select {
	case frame := <-tr.recv:
		if string(frame) != `{"jsonrpc":"2.0","id":1,"result":{}}` {
			t.Errorf("unexpected first frame: %s", frame)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for first frame")
	}

	select {
	case frame := <-tr.recv:
		if string(frame) != `{"jsonrpc":"2.0","method":"notifications/progress"}` {
			t.Errorf("unexpected second frame: %s", frame)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for second frame")
	}
}

func TestTransport_MergedOutputListenerAcrossChunkBoundaries(t *testing.T) {
	tr := New("test-command")
	listener := tr.mergedOutputListener()

	listener(`{"jsonrpc":"2.0","id":1,`, true)
	listener(`"result":{}}`+"\n", false)

	select {
	case frame := <-tr.recv:
		if string(frame) != `{"jsonrpc":"2.0","id":1,"result":{}}` {
			t.Errorf("unexpected frame: %s", frame)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for frame")
	}
}

func TestTransport_MergedOutputListenerRoutesNonFrameLinesToLogs(t *testing.T) {
	tr := New("test-command")
	listener := tr.mergedOutputListener()

	listener("INFO starting up\n", true)
	listener(`{"jsonrpc":"2.0","method":"notifications/message","params":{"level":"info","data":"ready"}}`+"\n", true)
	listener("WARN low on memory\n", true)

	select {
	case line := <-tr.logs:
		if line != "INFO starting up" {
			t.Errorf("unexpected first log line: %s", line)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for first log line")
	}

	select {
	case frame := <-tr.recv:
		if string(frame) != `{"jsonrpc":"2.0","method":"notifications/message","params":{"level":"info","data":"ready"}}` {
			t.Errorf("unexpected frame: %s", frame)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for frame")
	}

	select {
	case line := <-tr.logs:
		if line != "WARN low on memory" {
			t.Errorf("unexpected second log line: %s", line)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for second log line")
	}
}

func TestTransport_CloseIsIdempotent(t *testing.T) {
	tr := New("test-command")
	tr.started = true
	if err := tr.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

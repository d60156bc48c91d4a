package httpmcp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestTransport_StartRejectsUnsupportedScheme(t *testing.T) {
	tr := New("ftp://example.com/mcp")
	if err := tr.Start(context.Background()); err == nil {
		t.Fatalf("expected Start to reject a non-HTTP scheme")
	}
}

func TestTransport_StartRejectsMissingHost(t *testing.T) {
	tr := New("http:///mcp")
	if err := tr.Start(context.Background()); err == nil {
		t.Fatalf("expected Start to reject a URL with no host")
	}
}

func TestTransport_SessionIDPropagation(t *testing.T) {
	var gotSessionHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if r.Method == http.MethodDelete {
			gotSessionHeader = r.Header.Get("Mcp-Session-Id")
			w.WriteHeader(http.StatusOK)
			return
		}
		w.Header().Set("Mcp-Session-Id", "S1")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{}}`))
	}))
	defer srv.Close()

	tr := New(srv.URL)
	if err := tr.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := tr.Send(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"initialize"}`)); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if tr.SessionID() != "S1" {
		t.Fatalf("expected session id S1, got %q", tr.SessionID())
	}

	select {
	case frame := <-tr.Receive():
		if string(frame) != `{"jsonrpc":"2.0","id":1,"result":{}}` {
			t.Errorf("unexpected frame: %s", frame)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for response frame")
	}

	if err := tr.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if gotSessionHeader != "S1" {
		t.Errorf("expected DELETE to carry session header, got %q", gotSessionHeader)
	}
}

func TestTransport_KeepAliveHeaderDrivesPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Keep-Alive", "timeout=1")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{}}`))
	}))
	defer srv.Close()

	tr := New(srv.URL)
	if err := tr.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer tr.Close()

	var pings int32
	tr.SetPingFunc(func(ctx context.Context) error {
		atomic.AddInt32(&pings, 1)
		return nil
	})

	if err := tr.Send(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"initialize"}`)); err != nil {
		t.Fatalf("Send: %v", err)
	}
	// Drain the response frame so it doesn't leak into the next test.
	select {
	case <-tr.Receive():
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for initialize response")
	}

	// Keep-Alive: timeout=1 arms the timer at 0.8s; give it one full period
	// plus slack with no further outbound traffic so the self-ping fires.
	time.Sleep(1100 * time.Millisecond)

	if got := atomic.LoadInt32(&pings); got < 1 {
		t.Fatalf("expected at least one self-initiated ping, got %d", got)
	}
}

func TestTransport_ProtocolVersionHeader(t *testing.T) {
	var gotVersion string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		gotVersion = r.Header.Get("MCP-Protocol-Version")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{}}`))
	}))
	defer srv.Close()

	tr := New(srv.URL)
	_ = tr.Start(context.Background())
	if err := tr.Send(context.Background(), []byte(`{}`)); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotVersion != DefaultProtocolVersion {
		t.Errorf("expected default protocol version before negotiation, got %q", gotVersion)
	}

	tr.SetProtocolVersion("2025-03-26")
	if err := tr.Send(context.Background(), []byte(`{}`)); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotVersion != "2025-03-26" {
		t.Errorf("expected negotiated protocol version, got %q", gotVersion)
	}
}

// Package stdio implements the stdio MCP transport: it spawns a child
// process, speaks line-delimited JSON-RPC on its stdin/stdout, and surfaces
// stderr as a log stream.
package stdio

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/mcphost/mcpclient/jsonrpc"
	"github.com/mcphost/mcpclient/transport"
	"github.com/viant/gosh/runner"
	"github.com/viant/gosh/runner/local"
	"github.com/viant/gosh/runner/ssh"
	"github.com/viant/scy/cred/secret"
	cssh "golang.org/x/crypto/ssh"
)

// Transport spawns command (with args) as a child process and frames
// stdin/stdout as newline-delimited JSON-RPC messages. If Host is set, the
// command runs over SSH instead of locally.
type Transport struct {
	Command string
	Args    []string
	Env     map[string]string
	Dir     string

	Host      string
	SSHConfig *cssh.ClientConfig
	Secret    secret.Resource

	Logger jsonrpc.Logger

	mu      sync.Mutex
	runner  runner.Runner
	started bool
	closed  bool

	recv  chan []byte
	logs  chan string
	state chan transport.State

	lineBuf strings.Builder
}

// Option configures a Transport at construction.
type Option func(*Transport)

// WithArguments sets the command-line arguments passed to Command.
func WithArguments(args ...string) Option {
	return func(t *Transport) { t.Args = args }
}

// WithEnvironment sets one environment variable for the child process.
func WithEnvironment(key, value string) Option {
	return func(t *Transport) {
		if t.Env == nil {
			t.Env = make(map[string]string)
		}
		t.Env[key] = value
	}
}

// WithWorkingDirectory sets the child process's working directory.
func WithWorkingDirectory(dir string) Option {
	return func(t *Transport) { t.Dir = dir }
}

// WithHost runs the command over SSH against host instead of locally.
func WithHost(host string) Option {
	return func(t *Transport) { t.Host = host }
}

// WithSecret supplies the secret resource used to resolve SSH credentials
// when Host is set and no explicit SSHConfig was given.
func WithSecret(resource secret.Resource) Option {
	return func(t *Transport) { t.Secret = resource }
}

// WithLogger overrides the logger used for transport-internal diagnostics.
func WithLogger(logger jsonrpc.Logger) Option {
	return func(t *Transport) { t.Logger = logger }
}

// New constructs a stdio Transport for command. Start must be called before
// Send/Receive/Logs are usable.
func New(command string, opts ...Option) *Transport {
	t := &Transport{
		Command: command,
		Logger:  jsonrpc.DefaultLogger,
		recv:    make(chan []byte, 64),
		logs:    make(chan string, 256),
		state:   make(chan transport.State, 8),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Transport) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.started {
		t.mu.Unlock()
		return nil
	}
	t.started = true
	t.mu.Unlock()

	t.emitState(transport.StateStarting)

	if err := t.ensureSSHConfig(ctx); err != nil {
		return transport.NewSpawnFailedError(err)
	}

	options := []runner.Option{runner.AsPipeline()}
	if t.SSHConfig != nil {
		t.runner = ssh.New(t.Host, t.SSHConfig, options...)
	} else {
		t.runner = local.New(options...)
	}

	cmd := t.Command
	if len(t.Args) > 0 {
		cmd = fmt.Sprintf("%s %s", t.Command, strings.Join(t.Args, " "))
	}

	go t.run(ctx, cmd)

	t.emitState(transport.StateConnected)
	return nil
}

func (t *Transport) run(ctx context.Context, cmd string) {
	runOpts := []runner.Option{
		runner.WithEnvironment(t.Env),
		runner.WithListener(t.mergedOutputListener()),
	}
	_, code, err := t.runner.Run(ctx, cmd, runOpts...)
	t.mu.Lock()
	alreadyClosed := t.closed
	t.mu.Unlock()
	if alreadyClosed {
		return
	}
	if err != nil {
		t.fail(transport.NewPeerClosedError(err))
		return
	}
	if code != 0 {
		t.fail(transport.NewPeerClosedError(fmt.Errorf("child exited with code %d", code)))
	}
}

func (t *Transport) fail(err error) {
	if t.Logger != nil {
		t.Logger.Errorf("stdio transport: %v", err)
	}
	select {
	case t.logs <- err.Error():
	default:
	}
	t.emitState(transport.StateDisconnected)
}

// mergedOutputListener buffers raw output chunks and splits them into
// lines, forwarding each non-empty line either as an inbound frame or as a
// log entry.
//
// gosh's pipeline runner (runner.Pipeline.Listen, used when AsPipeline is
// set) has no stderr-specific hook: it copies the child's stdout and
// stderr into separate internal channels but then feeds both into the
// single Listener callback configured via runner.WithListener, so by the
// time a line reaches here stdout and stderr are already interleaved.
// Lines are told apart by shape instead of by source: a JSON-RPC frame is
// always a JSON object or array, so a line starting with '{' or '[' is
// routed to Receive (where the wire decoder reports anything malformed as
// a decode error, same as any other bad frame); anything else is stderr
// log text and is routed to Logs, matching spec §4.3/§6 ("stderr is log
// text, one entry per line").
func (t *Transport) mergedOutputListener() runner.Listener {
	return func(chunk string, hasMore bool) {
		t.lineBuf.WriteString(chunk)
		for {
			buf := t.lineBuf.String()
			idx := strings.IndexByte(buf, '\n')
			if idx < 0 {
				break
			}
			line := strings.TrimRight(buf[:idx], "\r")
			t.lineBuf.Reset()
			t.lineBuf.WriteString(buf[idx+1:])
			if line == "" {
				continue
			}
			t.routeLine(line)
		}
	}
}

func (t *Transport) routeLine(line string) {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		select {
		case t.recv <- []byte(line):
		default:
			// Receive is unread fast enough upstream to be the exception;
			// drop-oldest keeps the transport from blocking the child's
			// stdout pump.
			<-t.recv
			t.recv <- []byte(line)
		}
		return
	}
	select {
	case t.logs <- line:
	default:
		<-t.logs
		t.logs <- line
	}
}

func (t *Transport) Send(ctx context.Context, frame []byte) error {
	t.mu.Lock()
	started := t.started
	closed := t.closed
	r := t.runner
	t.mu.Unlock()
	if !started {
		return transport.ErrNotStarted
	}
	if closed {
		return transport.NewPeerClosedError(nil)
	}
	data := append(append([]byte{}, frame...), '\n')
	_, err := r.Send(ctx, data)
	return err
}

func (t *Transport) Receive() <-chan []byte { return t.recv }

func (t *Transport) Logs() <-chan string { return t.logs }

func (t *Transport) State() <-chan transport.State { return t.state }

func (t *Transport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()

	t.emitState(transport.StateClosed)
	close(t.recv)
	close(t.logs)
	close(t.state)
	return nil
}

func (t *Transport) emitState(s transport.State) {
	select {
	case t.state <- s:
	default:
	}
}

func (t *Transport) ensureSSHConfig(ctx context.Context) error {
	if t.SSHConfig != nil || t.Host == "" {
		return nil
	}
	if t.Secret == "" {
		return fmt.Errorf("ssh config required for host %q but no secret resource was provided", t.Host)
	}
	secrets := secret.New()
	cred, err := secrets.GetCredentials(ctx, string(t.Secret))
	if err != nil {
		return err
	}
	t.SSHConfig, err = cred.SSH.Config(ctx)
	return err
}

package cmd

import (
	"context"
	"fmt"

	"github.com/mcphost/mcpclient/internal/cliconfig"
	"github.com/mcphost/mcpclient/mcpsession"
	"github.com/mcphost/mcpclient/mcptype"
	"github.com/mcphost/mcpclient/transport"
	"github.com/mcphost/mcpclient/transport/httpmcp"
	"github.com/mcphost/mcpclient/transport/stdio"
)

// openSession loads the active configuration, builds the configured
// transport, and connects a session client ready to drive operations. The
// caller owns disconnecting it.
func openSession(ctx context.Context) (*mcpsession.Client, error) {
	cfg, err := cliconfig.Load()
	if err != nil {
		return nil, err
	}

	tr, err := buildTransport(cfg)
	if err != nil {
		return nil, err
	}

	client := mcpsession.New(tr,
		mcpsession.WithClientInfo(mcptype.Implementation{
			Name:    cfg.ClientName,
			Version: cfg.ClientVersion,
		}),
		mcpsession.WithCapabilities(mcptype.ClientCapabilities{
			Roots: &mcptype.RootsCapability{},
		}),
	)

	if err := client.Connect(ctx); err != nil {
		return nil, fmt.Errorf("mcpcli: connect: %w", err)
	}
	return client, nil
}

func buildTransport(cfg *cliconfig.Config) (transport.Transport, error) {
	switch cfg.Transport {
	case "stdio":
		opts := []stdio.Option{stdio.WithArguments(cfg.Args...)}
		for _, kv := range cfg.Env {
			k, v := splitEnv(kv)
			opts = append(opts, stdio.WithEnvironment(k, v))
		}
		return stdio.New(cfg.Command, opts...), nil
	case "http":
		var opts []httpmcp.Option
		if cfg.AuthorizationToken != "" {
			opts = append(opts, httpmcp.WithAuthorizationToken(cfg.AuthorizationToken))
		}
		return httpmcp.New(cfg.URL, opts...), nil
	default:
		return nil, fmt.Errorf("mcpcli: unsupported transport %q", cfg.Transport)
	}
}

func splitEnv(kv string) (string, string) {
	for i := 0; i < len(kv); i++ {
		if kv[i] == '=' {
			return kv[:i], kv[i+1:]
		}
	}
	return kv, ""
}

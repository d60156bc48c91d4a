package dxtpkg

import (
	"context"

	"github.com/mcphost/mcpclient/transport/stdio"
)

// Options carries the caller-supplied inputs that aren't in the manifest
// itself: resolved user configuration values and the host application's
// version (for compatibility.context checks).
type Options struct {
	UserConfig     map[string]any
	HostAppVersion string
}

// Invocation is the process-invocation descriptor produced after manifest
// parsing, compatibility validation and variable substitution, ready to
// hand to the stdio transport.
type Invocation struct {
	Command string
	Args    []string
	Env     map[string]string
	Dir     string
}

// Resolve loads dir's manifest.json, validates compatibility and user
// configuration, and expands variables into a process invocation.
func Resolve(ctx context.Context, dir string, opts Options) (*Invocation, *Manifest, error) {
	manifest, err := LoadManifest(dir)
	if err != nil {
		return nil, nil, err
	}

	if err := ValidateCompatibility(ctx, manifest.Compatibility, opts.HostAppVersion); err != nil {
		return nil, manifest, err
	}
	if err := ValidateUserConfig(manifest.UserConfig, opts.UserConfig); err != nil {
		return nil, manifest, err
	}

	cfg := manifest.EffectiveConfig(CurrentPlatform())

	substCtx, err := newSubstContext(dir, opts.UserConfig)
	if err != nil {
		return nil, manifest, err
	}

	inv := &Invocation{
		Command: substCtx.substituteString(cfg.Command),
		Args:    expandArgs(cfg.Args, substCtx),
		Env:     expandEnv(cfg.Env, substCtx),
		Dir:     substCtx.substituteString(cfg.WorkingDirectory),
	}
	return inv, manifest, nil
}

// NewStdioTransport resolves dir's manifest and builds a stdio.Transport
// ready to Start, delegating per spec §4.5 step 6.
func NewStdioTransport(ctx context.Context, dir string, opts Options, stdioOpts ...stdio.Option) (*stdio.Transport, *Manifest, error) {
	inv, manifest, err := Resolve(ctx, dir, opts)
	if err != nil {
		return nil, manifest, err
	}

	allOpts := make([]stdio.Option, 0, len(stdioOpts)+3)
	if len(inv.Args) > 0 {
		allOpts = append(allOpts, stdio.WithArguments(inv.Args...))
	}
	if inv.Dir != "" {
		allOpts = append(allOpts, stdio.WithWorkingDirectory(inv.Dir))
	}
	for k, v := range inv.Env {
		allOpts = append(allOpts, stdio.WithEnvironment(k, v))
	}
	allOpts = append(allOpts, stdioOpts...)

	return stdio.New(inv.Command, allOpts...), manifest, nil
}

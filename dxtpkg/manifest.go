// Package dxtpkg implements the package (DXT) transport: it parses a local
// directory's manifest.json, validates platform/runtime/host compatibility
// and required user configuration, expands ${...} variables in the
// resulting command line, and delegates to a stdio transport (§4.5).
package dxtpkg

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrManifestMissing is returned when the DXT directory has no manifest.json.
var ErrManifestMissing = errors.New("dxtpkg: manifest.json missing")

// DirectoryNotFoundError reports that path is not a directory.
type DirectoryNotFoundError struct{ Path string }

func (e *DirectoryNotFoundError) Error() string {
	return fmt.Sprintf("dxtpkg: directory not found: %s", e.Path)
}

// Manifest is the parsed contents of manifest.json.
type Manifest struct {
	Name          string                  `json:"name"`
	Version       string                  `json:"version"`
	Server        ServerSpec              `json:"server"`
	Compatibility *Compatibility          `json:"compatibility,omitempty"`
	UserConfig    map[string]UserConfigField `json:"user_config,omitempty"`
}

// ServerSpec describes how to launch the packaged server.
type ServerSpec struct {
	Type       string    `json:"type"`
	EntryPoint string    `json:"entry_point"`
	MCPConfig  MCPConfig `json:"mcp_config"`
}

// MCPConfig is the process invocation template, before variable expansion.
type MCPConfig struct {
	Command          string            `json:"command"`
	Args             []string          `json:"args,omitempty"`
	Env              map[string]string `json:"env,omitempty"`
	WorkingDirectory string            `json:"working_directory,omitempty"`
}

// Compatibility declares the constraints validated at construction.
type Compatibility struct {
	Platforms        []string                   `json:"platforms,omitempty"`
	Runtimes         map[string]string          `json:"runtimes,omitempty"`
	Context          string                     `json:"context,omitempty"`
	PlatformOverrides map[string]MCPConfig      `json:"platform_overrides,omitempty"`
}

// UserConfigField describes one entry of the manifest's user_config map.
type UserConfigField struct {
	Type        string `json:"type,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
	Sensitive   bool   `json:"sensitive,omitempty"`
	Default     any    `json:"default,omitempty"`
}

// LoadManifest reads and parses manifest.json from dir.
func LoadManifest(dir string) (*Manifest, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, &DirectoryNotFoundError{Path: dir}
	}
	data, err := os.ReadFile(filepath.Join(dir, "manifest.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrManifestMissing
		}
		return nil, fmt.Errorf("dxtpkg: reading manifest.json: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &ManifestInvalidError{Cause: err}
	}
	return &m, nil
}

// ManifestInvalidError wraps a manifest.json parse failure.
type ManifestInvalidError struct{ Cause error }

func (e *ManifestInvalidError) Error() string {
	return fmt.Sprintf("dxtpkg: invalid manifest: %v", e.Cause)
}
func (e *ManifestInvalidError) Unwrap() error { return e.Cause }

// EffectiveConfig returns m.Server.MCPConfig with platform_overrides[platform]
// applied key-by-key on top, per spec §4.5 step 2.
func (m *Manifest) EffectiveConfig(platform string) MCPConfig {
	cfg := m.Server.MCPConfig
	if m.Compatibility == nil {
		return cfg
	}
	override, ok := m.Compatibility.PlatformOverrides[platform]
	if !ok {
		return cfg
	}
	if override.Command != "" {
		cfg.Command = override.Command
	}
	if override.Args != nil {
		cfg.Args = override.Args
	}
	if override.WorkingDirectory != "" {
		cfg.WorkingDirectory = override.WorkingDirectory
	}
	if override.Env != nil {
		merged := make(map[string]string, len(cfg.Env)+len(override.Env))
		for k, v := range cfg.Env {
			merged[k] = v
		}
		for k, v := range override.Env {
			merged[k] = v
		}
		cfg.Env = merged
	}
	return cfg
}

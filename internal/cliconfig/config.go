// Package cliconfig loads mcpcli's connection configuration from a YAML
// file and MCPCLI_-prefixed environment variables through spf13/viper. The
// only value taken from a cobra flag is the config file path (--config).
package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the full set of settings mcpcli needs to open a session
// against one MCP server.
type Config struct {
	// Transport selects the wire transport: "stdio" or "http".
	Transport string `yaml:"transport" mapstructure:"transport" validate:"required,oneof=stdio http"`

	// Command and Args launch a child process for the stdio transport.
	Command string   `yaml:"command" mapstructure:"command" validate:"required_if=Transport stdio"`
	Args    []string `yaml:"args" mapstructure:"args"`
	Env     []string `yaml:"env" mapstructure:"env"`

	// URL is the streamable-HTTP/SSE endpoint for the http transport.
	URL string `yaml:"url" mapstructure:"url" validate:"required_if=Transport http,omitempty,url"`

	// AuthorizationToken is sent as a bearer token on the http transport
	// before any interactive OAuth flow runs.
	AuthorizationToken string `yaml:"authorization_token" mapstructure:"authorization_token"`

	// ClientName and ClientVersion identify this CLI to the server during
	// initialize.
	ClientName    string `yaml:"client_name" mapstructure:"client_name"`
	ClientVersion string `yaml:"client_version" mapstructure:"client_version"`
}

// InitViper wires up config file discovery and MCPCLI_-prefixed
// environment variable overrides. If configFile is empty, mcpcli.yaml is
// searched for in the current directory and $HOME/.mcpcli.
func InitViper(configFile string) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else if found := findConfigFile(); found != "" {
		viper.SetConfigFile(found)
	} else {
		viper.SetConfigName("mcpcli")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("MCPCLI")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("client_name", "mcpcli")
	viper.SetDefault("client_version", "dev")
}

func findConfigFile() string {
	home, _ := os.UserHomeDir()
	for _, dir := range []string{".", filepath.Join(home, ".mcpcli")} {
		for _, ext := range []string{"yaml", "yml"} {
			candidate := filepath.Join(dir, "mcpcli."+ext)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return ""
}

// Load reads the active viper configuration into a Config and validates
// it. ReadInConfig errors other than a missing file are fatal; a missing
// file is fine since flags/env/defaults may be sufficient on their own.
func Load() (*Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("cliconfig: reading config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("cliconfig: decoding config: %w", err)
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("cliconfig: invalid configuration: %w", err)
	}
	return &cfg, nil
}

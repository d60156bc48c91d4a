// Package cmd provides the mcpcli CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcphost/mcpclient/internal/cliconfig"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "mcpcli",
	Short: "mcpcli drives an MCP session for manual testing",
	Long: `mcpcli opens an MCP client session over stdio or streamable HTTP and
exposes tools, resources, and prompts operations as subcommands.

Configuration is loaded from mcpcli.yaml in the current directory,
$HOME/.mcpcli/, or from MCPCLI_-prefixed environment variables.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./mcpcli.yaml)")
}

func initConfig() {
	cliconfig.InitViper(cfgFile)
}

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List and call tools exposed by the server",
}

var toolsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available tools",
	RunE: func(c *cobra.Command, args []string) error {
		client, err := openSession(c.Context())
		if err != nil {
			return err
		}
		defer client.Disconnect()

		result, err := client.ListTools(c.Context(), "")
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

var toolCallArgsJSON string

var toolsCallCmd = &cobra.Command{
	Use:   "call <name>",
	Short: "Call a tool",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		var arguments map[string]any
		if toolCallArgsJSON != "" {
			if err := json.Unmarshal([]byte(toolCallArgsJSON), &arguments); err != nil {
				return fmt.Errorf("mcpcli: invalid --args JSON: %w", err)
			}
		}

		client, err := openSession(c.Context())
		if err != nil {
			return err
		}
		defer client.Disconnect()

		result, err := client.CallTool(c.Context(), args[0], arguments)
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

func init() {
	toolsCallCmd.Flags().StringVar(&toolCallArgsJSON, "args", "", "tool arguments as a JSON object")
	toolsCmd.AddCommand(toolsListCmd, toolsCallCmd)
	rootCmd.AddCommand(toolsCmd)
}

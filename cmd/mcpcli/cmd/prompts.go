package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "List and fetch prompts exposed by the server",
}

var promptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available prompts",
	RunE: func(c *cobra.Command, args []string) error {
		client, err := openSession(c.Context())
		if err != nil {
			return err
		}
		defer client.Disconnect()

		result, err := client.ListPrompts(c.Context(), "")
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

var promptArgsJSON string

var promptsGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Fetch a rendered prompt",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		var arguments map[string]string
		if promptArgsJSON != "" {
			if err := json.Unmarshal([]byte(promptArgsJSON), &arguments); err != nil {
				return fmt.Errorf("mcpcli: invalid --args JSON: %w", err)
			}
		}

		client, err := openSession(c.Context())
		if err != nil {
			return err
		}
		defer client.Disconnect()

		result, err := client.GetPrompt(c.Context(), args[0], arguments)
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

func init() {
	promptsGetCmd.Flags().StringVar(&promptArgsJSON, "args", "", "prompt arguments as a JSON object of strings")
	promptsCmd.AddCommand(promptsListCmd, promptsGetCmd)
	rootCmd.AddCommand(promptsCmd)
}

package cmd

import "github.com/spf13/cobra"

var resourcesCmd = &cobra.Command{
	Use:   "resources",
	Short: "List and read resources exposed by the server",
}

var resourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available resources",
	RunE: func(c *cobra.Command, args []string) error {
		client, err := openSession(c.Context())
		if err != nil {
			return err
		}
		defer client.Disconnect()

		result, err := client.ListResources(c.Context(), "")
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

var resourcesReadCmd = &cobra.Command{
	Use:   "read <uri>",
	Short: "Read a resource",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		client, err := openSession(c.Context())
		if err != nil {
			return err
		}
		defer client.Disconnect()

		result, err := client.ReadResource(c.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

func init() {
	resourcesCmd.AddCommand(resourcesListCmd, resourcesReadCmd)
	rootCmd.AddCommand(resourcesCmd)
}

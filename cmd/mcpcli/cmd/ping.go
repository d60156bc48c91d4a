package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Connect, send a ping, and disconnect",
	RunE: func(c *cobra.Command, args []string) error {
		client, err := openSession(c.Context())
		if err != nil {
			return err
		}
		defer client.Disconnect()

		if err := client.Ping(c.Context()); err != nil {
			return err
		}
		fmt.Println("pong")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)
}

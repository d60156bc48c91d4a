// Command mcpcli is a manual-testing harness for the MCP client runtime:
// it opens a session over stdio or streamable HTTP and drives tools,
// resources, and prompts operations from the terminal.
package main

import "github.com/mcphost/mcpclient/cmd/mcpcli/cmd"

func main() {
	cmd.Execute()
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// watch-start, service, and add-mcp are out of scope for the indexing core
// (a continuous file-watcher daemon, a long-running service process, and
// MCP tool registration), but a complete CLI still needs a runnable,
// discoverable command for each rather than a silent gap in
// `codegraph --help`.

var watchStartCmd = &cobra.Command{
	Use:   "watch-start",
	Short: "Watch a project and reindex on file change (not implemented)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("watch-start: continuous file watching is out of scope; run `codegraph index` on a schedule or from your own watcher instead")
	},
}

var serviceCmd = &cobra.Command{
	Use:   "service",
	Short: "Run codegraph as a long-lived background service (not implemented)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("service: long-running service mode is out of scope; invoke `codegraph index`/`codegraph search` directly")
	},
}

var addMCPCmd = &cobra.Command{
	Use:   "add-mcp",
	Short: "Register codegraph as an MCP tool provider (not implemented)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("add-mcp: MCP registration is out of scope; point an MCP server's tool handler at the store/graphview packages directly")
	},
}

func init() {
	rootCmd.AddCommand(watchStartCmd, serviceCmd, addMCPCmd)
}

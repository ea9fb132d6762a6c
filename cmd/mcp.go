package cmd

import (
	"github.com/spf13/cobra"
	"github.com/whoknows/whoknows/internal/mcp"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Whoknows MCP server",
	Long:  `Launch an MCP server that lets AI agents ask who knows a file via standard tools.`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		// The MCP server needs persistence but no positional file paths, so
		// it skips the full sharedSetup and reuses the cache-only setup.
		return cacheSetup()
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

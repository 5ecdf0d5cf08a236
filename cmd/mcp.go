package cmd

import (
	"github.com/huangsam/repolens/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the repolens MCP server",
	Long: `Launch an MCP server over stdio so AI agents can run repository analytics as tools.

Every tool takes a repo argument (owner/name). The remaining flags act as defaults.`,
	Args:    cobra.NoArgs,
	PreRunE: serviceSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}

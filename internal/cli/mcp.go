package cli

import (
	"github.com/ideamans/go-sheetview/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run as MCP server (stdio)",
	Long:  `Run sheetview as a Model Context Protocol server using stdio transport.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCollection(cmd)
		if err != nil {
			return err
		}
		return mcp.New(c, versionStr).Run()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

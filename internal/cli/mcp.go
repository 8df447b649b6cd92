package cli

import (
	"github.com/akolanti/DocQA/internal/mcpServer"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the document tools to an MCP client over stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := requireServices(); err != nil {
			return err
		}
		s, err := mcpServer.NewServer(ragService, documents)
		if err != nil {
			return err
		}
		return s.Run(commandContext(cmd))
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

package cmd

import (
	"github.com/spf13/cobra"

	mcpserver "inmofeed/mcp"
)

var serveMCPCmd = &cobra.Command{
	Use:   "serve-mcp",
	Short: "Start the MCP stdio server",
	RunE:  runServeMCP,
}

func init() {
	rootCmd.AddCommand(serveMCPCmd)
}

func runServeMCP(cmd *cobra.Command, args []string) error {
	svc, err := buildServices()
	if err != nil {
		return err
	}
	return mcpserver.Serve(svc.agg, svc.posts)
}

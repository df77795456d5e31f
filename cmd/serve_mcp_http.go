package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	mcpserver "inmofeed/mcp"
)

var serveMCPHTTPCmd = &cobra.Command{
	Use:   "serve-mcp-http",
	Short: "Start the MCP HTTP server",
	Long:  "Start the MCP server over HTTP for remote access, with optional Bearer auth via INMOFEED_API_KEY.",
	RunE:  runServeMCPHTTP,
}

func init() {
	serveMCPHTTPCmd.Flags().String("port", "", "HTTP port (default from $PORT or 8080)")
	rootCmd.AddCommand(serveMCPHTTPCmd)
}

func runServeMCPHTTP(cmd *cobra.Command, args []string) error {
	svc, err := buildServices()
	if err != nil {
		return err
	}

	port := cfg.HTTPPort
	if p, _ := cmd.Flags().GetString("port"); p != "" {
		port = p
	}

	addr := fmt.Sprintf(":%s", port)
	return mcpserver.ServeHTTP(addr, cfg.APIKey, svc.agg, svc.posts)
}

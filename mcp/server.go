// Package mcp exposes the property aggregation layer as MCP tools, over
// stdio for local agents and over HTTP for remote ones.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"inmofeed/internal/aggregate"
	"inmofeed/internal/blog"
)

// Serve starts the MCP stdio server with all tools registered.
func Serve(agg *aggregate.Aggregator, posts *blog.Service) error {
	s := server.NewMCPServer(
		"inmofeed",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	registerTools(s, agg, posts)

	return server.ServeStdio(s)
}

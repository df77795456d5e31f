package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"inmofeed/internal/aggregate"
	"inmofeed/internal/blog"
	"inmofeed/internal/models"
)

func registerTools(s *server.MCPServer, agg *aggregate.Aggregator, posts *blog.Service) {
	// search_properties
	searchTool := mcp.NewTool("search_properties",
		mcp.WithDescription("List aggregated property listings from all sources"),
		mcp.WithNumber("page",
			mcp.Description("Page number (default: 1)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Properties per page (default: 12)"),
		),
	)
	s.AddTool(searchTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleSearchProperties(ctx, request, agg)
	})

	// get_property
	getTool := mcp.NewTool("get_property",
		mcp.WithDescription("Get one property by id; the source is guessed from the id shape when omitted"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Property id (Mongo ObjectID hex or WooCommerce numeric id)"),
		),
		mcp.WithString("source",
			mcp.Description("Source backend: mongodb or woocommerce"),
		),
	)
	s.AddTool(getTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGetProperty(ctx, request, agg)
	})

	// latest_posts
	postsTool := mcp.NewTool("latest_posts",
		mcp.WithDescription("Get the latest blog posts"),
		mcp.WithNumber("limit",
			mcp.Description("Number of posts (default: 6)"),
		),
	)
	s.AddTool(postsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleLatestPosts(ctx, request, posts)
	})
}

func handleSearchProperties(ctx context.Context, request mcp.CallToolRequest, agg *aggregate.Aggregator) (*mcp.CallToolResult, error) {
	page := request.GetInt("page", 1)
	limit := request.GetInt("limit", 12)

	result, err := agg.GetProperties(ctx, page, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("aggregation error: %v", err)), nil
	}

	data, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(data)), nil
}

func handleGetProperty(ctx context.Context, request mcp.CallToolRequest, agg *aggregate.Aggregator) (*mcp.CallToolResult, error) {
	id := request.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}
	src := models.SourceID(request.GetString("source", ""))

	p, found := agg.GetProperty(ctx, id, src)
	if !found {
		return mcp.NewToolResultError(fmt.Sprintf("property %s not found", id)), nil
	}

	data, _ := json.MarshalIndent(p, "", "  ")
	return mcp.NewToolResultText(string(data)), nil
}

func handleLatestPosts(ctx context.Context, request mcp.CallToolRequest, posts *blog.Service) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", 6)

	data, _ := json.MarshalIndent(posts.LatestPosts(ctx, limit), "", "  ")
	return mcp.NewToolResultText(string(data)), nil
}

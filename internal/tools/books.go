package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hllvc/zoho-mcp/internal/zoho"
)

func registerBooks(s *server.MCPServer, client ResourceClient) {
	s.AddTool(mcp.NewTool("books_list",
		mcp.WithDescription("List records from a Zoho Books collection (e.g. invoices, contacts, bills, estimates)."),
		mcp.WithString("resource", mcp.Required(), mcp.Description("Books collection name, e.g. invoices")),
		mcp.WithNumber("page", mcp.Description("Page number, starting at 1")),
		mcp.WithNumber("per_page", mcp.Description("Records per page (max 200)")),
		mcp.WithString("sort_column", mcp.Description("Column to sort by")),
		mcp.WithString("sort_order", mcp.Description("Sort direction: ascending or descending")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		resource, err := req.RequireString("resource")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		result, err := client.List(ctx, resource, zoho.ListOptions{
			Page:    req.GetInt("page", 0),
			PerPage: req.GetInt("per_page", 0),
			SortBy:  req.GetString("sort_column", ""),
			SortDir: req.GetString("sort_order", ""),
		})
		if err != nil {
			return mcp.NewToolResultError(describeError(err)), nil
		}
		return mcp.NewToolResultText(string(result)), nil
	})

	s.AddTool(mcp.NewTool("books_get",
		mcp.WithDescription("Fetch a single Zoho Books record by id."),
		mcp.WithString("resource", mcp.Required(), mcp.Description("Books collection name")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Record id")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		resource, err := req.RequireString("resource")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		id, err := req.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		result, err := client.Get(ctx, resource, id)
		if err != nil {
			return mcp.NewToolResultError(describeError(err)), nil
		}
		return mcp.NewToolResultText(string(result)), nil
	})

	s.AddTool(mcp.NewTool("books_create",
		mcp.WithDescription("Create a record in a Zoho Books collection."),
		mcp.WithString("resource", mcp.Required(), mcp.Description("Books collection name")),
		mcp.WithObject("data", mcp.Required(), mcp.Description("Record fields as a JSON object")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		resource, err := req.RequireString("resource")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		data, ok := req.GetArguments()["data"].(map[string]any)
		if !ok {
			return mcp.NewToolResultError("data must be a JSON object"), nil
		}

		result, err := client.Create(ctx, resource, data)
		if err != nil {
			return mcp.NewToolResultError(describeError(err)), nil
		}
		return mcp.NewToolResultText(string(result)), nil
	})

	s.AddTool(mcp.NewTool("books_update",
		mcp.WithDescription("Update fields on an existing Zoho Books record."),
		mcp.WithString("resource", mcp.Required(), mcp.Description("Books collection name")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Record id")),
		mcp.WithObject("data", mcp.Required(), mcp.Description("Fields to update as a JSON object")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		resource, err := req.RequireString("resource")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		id, err := req.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		data, ok := req.GetArguments()["data"].(map[string]any)
		if !ok {
			return mcp.NewToolResultError("data must be a JSON object"), nil
		}

		result, err := client.Update(ctx, resource, id, data)
		if err != nil {
			return mcp.NewToolResultError(describeError(err)), nil
		}
		return mcp.NewToolResultText(string(result)), nil
	})
}

package tools

import (
	"context"
	"net/url"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hllvc/zoho-mcp/internal/zoho"
)

func registerCRM(s *server.MCPServer, client ResourceClient) {
	s.AddTool(mcp.NewTool("crm_list_records",
		mcp.WithDescription("List records from a Zoho CRM module (e.g. Leads, Contacts, Deals)."),
		mcp.WithString("module", mcp.Required(), mcp.Description("CRM module API name, e.g. Leads")),
		mcp.WithNumber("page", mcp.Description("Page number, starting at 1")),
		mcp.WithNumber("per_page", mcp.Description("Records per page (max 200)")),
		mcp.WithString("sort_by", mcp.Description("Field to sort by")),
		mcp.WithString("sort_order", mcp.Description("Sort direction: ascending or descending")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		module, err := req.RequireString("module")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		result, err := client.List(ctx, module, zoho.ListOptions{
			Page:    req.GetInt("page", 0),
			PerPage: req.GetInt("per_page", 0),
			SortBy:  req.GetString("sort_by", ""),
			SortDir: req.GetString("sort_order", ""),
		})
		if err != nil {
			return mcp.NewToolResultError(describeError(err)), nil
		}
		return mcp.NewToolResultText(string(result)), nil
	})

	s.AddTool(mcp.NewTool("crm_get_record",
		mcp.WithDescription("Fetch a single Zoho CRM record by id."),
		mcp.WithString("module", mcp.Required(), mcp.Description("CRM module API name")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Record id")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		module, err := req.RequireString("module")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		id, err := req.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		result, err := client.Get(ctx, module, id)
		if err != nil {
			return mcp.NewToolResultError(describeError(err)), nil
		}
		return mcp.NewToolResultText(string(result)), nil
	})

	s.AddTool(mcp.NewTool("crm_search_records",
		mcp.WithDescription("Search a Zoho CRM module. Provide either a criteria expression like ((Last_Name:equals:Smith)) or a free-text word."),
		mcp.WithString("module", mcp.Required(), mcp.Description("CRM module API name")),
		mcp.WithString("criteria", mcp.Description("Search criteria expression")),
		mcp.WithString("word", mcp.Description("Free-text search term")),
		mcp.WithNumber("page", mcp.Description("Page number, starting at 1")),
		mcp.WithNumber("per_page", mcp.Description("Records per page (max 200)")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		module, err := req.RequireString("module")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		criteria := req.GetString("criteria", "")
		word := req.GetString("word", "")
		if criteria == "" && word == "" {
			return mcp.NewToolResultError("either criteria or word is required"), nil
		}

		opts := zoho.ListOptions{
			Page:    req.GetInt("page", 0),
			PerPage: req.GetInt("per_page", 0),
			Filters: url.Values{},
		}
		if criteria != "" {
			opts.Filters.Set("criteria", criteria)
		} else {
			opts.Filters.Set("word", word)
		}

		result, err := client.List(ctx, module+"/search", opts)
		if err != nil {
			return mcp.NewToolResultError(describeError(err)), nil
		}
		return mcp.NewToolResultText(string(result)), nil
	})

	s.AddTool(mcp.NewTool("crm_create_record",
		mcp.WithDescription("Create a record in a Zoho CRM module."),
		mcp.WithString("module", mcp.Required(), mcp.Description("CRM module API name")),
		mcp.WithObject("data", mcp.Required(), mcp.Description("Record fields as a JSON object")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		module, err := req.RequireString("module")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		data, ok := req.GetArguments()["data"].(map[string]any)
		if !ok {
			return mcp.NewToolResultError("data must be a JSON object"), nil
		}

		// CRM v2 wraps record payloads in a data array.
		result, err := client.Create(ctx, module, map[string]any{"data": []any{data}})
		if err != nil {
			return mcp.NewToolResultError(describeError(err)), nil
		}
		return mcp.NewToolResultText(string(result)), nil
	})

	s.AddTool(mcp.NewTool("crm_update_record",
		mcp.WithDescription("Update fields on an existing Zoho CRM record."),
		mcp.WithString("module", mcp.Required(), mcp.Description("CRM module API name")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Record id")),
		mcp.WithObject("data", mcp.Required(), mcp.Description("Fields to update as a JSON object")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		module, err := req.RequireString("module")
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

		result, err := client.Update(ctx, module, id, map[string]any{"data": []any{data}})
		if err != nil {
			return mcp.NewToolResultError(describeError(err)), nil
		}
		return mcp.NewToolResultText(string(result)), nil
	})
}

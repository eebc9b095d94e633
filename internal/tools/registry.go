// Package tools declares the MCP tools exposed by the bridge and maps tool
// calls onto the Zoho API clients. This layer is deliberately thin: it
// validates tool arguments, delegates to the client, and renders results as
// text payloads. It never retries and holds no state.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"

	"github.com/mark3labs/mcp-go/server"

	"github.com/hllvc/zoho-mcp/internal/auth"
	"github.com/hllvc/zoho-mcp/internal/zoho"
)

// ResourceClient is the slice of zoho.Client the tool handlers need.
type ResourceClient interface {
	List(ctx context.Context, resource string, opts zoho.ListOptions) (json.RawMessage, error)
	Get(ctx context.Context, resource, id string) (json.RawMessage, error)
	Create(ctx context.Context, resource string, body any) (json.RawMessage, error)
	Update(ctx context.Context, resource, id string, body any) (json.RawMessage, error)
	Do(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error)
}

// Compile-time check that zoho.Client satisfies ResourceClient
var _ ResourceClient = (*zoho.Client)(nil)

// Register adds the tool families for the configured clients. A nil client
// skips its family (Books tools are absent when no organization is
// configured).
func Register(s *server.MCPServer, crm, books ResourceClient) {
	if crm != nil {
		registerCRM(s, crm)
	}
	if books != nil {
		registerBooks(s, books)
	}
}

// describeError renders a client failure as a message suitable for the LLM
// caller. Auth bootstrap problems point at the authorize command instead of
// leaking a bare error chain.
func describeError(err error) string {
	if errors.Is(err, auth.ErrAuthRequired) {
		return "Zoho access is not authorized yet. Run `zohomcp authorize` to complete the one-time authorization flow."
	}

	var refreshErr *auth.RefreshError
	if errors.As(err, &refreshErr) {
		return "Zoho token refresh failed: " + refreshErr.Error() + ". If the refresh token was revoked, run `zohomcp authorize` again."
	}

	return err.Error()
}

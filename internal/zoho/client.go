package zoho

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hllvc/zoho-mcp/internal/auth"
)

// requestTimeout bounds every resource round trip. On timeout the request is
// treated like any other transport error; no partial state is retained.
const requestTimeout = 30 * time.Second

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client used for resource requests.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.http = client
	}
}

// Client issues authenticated requests against one Zoho API surface. It
// never mutates credentials; it only reads the current access token through
// the auth manager before each call.
type Client struct {
	provider Provider
	tenantID string
	tokens   *auth.Manager
	http     *http.Client
}

// NewClient creates a Client for the given provider. tenantID is required
// when the provider declares a tenant parameter and ignored otherwise.
func NewClient(provider Provider, tenantID string, tokens *auth.Manager, opts ...ClientOption) (*Client, error) {
	if tokens == nil {
		return nil, fmt.Errorf("missing token manager")
	}
	if provider.TenantParam != "" && tenantID == "" {
		return nil, fmt.Errorf("%s requires a tenant identifier (%s)", provider.Name, provider.TenantParam)
	}

	c := &Client{
		provider: provider,
		tenantID: tenantID,
		tokens:   tokens,
		http:     &http.Client{Timeout: requestTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Provider returns the provider description this client serves.
func (c *Client) Provider() Provider {
	return c.provider
}

// List fetches a page of the named resource collection.
func (c *Client) List(ctx context.Context, resource string, opts ListOptions) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodGet, resource, opts.query(c.provider), nil)
}

// Get fetches a single record by id.
func (c *Client) Get(ctx context.Context, resource, id string) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodGet, resource+"/"+url.PathEscape(id), nil, nil)
}

// Create posts a new record to the named collection.
func (c *Client) Create(ctx context.Context, resource string, body any) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPost, resource, nil, body)
}

// Update replaces fields on an existing record.
func (c *Client) Update(ctx context.Context, resource, id string, body any) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPut, resource+"/"+url.PathEscape(id), nil, body)
}

// Do issues one authenticated request and returns the raw response body on
// any 2xx status. A token-manager failure propagates as-is without touching
// the network; a non-2xx response becomes a *APIError.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	token, err := c.tokens.EnsureValid(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring access token: %w", err)
	}

	values := url.Values{}
	for key, vals := range query {
		for _, v := range vals {
			values.Add(key, v)
		}
	}
	if c.provider.TenantParam != "" {
		values.Set(c.provider.TenantParam, c.tenantID)
	}

	requestURL := c.provider.BaseURL + "/" + strings.TrimPrefix(path, "/")
	if encoded := values.Encode(); encoded != "" {
		requestURL += "?" + encoded
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", AuthScheme+" "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", c.provider.Name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", c.provider.Name, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(c.provider.Name, resp.StatusCode, data)
	}

	return json.RawMessage(data), nil
}

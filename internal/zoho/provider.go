package zoho

import (
	"fmt"
)

// AuthScheme is the Authorization header scheme Zoho requires in place of
// the standard "Bearer".
const AuthScheme = "Zoho-oauthtoken"

// apiHosts maps a Zoho data-center region to its API host. Must match the
// region of the accounts server that issued the tokens.
var apiHosts = map[string]string{
	"us": "https://www.zohoapis.com",
	"eu": "https://www.zohoapis.eu",
	"in": "https://www.zohoapis.in",
	"au": "https://www.zohoapis.com.au",
	"jp": "https://www.zohoapis.jp",
	"ca": "https://www.zohoapis.ca",
}

// Provider describes one Zoho API surface. The client is parameterized by a
// Provider instead of being copy-pasted per product.
type Provider struct {
	// Name identifies the surface in logs and errors ("crm", "books").
	Name string

	// BaseURL is the versioned API root, without a trailing slash.
	BaseURL string

	// TenantParam, when non-empty, names a query parameter that must carry
	// the tenant identifier on every call (Books scopes every request to an
	// organization; CRM derives the org from the token).
	TenantParam string

	// MaxPageSize is the provider-declared per_page ceiling. Zero means no
	// declared maximum, in which case requested sizes pass through unclamped.
	MaxPageSize int

	// SortByParam names the query parameter carrying the sort column
	// ("sort_by" for CRM, "sort_column" for Books).
	SortByParam string

	// SortAscending and SortDescending are the wire codes the provider
	// expects for sort direction.
	SortAscending  string
	SortDescending string
}

// CRM returns the provider description for Zoho CRM v2 in the given region.
func CRM(region string) (Provider, error) {
	host, ok := apiHosts[region]
	if !ok {
		return Provider{}, fmt.Errorf("unknown zoho region %q", region)
	}
	return Provider{
		Name:           "crm",
		BaseURL:        host + "/crm/v2",
		MaxPageSize:    200,
		SortByParam:    "sort_by",
		SortAscending:  "asc",
		SortDescending: "desc",
	}, nil
}

// Books returns the provider description for Zoho Books v3 in the given
// region. Every Books call must carry an organization_id parameter.
func Books(region string) (Provider, error) {
	host, ok := apiHosts[region]
	if !ok {
		return Provider{}, fmt.Errorf("unknown zoho region %q", region)
	}
	return Provider{
		Name:           "books",
		BaseURL:        host + "/books/v3",
		TenantParam:    "organization_id",
		MaxPageSize:    200,
		SortByParam:    "sort_column",
		SortAscending:  "A",
		SortDescending: "D",
	}, nil
}

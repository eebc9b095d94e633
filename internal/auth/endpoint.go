package auth

import (
	"fmt"

	"golang.org/x/oauth2"
)

// accountsHosts maps a Zoho data-center region to its accounts server, which
// hosts both the consent page and the token endpoint. Tokens are only valid
// within the data center that issued them.
var accountsHosts = map[string]string{
	"us": "https://accounts.zoho.com",
	"eu": "https://accounts.zoho.eu",
	"in": "https://accounts.zoho.in",
	"au": "https://accounts.zoho.com.au",
	"jp": "https://accounts.zoho.jp",
	"ca": "https://accounts.zohocloud.ca",
}

// Endpoint returns the OAuth2 endpoints for the given Zoho data-center
// region.
func Endpoint(region string) (oauth2.Endpoint, error) {
	host, ok := accountsHosts[region]
	if !ok {
		return oauth2.Endpoint{}, fmt.Errorf("unknown zoho region %q", region)
	}
	return oauth2.Endpoint{
		AuthURL:   host + "/oauth/v2/auth",
		TokenURL:  host + "/oauth/v2/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}, nil
}

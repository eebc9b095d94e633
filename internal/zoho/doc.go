// Package zoho provides a generic authenticated client for the Zoho REST
// APIs. One client implementation serves both the CRM and Books surfaces;
// the differences between them (base URL, tenant query parameter, page-size
// ceiling) are captured in a [Provider] value rather than duplicated client
// code.
//
// Every request first obtains a valid access token from the auth manager,
// attaches it with the Zoho-oauthtoken scheme, and maps any non-2xx response
// onto a uniform [*APIError] built from the provider's error envelope.
package zoho

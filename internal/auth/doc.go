// Package auth provides the OAuth token lifecycle for the Zoho APIs.
//
// Zoho issues a long-lived refresh token once, via the interactive
// authorization-code grant ([GrantFlow]), and short-lived access tokens on
// demand. [Manager] owns the in-memory credential state: it hands out the
// cached access token while it is fresh and lazily exchanges the refresh
// token at the accounts-server token endpoint when it is not, persisting the
// result through a [credential.Store].
//
// Concurrent callers share a single in-flight refresh; a refresh failure
// leaves the previous in-memory state untouched.
package auth

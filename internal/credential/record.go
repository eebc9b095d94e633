package credential

import (
	"time"
)

// Record is the durable OAuth credential state for a single tenant.
//
// RefreshToken is long-lived and obtained once via the grant flow. The access
// token is derived and always replaceable; it is only usable while ExpiresAt
// lies in the future. ExpiresAt already includes the safety buffer subtracted
// from the provider-declared TTL.
type Record struct {
	RefreshToken string    `json:"refresh_token"`
	AccessToken  string    `json:"access_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitzero"`
	CreatedAt    time.Time `json:"created_at"`
}

// TokenValid reports whether the cached access token can still be used at
// the given instant. Valid iff the token and its expiry are both present and
// the expiry has not passed.
func (r *Record) TokenValid(now time.Time) bool {
	return r.AccessToken != "" && !r.ExpiresAt.IsZero() && now.Before(r.ExpiresAt)
}

// HasRefreshToken reports whether a refresh token is available. Without one,
// no valid access token can ever be produced.
func (r *Record) HasRefreshToken() bool {
	return r.RefreshToken != ""
}

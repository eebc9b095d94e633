package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/hllvc/zoho-mcp/internal/credential"
)

// GrantFlow performs the one-shot authorization-code exchange that bootstraps
// the refresh token. It is not part of steady-state operation: it runs once
// per authorization, writes the initial credential record through the store,
// and hands the record to whoever needs to pick it up (see
// Manager.SetCredential).
type GrantFlow struct {
	cfg   *oauth2.Config
	store credential.Store
	state string
}

// NewGrantFlow creates a GrantFlow with a fresh random state parameter.
func NewGrantFlow(cfg *oauth2.Config, store credential.Store) *GrantFlow {
	return &GrantFlow{
		cfg:   cfg,
		store: store,
		state: uuid.NewString(),
	}
}

// AuthorizationURL returns the provider consent URL. Pure function of the
// configured client id, redirect URI, and scopes; access_type=offline and
// prompt=consent are required for Zoho to issue a refresh token.
func (g *GrantFlow) AuthorizationURL() string {
	return g.cfg.AuthCodeURL(g.state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// VerifyState reports whether the state echoed back by the callback matches
// the one embedded in the authorization URL.
func (g *GrantFlow) VerifyState(state string) bool {
	return state != "" && state == g.state
}

// Exchange trades the one-time authorization code for the initial
// refresh/access token pair and persists the resulting record.
//
// Authorization codes are single-use and short-lived, so nothing here is
// retried: a rejected code means the user must restart the flow. Unlike the
// steady-state refresh path, a store failure is fatal — losing the initial
// refresh token would strand the process unauthorized with no recovery.
func (g *GrantFlow) Exchange(ctx context.Context, code string) (*credential.Record, error) {
	if code == "" {
		return nil, fmt.Errorf("missing authorization code")
	}

	token, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, asRefreshError(err)
	}
	if token.RefreshToken == "" {
		return nil, fmt.Errorf("token response carried no refresh token (is access_type=offline set?)")
	}

	record := &credential.Record{
		RefreshToken: token.RefreshToken,
		AccessToken:  token.AccessToken,
		TokenType:    token.TokenType,
		CreatedAt:    time.Now(),
	}
	if !token.Expiry.IsZero() {
		record.ExpiresAt = token.Expiry.Add(-ExpiryBuffer)
	}

	if err := g.store.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("persisting initial credential: %w", err)
	}

	return record, nil
}

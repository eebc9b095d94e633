package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/hllvc/zoho-mcp/internal/credential"
)

// ExpiryBuffer is subtracted from the provider-declared token TTL so a token
// is refreshed before it can expire mid-request. Absorbs clock skew and
// in-flight latency.
const ExpiryBuffer = 5 * time.Minute

// refreshTimeout bounds the token-endpoint round trip.
const refreshTimeout = 30 * time.Second

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithHTTPClient sets the HTTP client used for token-endpoint requests.
// If not provided, a client with a 30s timeout is used.
func WithHTTPClient(client *http.Client) ManagerOption {
	return func(m *Manager) {
		m.client = client
	}
}

// Manager owns the in-memory credential state and produces valid access
// tokens on demand. It is the only writer of the in-memory copy; the durable
// copy is owned by the credential.Store it persists through.
type Manager struct {
	cfg    *oauth2.Config
	store  credential.Store
	client *http.Client

	mu        sync.Mutex
	refresh   string
	access    string
	tokenType string
	expiresAt time.Time
	createdAt time.Time

	group singleflight.Group
}

// NewManager creates a Manager, warming its in-memory state from the store.
// A missing or malformed stored record is not fatal; the manager simply
// starts unconfigured and EnsureValid reports ErrAuthRequired until the
// grant flow completes.
func NewManager(ctx context.Context, cfg *oauth2.Config, store credential.Store, opts ...ManagerOption) (*Manager, error) {
	if cfg == nil {
		return nil, errors.New("missing oauth2 config")
	}
	if store == nil {
		return nil, errors.New("missing credential store")
	}

	m := &Manager{
		cfg:    cfg,
		store:  store,
		client: &http.Client{Timeout: refreshTimeout},
	}
	for _, opt := range opts {
		opt(m)
	}

	record, err := store.Load(ctx)
	switch {
	case err == nil:
		m.setRecordLocked(record)
	case errors.Is(err, credential.ErrNotFound):
		// Bootstrap flow has not run yet; flagged via HasCredential.
	default:
		return nil, err
	}

	return m, nil
}

// HasCredential reports whether a refresh token is available, i.e. whether
// the one-time grant flow has been completed.
func (m *Manager) HasCredential() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refresh != ""
}

// SetCredential replaces the in-memory credential state wholesale. Called by
// the grant flow after a successful code exchange so the manager picks up
// the new refresh token without a restart.
func (m *Manager) SetCredential(record *credential.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setRecordLocked(record)
}

func (m *Manager) setRecordLocked(record *credential.Record) {
	m.refresh = record.RefreshToken
	m.access = record.AccessToken
	m.tokenType = record.TokenType
	m.expiresAt = record.ExpiresAt
	m.createdAt = record.CreatedAt
}

// EnsureValid returns a usable access token.
//
// The fast path returns the cached token without any I/O while it is still
// inside its validity window. Otherwise the refresh token is exchanged at
// the token endpoint; concurrent callers share one in-flight exchange.
// Returns ErrAuthRequired when no refresh token exists, or a *RefreshError
// when the exchange fails — in which case the previous in-memory state is
// left untouched.
func (m *Manager) EnsureValid(ctx context.Context) (string, error) {
	m.mu.Lock()
	if m.tokenValidLocked(time.Now()) {
		token := m.access
		m.mu.Unlock()
		return token, nil
	}
	refresh := m.refresh
	m.mu.Unlock()

	if refresh == "" {
		return "", ErrAuthRequired
	}

	// Collapse concurrent refreshes into one token-endpoint call. All waiters
	// receive the same token (or the same error).
	token, err, _ := m.group.Do("refresh", func() (any, error) {
		return m.refreshAccessToken(ctx)
	})
	if err != nil {
		return "", err
	}
	return token.(string), nil
}

func (m *Manager) tokenValidLocked(now time.Time) bool {
	return m.access != "" && !m.expiresAt.IsZero() && now.Before(m.expiresAt)
}

// refreshAccessToken performs one refresh round trip and updates in-memory
// and durable state. Persistence is best-effort: the fresh token is usable
// for the current process lifetime even if the write fails.
func (m *Manager) refreshAccessToken(ctx context.Context) (string, error) {
	// A waiter that lost the fast-path race may land here right after another
	// call already refreshed; serve the now-fresh token instead of hitting
	// the endpoint again.
	m.mu.Lock()
	if m.tokenValidLocked(time.Now()) {
		token := m.access
		m.mu.Unlock()
		return token, nil
	}
	refresh := m.refresh
	m.mu.Unlock()

	tokenCtx := context.WithValue(ctx, oauth2.HTTPClient, m.client)
	token, err := m.cfg.TokenSource(tokenCtx, &oauth2.Token{RefreshToken: refresh}).Token()
	if err != nil {
		return "", asRefreshError(err)
	}

	record := m.commit(token)

	if err := m.store.Save(ctx, record); err != nil {
		// Non-fatal: the in-memory token remains valid for this process.
		slog.ErrorContext(ctx, "failed to persist refreshed credential", "error", err)
	}

	slog.DebugContext(ctx, "access token refreshed", "expires_at", record.ExpiresAt)

	return token.AccessToken, nil
}

// commit replaces the in-memory state from a successful token response and
// returns the record to persist. The refresh token is carried forward when
// the provider does not rotate it.
func (m *Manager) commit(token *oauth2.Token) *credential.Record {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.access = token.AccessToken
	if token.TokenType != "" {
		m.tokenType = token.TokenType
	}
	if token.RefreshToken != "" {
		m.refresh = token.RefreshToken
	}
	if token.Expiry.IsZero() {
		m.expiresAt = time.Time{}
	} else {
		m.expiresAt = token.Expiry.Add(-ExpiryBuffer)
	}
	if m.createdAt.IsZero() {
		m.createdAt = time.Now()
	}

	return &credential.Record{
		RefreshToken: m.refresh,
		AccessToken:  m.access,
		TokenType:    m.tokenType,
		ExpiresAt:    m.expiresAt,
		CreatedAt:    m.createdAt,
	}
}

// asRefreshError maps an x/oauth2 retrieval failure onto *RefreshError,
// preserving the upstream status and error code so callers can distinguish a
// revoked refresh token from a transient outage.
func asRefreshError(err error) *RefreshError {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		refreshErr := &RefreshError{
			Code: retrieveErr.ErrorCode,
			Err:  err,
		}
		if retrieveErr.Response != nil {
			refreshErr.StatusCode = retrieveErr.Response.StatusCode
		}
		if retrieveErr.ErrorDescription != "" {
			refreshErr.Message = retrieveErr.ErrorDescription
		} else {
			refreshErr.Message = strings.TrimSpace(string(retrieveErr.Body))
		}
		return refreshErr
	}
	return &RefreshError{Err: err}
}

package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/hllvc/zoho-mcp/internal/credential"
)

// fakeStore is an in-memory credential.Store with injectable save failures.
type fakeStore struct {
	mu      sync.Mutex
	record  *credential.Record
	saveErr error
	saves   int
}

func (f *fakeStore) Load(ctx context.Context) (*credential.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.record == nil {
		return nil, credential.ErrNotFound
	}
	record := *f.record
	return &record, nil
}

func (f *fakeStore) Save(ctx context.Context, record *credential.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	saved := *record
	f.record = &saved
	return nil
}

func (f *fakeStore) saved() *credential.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.record
}

// tokenEndpoint is a fake provider token endpoint counting its hits.
type tokenEndpoint struct {
	server *httptest.Server
	hits   atomic.Int64
	status atomic.Int64
	body   atomic.Value // string
	delay  time.Duration
}

func newTokenEndpoint(t *testing.T) *tokenEndpoint {
	t.Helper()
	e := &tokenEndpoint{}
	e.status.Store(http.StatusOK)
	e.body.Store(`{"access_token":"tok1","token_type":"Bearer","expires_in":3600}`)
	e.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e.hits.Add(1)
		if e.delay > 0 {
			time.Sleep(e.delay)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(int(e.status.Load()))
		_, _ = w.Write([]byte(e.body.Load().(string)))
	}))
	t.Cleanup(e.server.Close)
	return e
}

func (e *tokenEndpoint) config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Endpoint: oauth2.Endpoint{
			AuthURL:   e.server.URL + "/oauth/v2/auth",
			TokenURL:  e.server.URL + "/oauth/v2/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

func TestEnsureValidFastPathSkipsNetwork(t *testing.T) {
	endpoint := newTokenEndpoint(t)
	store := &fakeStore{record: &credential.Record{
		RefreshToken: "refresh-1",
		AccessToken:  "cached",
		ExpiresAt:    time.Now().Add(30 * time.Minute),
	}}

	manager, err := NewManager(t.Context(), endpoint.config(), store)
	require.NoError(t, err)

	token, err := manager.EnsureValid(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "cached", token)
	assert.EqualValues(t, 0, endpoint.hits.Load())
}

func TestEnsureValidExpiredTokenRefreshesOnce(t *testing.T) {
	endpoint := newTokenEndpoint(t)
	store := &fakeStore{record: &credential.Record{
		RefreshToken: "refresh-1",
		AccessToken:  "stale",
		ExpiresAt:    time.Now().Add(-time.Minute),
	}}

	manager, err := NewManager(t.Context(), endpoint.config(), store)
	require.NoError(t, err)

	before := time.Now()
	token, err := manager.EnsureValid(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "tok1", token)
	assert.EqualValues(t, 1, endpoint.hits.Load())

	// expires_at = now + ttl - 5m buffer
	saved := store.saved()
	require.NotNil(t, saved)
	assert.Equal(t, "tok1", saved.AccessToken)
	assert.Equal(t, "refresh-1", saved.RefreshToken)
	wantExpiry := before.Add(3600*time.Second - ExpiryBuffer)
	assert.WithinDuration(t, wantExpiry, saved.ExpiresAt, 5*time.Second)

	// Second call rides the fresh token without another round trip.
	token, err = manager.EnsureValid(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "tok1", token)
	assert.EqualValues(t, 1, endpoint.hits.Load())
}

func TestEnsureValidAbsentExpiryTriggersRefresh(t *testing.T) {
	endpoint := newTokenEndpoint(t)
	store := &fakeStore{record: &credential.Record{
		RefreshToken: "refresh-1",
		AccessToken:  "stale",
	}}

	manager, err := NewManager(t.Context(), endpoint.config(), store)
	require.NoError(t, err)

	token, err := manager.EnsureValid(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "tok1", token)
	assert.EqualValues(t, 1, endpoint.hits.Load())
}

func TestEnsureValidWithoutRefreshTokenFailsTerminally(t *testing.T) {
	endpoint := newTokenEndpoint(t)
	store := &fakeStore{}

	manager, err := NewManager(t.Context(), endpoint.config(), store)
	require.NoError(t, err)
	assert.False(t, manager.HasCredential())

	_, err = manager.EnsureValid(t.Context())
	assert.ErrorIs(t, err, ErrAuthRequired)
	assert.EqualValues(t, 0, endpoint.hits.Load())
}

func TestEnsureValidRefreshRejectedPreservesState(t *testing.T) {
	endpoint := newTokenEndpoint(t)
	endpoint.status.Store(http.StatusUnauthorized)
	endpoint.body.Store(`{"error":"invalid_client","error_description":"client auth failed"}`)

	store := &fakeStore{record: &credential.Record{
		RefreshToken: "refresh-1",
		AccessToken:  "stale",
		ExpiresAt:    time.Now().Add(-time.Minute),
	}}

	manager, err := NewManager(t.Context(), endpoint.config(), store)
	require.NoError(t, err)

	_, err = manager.EnsureValid(t.Context())
	var refreshErr *RefreshError
	require.ErrorAs(t, err, &refreshErr)
	assert.Equal(t, http.StatusUnauthorized, refreshErr.StatusCode)
	assert.Equal(t, "invalid_client", refreshErr.Code)

	// No corruption: the refresh token survives and a recovered endpoint
	// serves a fresh token on the next call.
	assert.True(t, manager.HasCredential())
	assert.Equal(t, 0, store.saves)

	endpoint.status.Store(http.StatusOK)
	endpoint.body.Store(`{"access_token":"tok1","token_type":"Bearer","expires_in":3600}`)
	token, err := manager.EnsureValid(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "tok1", token)
}

func TestEnsureValidPersistFailureIsNonFatal(t *testing.T) {
	endpoint := newTokenEndpoint(t)
	store := &fakeStore{
		record: &credential.Record{
			RefreshToken: "refresh-1",
		},
		saveErr: assert.AnError,
	}

	manager, err := NewManager(t.Context(), endpoint.config(), store)
	require.NoError(t, err)

	token, err := manager.EnsureValid(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "tok1", token)
	assert.Equal(t, 1, store.saves)
}

func TestEnsureValidConcurrentCallersShareOneRefresh(t *testing.T) {
	endpoint := newTokenEndpoint(t)
	endpoint.delay = 100 * time.Millisecond
	store := &fakeStore{record: &credential.Record{
		RefreshToken: "refresh-1",
	}}

	manager, err := NewManager(t.Context(), endpoint.config(), store)
	require.NoError(t, err)

	const callers = 8
	tokens := make([]string, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tokens[i], errs[i] = manager.EnsureValid(t.Context())
		}()
	}
	wg.Wait()

	for i := range callers {
		require.NoError(t, errs[i])
		assert.Equal(t, "tok1", tokens[i])
	}
	assert.EqualValues(t, 1, endpoint.hits.Load())
}

func TestEnsureValidKeepsRotatedRefreshToken(t *testing.T) {
	endpoint := newTokenEndpoint(t)
	endpoint.body.Store(`{"access_token":"tok1","refresh_token":"refresh-2","token_type":"Bearer","expires_in":3600}`)
	store := &fakeStore{record: &credential.Record{
		RefreshToken: "refresh-1",
	}}

	manager, err := NewManager(t.Context(), endpoint.config(), store)
	require.NoError(t, err)

	_, err = manager.EnsureValid(t.Context())
	require.NoError(t, err)

	saved := store.saved()
	require.NotNil(t, saved)
	assert.Equal(t, "refresh-2", saved.RefreshToken)
}

package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hllvc/zoho-mcp/internal/credential"
)

// fakeExchanger scripts the grant-flow outcome for callback tests.
type fakeExchanger struct {
	state     string
	record    *credential.Record
	err       error
	gotCode   string
	exchanged bool
}

func (f *fakeExchanger) VerifyState(state string) bool {
	return state == f.state
}

func (f *fakeExchanger) Exchange(ctx context.Context, code string) (*credential.Record, error) {
	f.exchanged = true
	f.gotCode = code
	if f.err != nil {
		return nil, f.err
	}
	return f.record, nil
}

func newTestServer(t *testing.T, flow Exchanger, onCredential func(*credential.Record), authorized func() bool) *Server {
	t.Helper()
	srv, err := New(flow, onCredential, authorized)
	require.NoError(t, err)
	return srv
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &fakeExchanger{}, nil, func() bool { return true })

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","authorized":true}`, rec.Body.String())
}

func TestCallbackSuccess(t *testing.T) {
	flow := &fakeExchanger{
		state:  "state-1",
		record: &credential.Record{RefreshToken: "refresh-1"},
	}

	var got *credential.Record
	srv := newTestServer(t, flow, func(record *credential.Record) { got = record }, nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/oauth/callback?code=grant-code&state=state-1", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "grant-code", flow.gotCode)
	require.NotNil(t, got)
	assert.Equal(t, "refresh-1", got.RefreshToken)
	assert.Contains(t, rec.Body.String(), "Authorization complete")
}

func TestCallbackProviderError(t *testing.T) {
	flow := &fakeExchanger{state: "state-1"}
	srv := newTestServer(t, flow, nil, nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/oauth/callback?error=access_denied", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "access_denied")
	assert.False(t, flow.exchanged)
}

func TestCallbackStateMismatch(t *testing.T) {
	flow := &fakeExchanger{state: "state-1"}
	srv := newTestServer(t, flow, nil, nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/oauth/callback?code=grant-code&state=forged", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, flow.exchanged)
}

func TestCallbackMissingCode(t *testing.T) {
	flow := &fakeExchanger{state: "state-1"}
	srv := newTestServer(t, flow, nil, nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/oauth/callback?state=state-1", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, flow.exchanged)
}

func TestCallbackExchangeFailure(t *testing.T) {
	flow := &fakeExchanger{state: "state-1", err: assert.AnError}
	srv := newTestServer(t, flow, nil, nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/oauth/callback?code=grant-code&state=state-1", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

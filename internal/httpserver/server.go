// Package httpserver serves the small HTTP surface next to the MCP
// transport: a health endpoint and the OAuth authorization callback.
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/hllvc/zoho-mcp/internal/credential"
)

// Exchanger completes the authorization-grant flow for an inbound callback.
// Implemented by auth.GrantFlow.
type Exchanger interface {
	VerifyState(state string) bool
	Exchange(ctx context.Context, code string) (*credential.Record, error)
}

// Server hosts the health and OAuth-callback routes.
type Server struct {
	mux    *http.ServeMux
	server *http.Server

	flow         Exchanger
	onCredential func(*credential.Record)
	authorized   func() bool
}

// Compile-time check that Server implements http.Handler
var _ http.Handler = (*Server)(nil)

// New creates the server. onCredential is invoked after a successful code
// exchange so the token manager can pick up the new credential without a
// restart; authorized feeds the health endpoint.
func New(flow Exchanger, onCredential func(*credential.Record), authorized func() bool) (*Server, error) {
	if flow == nil {
		return nil, fmt.Errorf("missing grant flow")
	}

	s := &Server{
		flow:         flow,
		onCredential: onCredential,
		authorized:   authorized,
	}

	logger := slog.Default()

	mux := http.NewServeMux()
	mux.Handle("GET /health", applyMiddlewares(http.HandlerFunc(s.handleHealth),
		Logging(logger),
		Recovery,
	))
	mux.Handle("GET /oauth/callback", applyMiddlewares(http.HandlerFunc(s.handleCallback),
		Logging(logger),
		Recovery,
	))
	s.mux = mux

	return s, nil
}

// ServeHTTP implements http.Handler interface
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":     "ok",
		"authorized": s.authorized != nil && s.authorized(),
	})
}

// handleCallback terminates the one-shot grant flow. Authorization codes are
// single-use, so every failure here is terminal for this attempt; the user
// restarts from the consent URL.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if providerErr := query.Get("error"); providerErr != "" {
		statusPage(w, http.StatusBadRequest, "Authorization failed", providerErr)
		return
	}

	if !s.flow.VerifyState(query.Get("state")) {
		statusPage(w, http.StatusBadRequest, "Authorization failed", "state parameter mismatch")
		return
	}

	code := query.Get("code")
	if code == "" {
		statusPage(w, http.StatusBadRequest, "Authorization failed", "missing authorization code")
		return
	}

	record, err := s.flow.Exchange(r.Context(), code)
	if err != nil {
		slog.ErrorContext(r.Context(), "authorization code exchange failed", "error", err)
		statusPage(w, http.StatusBadGateway, "Authorization failed", err.Error())
		return
	}

	if s.onCredential != nil {
		s.onCredential(record)
	}

	slog.InfoContext(r.Context(), "authorization completed")
	statusPage(w, http.StatusOK, "Authorization complete", "You can close this window.")
}

func statusPage(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, "<!doctype html><html><body><h1>%s</h1><p>%s</p></body></html>\n",
		html.EscapeString(title), html.EscapeString(detail))
}

// Start starts the HTTP server in the background and returns immediately.
// Returns a channel for runtime errors and a startup error if any.
//
// Startup errors (port in use, permission denied) are returned immediately.
// Runtime errors (network failures during operation) are sent to the error channel.
//
// The caller is responsible for calling Shutdown() to stop the server.
func (s *Server) Start(ctx context.Context, address string) (<-chan error, error) {
	// Startup phase: Create listener synchronously to catch port-in-use errors immediately
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	s.server = &http.Server{
		Handler:      s,
		ReadTimeout:  30 * time.Second, // Read entire client request (DoS protection against slow clients)
		WriteTimeout: 30 * time.Second, // Responses are small status pages and JSON
		IdleTimeout:  90 * time.Second, // Keep-alive wait for next request from client
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)

	go func() {
		err := s.server.Serve(listener)
		// Only report error if not from graceful shutdown
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	return errCh, nil
}

// Shutdown performs graceful shutdown of the HTTP server.
// Returns error if shutdown fails or times out.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	if err := s.server.Shutdown(ctx); err != nil {
		// Graceful shutdown failed - force close
		_ = s.server.Close()
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	return nil
}

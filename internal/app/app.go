// Package app wires configuration, the token lifecycle, the API clients,
// and the serving surfaces into one process.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"github.com/hllvc/zoho-mcp/internal/auth"
	"github.com/hllvc/zoho-mcp/internal/httpserver"
	"github.com/hllvc/zoho-mcp/internal/tools"
	"github.com/hllvc/zoho-mcp/internal/zoho"
)

// Name and Version identify the MCP server to clients.
const (
	Name    = "zoho-mcp"
	Version = "0.3.0"
)

// App orchestrates the lifecycle of the MCP server, the callback HTTP
// server, and the token lifecycle manager behind them.
type App struct {
	cfg     *Config
	manager *auth.Manager
	httpSrv *httpserver.Server
	mcpSrv  *server.MCPServer

	stdin  io.Reader
	stdout io.Writer
}

// New creates a new App instance. The credential store is read once here to
// warm the token manager; a missing credential is not fatal (the health
// endpoint and tool errors surface it until authorize is run).
func New(ctx context.Context, cfg *Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Zoho.ClientSecret == "" {
		return nil, errors.New("zoho.client_secret is required to refresh tokens")
	}

	oauthCfg, err := cfg.Zoho.OAuthConfig()
	if err != nil {
		return nil, err
	}

	store, err := cfg.Auth.NewStore()
	if err != nil {
		return nil, fmt.Errorf("failed to create credential store: %w", err)
	}

	manager, err := auth.NewManager(ctx, oauthCfg, store)
	if err != nil {
		return nil, fmt.Errorf("failed to create token manager: %w", err)
	}

	flow := auth.NewGrantFlow(oauthCfg, store)

	httpSrv, err := httpserver.New(flow, manager.SetCredential, manager.HasCredential)
	if err != nil {
		return nil, fmt.Errorf("failed to create http server: %w", err)
	}

	crmProvider, err := zoho.CRM(cfg.Zoho.Region)
	if err != nil {
		return nil, err
	}
	crmClient, err := zoho.NewClient(crmProvider, "", manager)
	if err != nil {
		return nil, fmt.Errorf("failed to create crm client: %w", err)
	}

	var booksClient *zoho.Client
	if cfg.Zoho.BooksOrganizationID != "" {
		booksProvider, err := zoho.Books(cfg.Zoho.Region)
		if err != nil {
			return nil, err
		}
		booksClient, err = zoho.NewClient(booksProvider, cfg.Zoho.BooksOrganizationID, manager)
		if err != nil {
			return nil, fmt.Errorf("failed to create books client: %w", err)
		}
	}

	mcpSrv := server.NewMCPServer(Name, Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	if booksClient != nil {
		tools.Register(mcpSrv, crmClient, booksClient)
	} else {
		tools.Register(mcpSrv, crmClient, nil)
	}

	return &App{
		cfg:     cfg,
		manager: manager,
		httpSrv: httpSrv,
		mcpSrv:  mcpSrv,
		stdin:   os.Stdin,
		stdout:  os.Stdout,
	}, nil
}

// Start starts all services and blocks until shutdown is triggered.
// Uses errgroup for runtime error monitoring and shutdown function collection for coordinated cleanup.
func (a *App) Start(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	address := a.cfg.Server.Address()
	var shutdownFuncs []func(context.Context) error

	if !a.manager.HasCredential() {
		slog.WarnContext(gCtx, "no stored credential; tool calls will fail until authorize is run")
	}

	// Startup phase: Start services
	slog.InfoContext(gCtx, "starting callback server", "address", address)
	httpErrCh, err := a.httpSrv.Start(gCtx, address)
	if err != nil {
		return fmt.Errorf("http server startup failed: %w", err)
	}
	shutdownFuncs = append(shutdownFuncs, a.httpSrv.Shutdown)

	// Monitor runtime errors - errgroup cancels context on first error
	g.Go(func() error {
		select {
		case err := <-httpErrCh:
			if err != nil {
				slog.ErrorContext(gCtx, "http server runtime error", "error", err)
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		case <-gCtx.Done():
			return nil
		}
	})

	// MCP stdio transport; returns when the client closes stdin or gCtx is
	// canceled.
	g.Go(func() error {
		stdio := server.NewStdioServer(a.mcpSrv)
		if err := stdio.Listen(gCtx, a.stdin, a.stdout); err != nil && !errors.Is(err, context.Canceled) {
			slog.ErrorContext(gCtx, "mcp stdio transport error", "error", err)
			return fmt.Errorf("mcp: %w", err)
		}
		return nil
	})

	slog.InfoContext(gCtx, "application ready", "address", address)

	runtimeErr := g.Wait()

	slog.InfoContext(gCtx, "shutting down services")

	// Shutdown phase: Stop all services
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Shutdown.Timeout)
	defer cancel()

	var errs []error
	if runtimeErr != nil {
		errs = append(errs, fmt.Errorf("runtime: %w", runtimeErr))
	}

	for i := len(shutdownFuncs) - 1; i >= 0; i-- {
		if err := shutdownFuncs[i](shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "service shutdown failed", "error", err)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	slog.Info("application stopped")
	return nil
}

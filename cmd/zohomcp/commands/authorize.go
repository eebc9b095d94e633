package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hllvc/zoho-mcp/internal/app"
	"github.com/hllvc/zoho-mcp/internal/auth"
	"github.com/hllvc/zoho-mcp/internal/credential"
	"github.com/hllvc/zoho-mcp/internal/httpserver"
	"github.com/hllvc/zoho-mcp/internal/observability"
)

func authorizeCommand() *cli.Command {
	return &cli.Command{
		Name:  "authorize",
		Usage: "run the one-time authorization flow to obtain a refresh token",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "zoho--region",
				Usage: "zoho data-center region (us|eu|in|au|jp|ca)",
				Value: app.DefaultConfigZohoRegion,
			},
			&cli.StringFlag{
				Name:  "zoho--client-id",
				Usage: "zoho OAuth client id",
			},
		},
		Action: authorizeAction,
	}
}

func authorizeAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd.String("config"), cmd, os.Environ)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	shutdownLogs, err := observability.Instrument(ctx, cfg.LogLevel, string(cfg.LogFormat), string(cfg.LogExport))
	if err != nil {
		return fmt.Errorf("failed to set up observability layer: %w", err)
	}
	defer func() { _ = shutdownLogs(context.Background()) }()

	if cfg.Zoho.ClientSecret == "" {
		secret, err := promptSecret("Zoho OAuth client secret: ")
		if err != nil {
			return err
		}
		cfg.Zoho.ClientSecret = secret
	}
	if cfg.Zoho.ClientSecret == "" {
		return errors.New("zoho.client_secret is required")
	}

	oauthCfg, err := cfg.Zoho.OAuthConfig()
	if err != nil {
		return err
	}

	store, err := cfg.Auth.NewStore()
	if err != nil {
		return fmt.Errorf("failed to create credential store: %w", err)
	}

	flow := auth.NewGrantFlow(oauthCfg, store)

	done := make(chan *credential.Record, 1)
	srv, err := httpserver.New(flow, func(record *credential.Record) {
		done <- record
	}, func() bool { return false })
	if err != nil {
		return err
	}

	address := cfg.Server.Address()
	errCh, err := srv.Start(ctx, address)
	if err != nil {
		return fmt.Errorf("callback server startup failed: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	fmt.Fprintln(os.Stderr, "Open the following URL in a browser and grant access:")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "  "+flow.AuthorizationURL())
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Waiting for the callback on "+address+" ...")

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("callback server: %w", err)
		}
		return errors.New("callback server stopped before authorization completed")
	case record := <-done:
		slog.InfoContext(ctx, "authorization complete", "expires_at", record.ExpiresAt)
		fmt.Fprintln(os.Stderr, "Authorization complete. Credential saved; you can start `zohomcp serve` now.")
		return nil
	}
}

// promptSecret reads a secret from the terminal without echo. Returns empty
// (not an error) when stdin is not a terminal so non-interactive runs fall
// through to the config requirement error.
func promptSecret(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", nil
	}

	fmt.Fprint(os.Stderr, prompt)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading secret: %w", err)
	}
	return string(secret), nil
}

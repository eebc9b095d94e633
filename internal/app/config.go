package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/oauth2"

	"github.com/hllvc/zoho-mcp/internal/auth"
	"github.com/hllvc/zoho-mcp/internal/credential"
)

// LogFormat represents the logging output format.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// LogExport selects an optional OpenTelemetry log exporter.
type LogExport string

const (
	LogExportNone     LogExport = ""
	LogExportOTLPHTTP LogExport = "otlp-http"
	LogExportOTLPGRPC LogExport = "otlp-grpc"
	LogExportStdout   LogExport = "stdout"
)

// CredentialStorageType represents the storage backends for the credential record.
type CredentialStorageType string

const (
	CredentialStorageTypeFile    CredentialStorageType = "file"
	CredentialStorageTypeKeyring CredentialStorageType = "keyring"
)

// Default configuration values
const (
	DefaultConfigLogFormat       = LogFormatText
	DefaultConfigServerHost      = "127.0.0.1"
	DefaultConfigServerPort      = 8414
	DefaultConfigShutdownTimeout = 5 * time.Second
	DefaultConfigAuthStorage     = CredentialStorageTypeFile
	DefaultConfigZohoRegion      = "us"
)

// DefaultConfigZohoScopes covers the CRM and Books surfaces the tool layer
// exposes.
var DefaultConfigZohoScopes = []string{
	"ZohoCRM.modules.ALL",
	"ZohoCRM.settings.READ",
	"ZohoBooks.fullaccess.all",
}

const keyringService = "zoho-mcp"

// ServerConfig holds the health/callback listener configuration.
type ServerConfig struct {
	Host string `json:"host" validate:"hostname_rfc1123|ip"`
	Port uint16 `json:"port"` // Port range 0-65535 handled by uint16 type
}

// Address returns the host:port listen address.
func (s ServerConfig) Address() string {
	return s.Host + ":" + strconv.FormatUint(uint64(s.Port), 10)
}

// ShutdownConfig holds shutdown behavior configuration.
type ShutdownConfig struct {
	// Timeout for graceful shutdown.
	Timeout time.Duration `json:"timeout"`
}

// ZohoConfig identifies the OAuth client and the data center that both the
// accounts server and the API hosts derive from.
type ZohoConfig struct {
	Region       string   `json:"region" validate:"required,oneof=us eu in au jp ca"`
	ClientID     string   `json:"client_id" validate:"required"`
	ClientSecret string   `json:"client_secret"` // may be prompted interactively by authorize
	RedirectURI  string   `json:"redirect_uri" validate:"required,url"`
	Scopes       []string `json:"scopes" validate:"required,min=1"`

	// BooksOrganizationID scopes every Books call to one organization. When
	// empty the Books tools are not registered.
	BooksOrganizationID string `json:"books_organization_id"`
}

// OAuthConfig builds the oauth2 client configuration for the configured
// region.
func (z *ZohoConfig) OAuthConfig() (*oauth2.Config, error) {
	endpoint, err := auth.Endpoint(z.Region)
	if err != nil {
		return nil, err
	}
	return &oauth2.Config{
		ClientID:     z.ClientID,
		ClientSecret: z.ClientSecret,
		RedirectURL:  z.RedirectURI,
		Scopes:       z.Scopes,
		Endpoint:     endpoint,
	}, nil
}

// AuthConfig describes where the credential record is persisted.
type AuthConfig struct {
	Storage CredentialStorageType `json:"storage" validate:"required,oneof=file keyring"`

	// Storage-specific settings (mutually exclusive based on Storage type)
	File        string `json:"file,omitempty"`         // For file storage: path to credential file
	KeyringUser string `json:"keyring_user,omitempty"` // For keyring storage: user identifier
}

// NewStore creates a credential.Store from the authentication configuration.
func (a *AuthConfig) NewStore() (credential.Store, error) {
	switch a.Storage {
	case CredentialStorageTypeFile:
		return credential.NewFileStore(a.File)
	case CredentialStorageTypeKeyring:
		return credential.NewKeyringStore(keyringService, a.KeyringUser)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", a.Storage)
	}
}

// Config holds the application's configuration.
type Config struct {
	// LogLevel for logging output (defaults to Info if unset).
	LogLevel  slog.Level     `json:"log_level"`
	LogFormat LogFormat      `json:"log_format" validate:"oneof=text json"`
	LogExport LogExport      `json:"log_export" validate:"omitempty,oneof=otlp-http otlp-grpc stdout"`
	Server    ServerConfig   `json:"server"`
	Shutdown  ShutdownConfig `json:"shutdown"`
	Zoho      ZohoConfig     `json:"zoho"`
	Auth      AuthConfig     `json:"auth"`
}

// Default creates a new Config with default values applied.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	return cfg, nil
}

// ApplyDefaults fills unset config fields with sensible defaults.
func (c *Config) ApplyDefaults() error {
	if c.LogFormat == "" {
		c.LogFormat = DefaultConfigLogFormat
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultConfigServerHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultConfigServerPort
	}
	if c.Shutdown.Timeout == 0 {
		c.Shutdown.Timeout = DefaultConfigShutdownTimeout
	}
	if c.Zoho.Region == "" {
		c.Zoho.Region = DefaultConfigZohoRegion
	}
	if len(c.Zoho.Scopes) == 0 {
		c.Zoho.Scopes = DefaultConfigZohoScopes
	}
	if c.Zoho.RedirectURI == "" {
		c.Zoho.RedirectURI = "http://" + c.Server.Address() + "/oauth/callback"
	}
	if c.Auth.Storage == "" {
		c.Auth.Storage = DefaultConfigAuthStorage
	}

	// Dynamic defaults based on storage type
	switch c.Auth.Storage {
	case CredentialStorageTypeFile:
		if c.Auth.File == "" {
			configDir, err := os.UserConfigDir()
			if err != nil {
				return fmt.Errorf("auth.file required (auto-detect failed: %w)", err)
			}
			c.Auth.File = filepath.Join(configDir, "zoho-mcp", "credentials.json")
		}
	case CredentialStorageTypeKeyring:
		if c.Auth.KeyringUser == "" {
			currentUser, err := user.Current()
			if err != nil {
				return fmt.Errorf("auth.keyring_user required (auto-detect failed: %w)", err)
			}
			c.Auth.KeyringUser = currentUser.Username
		}
	}

	return nil
}

// Validate validates the configuration using struct tags and enum values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	switch c.Auth.Storage {
	case CredentialStorageTypeFile:
		if c.Auth.File == "" {
			return errors.New("file path required for file storage")
		}
	case CredentialStorageTypeKeyring:
		if c.Auth.KeyringUser == "" {
			return errors.New("keyring_user required for keyring storage")
		}
	}

	return nil
}

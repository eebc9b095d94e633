package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hllvc/zoho-mcp/internal/app"
)

func environWith(vars ...string) func() []string {
	return func() []string { return vars }
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	cfg, err := loadConfig("", nil, environWith(
		"ZOHOMCP_ZOHO__CLIENT_ID=env-client",
		"ZOHOMCP_ZOHO__REGION=eu",
		"ZOHOMCP_SERVER__PORT=9001",
	))
	require.NoError(t, err)

	assert.Equal(t, "env-client", cfg.Zoho.ClientID)
	assert.Equal(t, "eu", cfg.Zoho.Region)
	assert.EqualValues(t, 9001, cfg.Server.Port)
	// Defaults follow the overridden listener address.
	assert.Equal(t, "http://127.0.0.1:9001/oauth/callback", cfg.Zoho.RedirectURI)
}

func TestLoadConfigEnvironmentOverridesFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
[zoho]
client_id = "file-client"
region = "in"
`), 0600))

	cfg, err := loadConfig(configPath, nil, environWith(
		"ZOHOMCP_ZOHO__CLIENT_ID=env-client",
	))
	require.NoError(t, err)

	assert.Equal(t, "env-client", cfg.Zoho.ClientID)
	assert.Equal(t, "in", cfg.Zoho.Region)
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	cfg, err := loadConfig("", nil, environWith("ZOHOMCP_ZOHO__CLIENT_ID=env-client"))
	require.NoError(t, err)

	assert.Equal(t, app.DefaultConfigLogFormat, cfg.LogFormat)
	assert.Equal(t, app.DefaultConfigZohoRegion, cfg.Zoho.Region)
	assert.Equal(t, app.DefaultConfigAuthStorage, cfg.Auth.Storage)
	assert.NotEmpty(t, cfg.Zoho.Scopes)
}

func TestLoadConfigRejectsInvalidConfig(t *testing.T) {
	// Missing zoho.client_id fails struct validation.
	_, err := loadConfig("", nil, environWith())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestLoadConfigRejectsUnknownRegion(t *testing.T) {
	_, err := loadConfig("", nil, environWith(
		"ZOHOMCP_ZOHO__CLIENT_ID=env-client",
		"ZOHOMCP_ZOHO__REGION=mars",
	))
	assert.Error(t, err)
}

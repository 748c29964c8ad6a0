package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "http://localhost:8080", cfg.Server.BaseURL)
	assert.Equal(t, DefaultBackendURL, cfg.Backend.BaseURL)
	assert.Equal(t, "http://localhost:3000", cfg.Frontend.BaseURL)
}

func TestLoad_MissingFileIsSkipped(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestLoad_FromTOML(t *testing.T) {
	path := writeConfig(t, `
[server]
port = "9090"
base_url = "https://gate.example.com"

[backend]
base_url = "https://backend.example.com"

[frontend]
base_url = "https://app.example.com"

[providers.youtube]
client_id = "yt-id"
client_secret = "yt-secret"

[providers.meta]
client_id = "fb-app"
client_secret = "fb-secret"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "https://backend.example.com", cfg.Backend.BaseURL)
	assert.Equal(t, "https://app.example.com", cfg.Frontend.BaseURL)
	assert.Equal(t, "yt-id", cfg.Providers.YouTube.ClientID)
	assert.Equal(t, "fb-app", cfg.Providers.Meta.ClientID)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
[server]
port = "9090"

[backend]
base_url = "https://file.example.com"
`)
	t.Setenv("BACKEND_URL", "https://env.example.com")
	t.Setenv("YOUTUBE_CLIENT_ID", "env-yt")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.com", cfg.Backend.BaseURL)
	assert.Equal(t, "env-yt", cfg.Providers.YouTube.ClientID)
	assert.Equal(t, "9090", cfg.Server.Port, "file values survive when no env override exists")
}

func TestLoad_GatewayProvidersHaveNoCredentialSlots(t *testing.T) {
	// TikTok credentials belong to the Backend Gateway. A stale
	// [providers.tiktok] table in the file is ignored rather than loaded.
	path := writeConfig(t, `
[providers.tiktok]
client_id = "tt-key"
client_secret = "tt-secret"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ProvidersConfig{}, cfg.Providers)
}

func TestLoad_InvalidTOML_Errors(t *testing.T) {
	path := writeConfig(t, `this is not toml = = =`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestCallbackURL(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/oauth/tiktok/callback", cfg.CallbackURL("tiktok"))
}

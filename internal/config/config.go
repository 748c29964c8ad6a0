// Package config centralizes all runtime configuration: listen address,
// backend gateway endpoint, frontend origin, provider credentials, and
// storage URLs. Values come from an optional TOML file with environment
// variables taking precedence, so a single resolution point replaces
// per-route fallback hosts.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// DefaultBackendURL is the fallback Backend Gateway host used when neither
// the config file nor BACKEND_URL provide one.
const DefaultBackendURL = "http://localhost:8000"

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Backend   BackendConfig   `toml:"backend"`
	Frontend  FrontendConfig  `toml:"frontend"`
	Database  DatabaseConfig  `toml:"database"`
	Security  SecurityConfig  `toml:"security"`
	Providers ProvidersConfig `toml:"providers"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port string `toml:"port"`
	// Mode selects what runs in this process: "api", "worker", or "" for both.
	Mode string `toml:"mode"`
	// BaseURL is the externally reachable URL of this service, used to
	// build OAuth redirect URIs.
	BaseURL string `toml:"base_url"`
}

// BackendConfig locates the Backend Gateway that performs the real token
// exchange and media uploads for proxied providers.
type BackendConfig struct {
	BaseURL string `toml:"base_url"`
}

// FrontendConfig locates the web app that initiated the OAuth flow. Its
// origin bounds the callback page's postMessage target and redirect flows
// land on its root.
type FrontendConfig struct {
	BaseURL string `toml:"base_url"`
}

// DatabaseConfig contains optional storage backends. When URL is set,
// sessions and upload jobs persist in Postgres; when RedisURL is set,
// sessions live in Redis. Neither set means in-memory.
type DatabaseConfig struct {
	URL      string `toml:"url"`
	RedisURL string `toml:"redis_url"`
}

// SecurityConfig holds the hex-encoded AES-256 key used to encrypt tokens
// at rest. Empty disables encryption.
type SecurityConfig struct {
	EncryptionKey string `toml:"encryption_key"`
}

// OAuthClient is a client id/secret pair for one provider app.
type OAuthClient struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// ProvidersConfig contains OAuth app credentials for the providers this
// service talks to directly. TikTok and Instagram Graph have no entry:
// their credentials live in the Backend Gateway, which performs those
// flows on our behalf.
type ProvidersConfig struct {
	YouTube           OAuthClient `toml:"youtube"`
	InstagramPlatform OAuthClient `toml:"instagram_platform"`
	// Meta is the Facebook app used for the Instagram Graph business chain.
	Meta OAuthClient `toml:"meta"`
}

// Load reads configuration from the TOML file at path (skipped when path is
// empty or the file does not exist), applies environment overrides, then
// fills remaining empty fields with defaults. Environment always wins.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		} else if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	envOverride(&c.Server.Port, "PORT")
	envOverride(&c.Server.Mode, "MODE")
	envOverride(&c.Server.BaseURL, "BASE_URL")
	envOverride(&c.Backend.BaseURL, "BACKEND_URL")
	envOverride(&c.Frontend.BaseURL, "FRONTEND_URL")
	envOverride(&c.Database.URL, "DATABASE_URL")
	envOverride(&c.Database.RedisURL, "REDIS_URL")
	envOverride(&c.Security.EncryptionKey, "ENCRYPTION_KEY")

	envOverride(&c.Providers.YouTube.ClientID, "YOUTUBE_CLIENT_ID")
	envOverride(&c.Providers.YouTube.ClientSecret, "YOUTUBE_CLIENT_SECRET")
	envOverride(&c.Providers.InstagramPlatform.ClientID, "INSTAGRAM_CLIENT_ID")
	envOverride(&c.Providers.InstagramPlatform.ClientSecret, "INSTAGRAM_CLIENT_SECRET")
	envOverride(&c.Providers.Meta.ClientID, "META_APP_ID")
	envOverride(&c.Providers.Meta.ClientSecret, "META_APP_SECRET")
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = "http://localhost:" + c.Server.Port
	}
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = DefaultBackendURL
	}
	if c.Frontend.BaseURL == "" {
		c.Frontend.BaseURL = "http://localhost:3000"
	}
}

// CallbackURL returns the OAuth redirect URI for the named provider.
func (c *Config) CallbackURL(provider string) string {
	return fmt.Sprintf("%s/oauth/%s/callback", c.Server.BaseURL, provider)
}

func envOverride(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

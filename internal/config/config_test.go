package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := Default()
	cfg.Auth.JWTSecret = "0123456789abcdef0123"
	return cfg
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "./data/mediashelf.db", cfg.Database.Path)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "authToken", cfg.Auth.CookieName)
	assert.Equal(t, 20.0, cfg.Library.RatingMax)
	assert.Equal(t, 2, cfg.Library.RatingPrecision)
	assert.Equal(t, 60*time.Second, cfg.Metadata.IGDB.TokenBuffer)
	assert.Equal(t, 10*time.Second, cfg.Metadata.TMDB.Timeout)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
metadata:
  tmdb:
    api_key: from-file
library:
  rating_precision: 1
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("MEDIASHELF_METADATA_TMDB_API_KEY", "from-env")
	t.Setenv("MEDIASHELF_AUTH_JWT_SECRET", "env-secret-long-enough")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "from-env", cfg.Metadata.TMDB.APIKey)
	assert.Equal(t, "env-secret-long-enough", cfg.Auth.JWTSecret)
	assert.Equal(t, 1, cfg.Library.RatingPrecision)
	assert.Empty(t, cfg.Validate())
}

func TestLoad_EmbeddedKeysFallback(t *testing.T) {
	orig := EmbeddedTMDBKey
	EmbeddedTMDBKey = "embedded"
	t.Cleanup(func() { EmbeddedTMDBKey = orig })

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 8081\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "embedded", cfg.Metadata.TMDB.APIKey)
}

func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing secret", func(c *Config) { c.Auth.JWTSecret = "" }, "auth.jwt_secret: required"},
		{"short secret", func(c *Config) { c.Auth.JWTSecret = "short" }, "at least 16"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"zero rating max", func(c *Config) { c.Library.RatingMax = 0 }, "library.rating_max"},
		{"igdb secret missing", func(c *Config) { c.Metadata.IGDB.ClientID = "id" }, "metadata.igdb.client_secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			errs := cfg.Validate()
			if tt.wantErr == "" {
				assert.Empty(t, errs)
				return
			}
			require.NotEmpty(t, errs)
			assert.Contains(t, strings.Join(errs, "\n"), tt.wantErr)
		})
	}
}

func TestCheck_ReturnsConfigError(t *testing.T) {
	cfg := Default()

	err := cfg.Check("/etc/mediashelf/config.yaml")
	require.Error(t, err)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.True(t, cfgErr.HasErrors())
	assert.Contains(t, err.Error(), "/etc/mediashelf/config.yaml")
	assert.Contains(t, err.Error(), "auth.jwt_secret")

	assert.NoError(t, validConfig().Check(""))
}

func TestConfigError_Empty(t *testing.T) {
	e := &ConfigError{}
	assert.Equal(t, "", e.Error())
	assert.False(t, e.HasErrors())
}

func TestWarnings(t *testing.T) {
	cfg := validConfig()
	cfg.Metadata.TMDB.APIKey = ""
	cfg.Metadata.IGDB.ClientID = ""
	assert.Len(t, cfg.Warnings(), 2)

	cfg.Metadata.TMDB.APIKey = "k"
	cfg.Metadata.IGDB.ClientID = "id"
	cfg.Metadata.IGDB.ClientSecret = "secret"
	assert.Empty(t, cfg.Warnings())
}

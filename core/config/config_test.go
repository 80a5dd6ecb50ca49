package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("CATALOG_BASE_URL", "https://api.example.org/almaws/v1")
	t.Setenv("RESOLVER_BASE_URL", "https://resolver.example.org")
	t.Setenv("LOADER_BASE_URL", "https://loader.example.org/upload/")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "https://api.example.org/almaws/v1/", cfg.Catalog.BaseURL)
	assert.Equal(t, "https://resolver.example.org/", cfg.Resolver.BaseURL)
	assert.Equal(t, "https://loader.example.org/upload/", cfg.Loader.BaseURL)
	assert.Equal(t, 3, cfg.Retry.MaxRetries)
	assert.Equal(t, 2000, cfg.Retry.DelayMS)
	assert.Equal(t, "921", cfg.Schema.CoverTag)
	assert.Equal(t, "covers", cfg.Schema.PrimarySource)
	assert.False(t, cfg.Schema.DedupeISSN)
	assert.Equal(t, "cover-staging", cfg.Storage.Bucket)
	assert.False(t, cfg.Storage.Enabled())
	assert.False(t, cfg.Database.Enabled())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 15, cfg.Auth.JWTTTLMinutes)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("RETRY_MAX_RETRIES", "5")
	t.Setenv("SCHEMA_DEDUPE_ISSN", "true")
	t.Setenv("DATABASE_DRIVER", "sqlite")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 5, cfg.Retry.MaxRetries)
	assert.True(t, cfg.Schema.DedupeISSN)
	assert.True(t, cfg.Database.Enabled())
}

func TestLoadConfig_DotEnv(t *testing.T) {
	setRequired(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SERVER_VIEW_URL=https://opac.example.org/[rec_id]\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("SERVER_VIEW_URL") })

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "https://opac.example.org/991", cfg.Server.ViewLink("991"))
}

func TestLoadConfig_Invalid(t *testing.T) {
	setRequired(t)
	t.Setenv("CATALOG_BASE_URL", "")
	t.Setenv("RETRY_MAX_RETRIES", "-1")

	_, err := LoadConfig(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Catalog.BaseURL")
	assert.Contains(t, err.Error(), "Retry.MaxRetries")
}

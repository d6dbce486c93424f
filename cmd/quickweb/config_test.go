package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Config Loading Tests
// =============================================================================

func TestLoadConfig_DefaultValues(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 8081, cfg.HostServer.Port)
	assert.Equal(t, "./data/quickweb.db", cfg.Database.DSN)
	assert.Equal(t, "filesystem", cfg.Blob.Backend)
	assert.Equal(t, "./data/sites", cfg.Blob.Dir)
	assert.Equal(t, []string{"sites.localhost"}, cfg.Domains.Names)
	assert.Equal(t, "sites.localhost", cfg.Domains.Primary)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadConfig_FromFile(t *testing.T) {
	clearEnv(t)

	configContent := `
server:
  host: "127.0.0.1"
  port: 9000
  read_timeout: 60s

hostserver:
  port: 9001

database:
  dsn: "/tmp/test.db"

blob:
  backend: "s3"
  endpoint: "minio.internal:9000"
  bucket: "sites"

domains:
  names:
    - "quickweb.io"
    - "qweb.site"
  primary: "quickweb.io"

auth:
  secret: "file-secret"
  token_ttl: 1h

log:
  level: "debug"
  format: "text"
`
	tmpFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte(configContent), 0644))

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 60*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 9001, cfg.HostServer.Port)
	assert.Equal(t, "/tmp/test.db", cfg.Database.DSN)
	assert.Equal(t, "s3", cfg.Blob.Backend)
	assert.Equal(t, "minio.internal:9000", cfg.Blob.Endpoint)
	assert.Equal(t, "sites", cfg.Blob.Bucket)
	assert.Equal(t, []string{"quickweb.io", "qweb.site"}, cfg.Domains.Names)
	assert.Equal(t, "quickweb.io", cfg.Domains.Primary)
	assert.Equal(t, "file-secret", cfg.Auth.Secret)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_EnvironmentOverride(t *testing.T) {
	clearEnv(t)

	t.Setenv("QUICKWEB_SERVER_HOST", "192.168.1.1")
	t.Setenv("QUICKWEB_SERVER_PORT", "3000")
	t.Setenv("QUICKWEB_DATABASE_DSN", "/custom/path.db")
	t.Setenv("QUICKWEB_AUTH_SECRET", "env-secret")
	t.Setenv("QUICKWEB_LOG_LEVEL", "warn")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "192.168.1.1", cfg.Server.Host)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "/custom/path.db", cfg.Database.DSN)
	assert.Equal(t, "env-secret", cfg.Auth.Secret)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadConfig_FileNotFound_UsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig("/nonexistent/path/config.yaml")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	clearEnv(t)

	tmpFile := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte("invalid: yaml: content: [[["), 0644))

	_, err := LoadConfig(tmpFile)
	assert.Error(t, err)
}

func TestServerConfig_Address(t *testing.T) {
	cfg := ServerConfig{Host: "127.0.0.1", Port: 8080}
	assert.Equal(t, "127.0.0.1:8080", cfg.Address())
}

// =============================================================================
// Logger Setup Tests
// =============================================================================

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		format string
	}{
		{name: "json info", level: "info", format: "json"},
		{name: "text debug", level: "debug", format: "text"},
		{name: "warn", level: "warn", format: "json"},
		{name: "error", level: "error", format: "json"},
		{name: "invalid level falls back", level: "bogus", format: "json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Log: LogConfig{Level: tt.level, Format: tt.format}}
			assert.NotNil(t, SetupLogger(cfg))
		})
	}
}

// =============================================================================
// Helpers
// =============================================================================

func clearEnv(t *testing.T) {
	t.Helper()
	envVars := []string{
		"QUICKWEB_SERVER_HOST",
		"QUICKWEB_SERVER_PORT",
		"QUICKWEB_DATABASE_DSN",
		"QUICKWEB_AUTH_SECRET",
		"QUICKWEB_LOG_LEVEL",
		"QUICKWEB_LOG_FORMAT",
	}
	for _, v := range envVars {
		os.Unsetenv(v)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, "0.0.0.0:3000", cfg.ListenAddr())
	assert.Equal(t, int64(DefaultMaxBodyBytes), cfg.MaxBodyBytes)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hookcatch.yaml")
	data := `
port: 8080
baseUrl: https://hooks.example.com
dataDir: /var/lib/hookcatch
logFormat: json
cors:
  permissive: true
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "https://hooks.example.com", cfg.BaseURL)
	assert.Equal(t, "/var/lib/hookcatch", cfg.DataDir)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.True(t, cfg.CORS.Permissive)
	// Untouched keys keep their defaults.
	assert.Equal(t, DefaultReadTimeout, cfg.ReadTimeout)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("BASE_URL", "https://hooks.example.com")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg := Default()
	cfg.ApplyEnv()

	assert.Equal(t, 9999, cfg.Port)
	assert.Equal(t, "https://hooks.example.com", cfg.BaseURL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestApplyEnvPrefixedPortWins(t *testing.T) {
	t.Setenv("PORT", "1111")
	t.Setenv("HOOKCATCH_PORT", "2222")

	cfg := Default()
	cfg.ApplyEnv()
	assert.Equal(t, 2222, cfg.Port)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Port = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.MaxBodyBytes = -1
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.StoreTimeout = -5
	assert.Error(t, cfg.Validate())
}

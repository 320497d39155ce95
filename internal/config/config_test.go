package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCLI_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ALGOHUB_API_URL", "")
	t.Setenv("ALGOHUB_TOKEN_STORE", "")
	t.Setenv("ALGOHUB_CONFIG_DIR", "")
	t.Setenv("ALGOHUB_RUNTIME_DIR", "/run/test/algohub")
	t.Setenv("ALGOHUB_REQUEST_TIMEOUT", "")
	t.Setenv("ALGOHUB_LOG_LEVEL", "")

	cfg, err := LoadCLI()
	require.NoError(t, err)

	assert.Equal(t, "", cfg.APIURL)
	assert.Equal(t, "file", cfg.TokenStore)
	assert.Equal(t, "/run/test/algohub", cfg.RuntimeDir)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "algohub", filepath.Base(cfg.ConfigDir))
}

func TestLoadCLI_InvalidTokenStore(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ALGOHUB_CONFIG_DIR", t.TempDir())
	t.Setenv("ALGOHUB_TOKEN_STORE", "memory")

	_, err := LoadCLI()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ALGOHUB_TOKEN_STORE")
}

func TestLoadCLI_InvalidTimeout(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ALGOHUB_CONFIG_DIR", t.TempDir())
	t.Setenv("ALGOHUB_TOKEN_STORE", "keyring")
	t.Setenv("ALGOHUB_REQUEST_TIMEOUT", "soon")

	_, err := LoadCLI()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ALGOHUB_REQUEST_TIMEOUT")
}

func TestLoadServer_RequiresSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "")

	_, err := LoadServer()
	require.Error(t, err)
}

func TestLoadServer_ParsesOrigins(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("SESSION_TTL", "2h")

	cfg, err := LoadServer()
	require.NoError(t, err)

	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, 2*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, ":8080", cfg.HTTP.ListenAddr)
}

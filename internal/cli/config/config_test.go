package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    string
		shouldError bool
	}{
		{name: "full url", input: "http://localhost:8080", expected: "http://localhost:8080"},
		{name: "trailing slash", input: "https://algohub.example.com/", expected: "https://algohub.example.com"},
		{name: "bare host", input: "localhost:8080", expected: "http://localhost:8080"},
		{name: "with api prefix", input: "http://localhost:8080/api", expected: "http://localhost:8080/api"},
		{name: "empty", input: "  ", shouldError: true},
		{name: "bad scheme", input: "ftp://example.com", shouldError: true},
		{name: "no host", input: "http://", shouldError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeURL(tt.input)
			if tt.shouldError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestServer_APIBase(t *testing.T) {
	assert.Equal(t, "http://localhost:8080/api", (&Server{URL: "http://localhost:8080"}).APIBase())
	assert.Equal(t, "http://localhost:8080/api", (&Server{URL: "http://localhost:8080/"}).APIBase())
	assert.Equal(t, "http://localhost:8080/api", (&Server{URL: "http://localhost:8080/api"}).APIBase())
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	cfg := &Config{Servers: []Server{
		{Alias: "local", URL: "http://localhost:8080"},
		{Alias: "staging", URL: "https://staging.algohub.dev"},
	}}

	require.NoError(t, Save(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "alias: local")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("servers: [unclosed"), 0644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestLoadFromCurrentDir_SearchesParents(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, Save(filepath.Join(root, ConfigFileName), &Config{
		Servers: []Server{{Alias: "local", URL: "http://localhost:8080"}},
	}))

	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))
	t.Chdir(nested)

	cfg, err := LoadFromCurrentDir()
	require.NoError(t, err)
	require.Len(t, cfg.Servers, 1)
	assert.Equal(t, "local", cfg.Servers[0].Alias)
}

func TestLoadFromCurrentDir_NotFound(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := LoadFromCurrentDir()
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestConfig_AddServer(t *testing.T) {
	cfg := &Config{}

	s, added := cfg.AddServer("http://localhost:8080")
	assert.True(t, added)
	assert.Equal(t, "local", s.Alias)

	s, added = cfg.AddServer("https://algohub.dev")
	assert.True(t, added)
	assert.Equal(t, "server-2", s.Alias)

	s, added = cfg.AddServer("http://localhost:8080")
	assert.False(t, added)
	assert.Equal(t, "local", s.Alias)
	assert.Len(t, cfg.Servers, 2)
}

func TestConfig_Lookup(t *testing.T) {
	cfg := &Config{Servers: []Server{
		{Alias: "local", URL: "http://localhost:8080"},
		{Alias: "prod", URL: "https://algohub.dev"},
	}}

	s, err := cfg.GetServerByURLOrAlias("https://algohub.dev")
	require.NoError(t, err)
	assert.Equal(t, "prod", s.Alias)

	s, err = cfg.GetServerByURLOrAlias("local")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", s.URL)

	_, err = cfg.GetServerByURLOrAlias("missing")
	assert.EqualError(t, err, "server with alias 'missing' not found")

	s, err = cfg.GetDefaultServer()
	require.NoError(t, err)
	assert.Equal(t, "local", s.Alias)

	_, err = (&Config{}).GetDefaultServer()
	assert.Error(t, err)
}

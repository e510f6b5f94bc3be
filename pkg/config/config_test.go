package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFile_EnvOverridesYAML(t *testing.T) {
	path := writeConfig(t, `
port: "9000"
env: "test"
mongo:
  uri: "mongodb://mongo.example.com:27017"
  database: "lens"
quality:
  sample_limit: 500
`)

	t.Setenv("PORT", "9100")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := LoadFile(path, "test-version")
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "test-version", cfg.Version)
	assert.Equal(t, "mongodb://mongo.example.com:27017", cfg.Mongo.URI)
	assert.Equal(t, "lens", cfg.Mongo.Database)
	assert.Equal(t, 500, cfg.Quality.SampleLimit)
}

func TestLoadFile_Defaults(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, "env: test\n"), "dev")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.BindAddr)
	assert.Equal(t, "snapshots", cfg.Mongo.Collection)
	assert.Equal(t, 10*time.Second, cfg.Datasource.ConnectTimeout())
	assert.Equal(t, 10000, cfg.Quality.SampleLimit)
	assert.Equal(t, 90, cfg.Quality.StaleAfterDays)
	assert.Equal(t, 3, cfg.Quality.MaxFKChecks)
	assert.Equal(t, 5, cfg.Quality.MinNumericCount)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, "127.0.0.1:8000", cfg.ListenAddr())
}

func TestLoadFile_MissingFileUsesEnvironment(t *testing.T) {
	t.Setenv("MONGO_DATABASE", "from_env")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"), "dev")
	require.NoError(t, err)
	assert.Equal(t, "from_env", cfg.Mongo.Database)
}

func TestLoadFile_RejectsInvalidValues(t *testing.T) {
	_, err := LoadFile(writeConfig(t, "quality:\n  sample_limit: -5\n"), "dev")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sample_limit")

	_, err = LoadFile(writeConfig(t, "datasource:\n  connect_timeout_seconds: -1\n"), "dev")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect_timeout_seconds")
}

func TestLoadFile_MalformedYAML(t *testing.T) {
	_, err := LoadFile(writeConfig(t, "port: [unterminated\n"), "dev")
	require.Error(t, err)
}

func TestLoadFile_CORSOrigins(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, "cors_allowed_origins:\n  - https://app.example.com\n"), "dev")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.CORSAllowedOrigins)

	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test,http://b.test")
	cfg, err = LoadFile(filepath.Join(t.TempDir(), "absent.yaml"), "dev")
	require.NoError(t, err)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"CONFIG_FILE", "PORT", "ENV", "DATA_SOURCE", "TRIP_STATS_PATH", "CONGESTION_PATH",
	"DB_PATH", "CACHE_SIZE", "CACHE_TTL_SECONDS", "RATE_LIMIT", "RATE_WINDOW_SECONDS", "ALLOWED_ORIGINS",
}

// isolate runs the test from an empty directory with a clean environment
func isolate(t *testing.T) string {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, ":5001", cfg.Port)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	dir := isolate(t)

	yamlText := `
port: ":8080"
env: production
data_source: sqlite
db_path: /var/lib/tli/tli.db
cache_ttl: 30s
allowed_origins:
  - http://localhost:5173
`
	path := filepath.Join(dir, "tli.yml")
	require.NoError(t, os.WriteFile(path, []byte(yamlText), 0o644))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "9090")
	t.Setenv("RATE_LIMIT", "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, SourceSQLite, cfg.DataSource)
	assert.Equal(t, "/var/lib/tli/tli.db", cfg.DBPath)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, 0, cfg.RateLimit)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.AllowedOrigins)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CACHE_SIZE=16\nALLOWED_ORIGINS=http://a.test, http://b.test\n"), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("CACHE_SIZE")
		os.Unsetenv("ALLOWED_ORIGINS")
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.CacheSize)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
}

func TestLoad_Invalid(t *testing.T) {
	isolate(t)

	t.Setenv("DATA_SOURCE", "parquet")
	_, err := Load()
	assert.ErrorContains(t, err, "DataSource")

	t.Setenv("DATA_SOURCE", "")
	t.Setenv("CACHE_SIZE", "lots")
	_, err = Load()
	assert.ErrorContains(t, err, "CACHE_SIZE")
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)
	t.Setenv("CONFIG_FILE", "does-not-exist.yml")

	_, err := Load()
	assert.Error(t, err)
}

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.Store.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Store.Timeout)
	assert.Equal(t, 5173, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:5173", cfg.Server.Addr())
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.False(t, cfg.City.DiscardStaleReads)
	assert.True(t, cfg.Observability.MetricsEnabled)
	assert.Equal(t, "info", cfg.Observability.LogLevel)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("STORE_BASE_URL", "http://cities.internal:9000")
	t.Setenv("STORE_TIMEOUT", "3s")
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("CITY_DISCARD_STALE_READS", "true")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://cities.internal:9000", cfg.Store.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Store.Timeout)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.True(t, cfg.City.DiscardStaleReads)
	assert.Equal(t, "json", cfg.Observability.LogFormat)
}

func TestLoad_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("STORE_BASE_URL=http://from-dotenv:8000\n"), 0o600))
	t.Setenv("STORE_BASE_URL", "")
	os.Unsetenv("STORE_BASE_URL")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://from-dotenv:8000", cfg.Store.BaseURL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "relative store url", key: "STORE_BASE_URL", value: "cities"},
		{name: "port out of range", key: "SERVER_PORT", value: "70000"},
		{name: "negative timeout", key: "STORE_TIMEOUT", value: "-1s"},
		{name: "unknown log level", key: "LOG_LEVEL", value: "chatty"},
		{name: "unknown log format", key: "LOG_FORMAT", value: "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, l)

	l, err = ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, l)
}

package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreybb/mailcraft/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_CONNECTION_STRING", "postgres://localhost/mailcraft")
	for _, key := range []string{"PORT", "EXPORT_DIR", "POSTMARK_SERVER_TOKEN", "SHUTDOWN_TIMEOUT", "REQUEST_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 25, cfg.DBMaxOpenConns)
	assert.Equal(t, 5*time.Minute, cfg.DBConnMaxLifetime)
	assert.Equal(t, "_output", cfg.ExportDir)
	assert.Equal(t, "preview@mailcraft.dev", cfg.SenderEmail)
	assert.Equal(t, 15*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 60*time.Second, cfg.RequestTimeout)
	assert.False(t, cfg.PostmarkEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_CONNECTION_STRING", "postgres://localhost/mailcraft")
	t.Setenv("PORT", "9090")
	t.Setenv("POSTMARK_SERVER_TOKEN", "server-token")
	t.Setenv("REQUEST_TIMEOUT", "5s")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.PostmarkEnabled())
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.NotContains(t, cfg.String(), "server-token")
}

func TestLoad_RequiresDatabase(t *testing.T) {
	t.Setenv("DB_CONNECTION_STRING", "")

	_, err := config.Load()
	assert.ErrorIs(t, err, config.ErrParsingConfig)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("DB_CONNECTION_STRING", "postgres://localhost/mailcraft")
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")

	_, err := config.Load()
	assert.ErrorIs(t, err, config.ErrParsingConfig)
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, config.Config{LogLevel: in}.SlogLevel(), in)
	}
}

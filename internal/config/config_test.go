package config

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("WORKREPORT_BASE_URL", "")
	t.Setenv("WORKREPORT_TIMEOUT_MS", "")
	cfg := Load()

	assert.Equal(t, "http://localhost:8080/api", cfg.BaseURL)
	assert.Equal(t, 10000, cfg.TimeoutMs)
	assert.Equal(t, 10*time.Second, cfg.Timeout())
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("WORKREPORT_BASE_URL", "https://reports.example.com/api/")
	t.Setenv("WORKREPORT_STATE_DIR", dir)
	t.Setenv("WORKREPORT_TIMEOUT_MS", "2500")
	t.Setenv("WORKREPORT_LOG_LEVEL", "debug")
	t.Setenv("WORKREPORT_LOG_CALLS", "false")

	cfg := Load()

	assert.Equal(t, "https://reports.example.com/api", cfg.BaseURL)
	assert.Equal(t, 2500, cfg.TimeoutMs)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.False(t, cfg.LogCalls)
	assert.Equal(t, filepath.Join(dir, "token"), cfg.TokenDir())
	assert.Equal(t, filepath.Join(dir, "workreport.log"), cfg.LogPath())
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("WORKREPORT_TIMEOUT_MS", "-5")
	t.Setenv("WORKREPORT_LOG_LEVEL", "loud")

	cfg := Load()

	assert.Equal(t, 10000, cfg.TimeoutMs)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoadDevServer(t *testing.T) {
	t.Setenv("WORKREPORT_DEV_ADDR", ":9999")
	t.Setenv("WORKREPORT_DEV_TOKEN_TTL", "10m")
	t.Setenv("WORKREPORT_DEV_JWT_SECRET", "")

	cfg := LoadDevServer()

	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, 10*time.Minute, cfg.TokenTTL)
	assert.Equal(t, "dev-secret-key", cfg.JWTSecret)
}

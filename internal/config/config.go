package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all client configuration.
type Config struct {
	BaseURL   string
	StateDir  string
	ExportDir string
	TimeoutMs int
	LogFile   string
	LogLevel  slog.Level
	LogCalls  bool
}

// DevServerConfig holds configuration for the local development backend.
type DevServerConfig struct {
	Addr      string
	DBPath    string
	JWTSecret string
	TokenTTL  time.Duration
}

// Default returns a Config with sensible defaults. StateDir falls back to
// ./.workreport when the home directory cannot be determined.
func Default() Config {
	stateDir := ".workreport"
	if home, err := os.UserHomeDir(); err == nil {
		stateDir = filepath.Join(home, ".workreport")
	}
	return Config{
		BaseURL:   "http://localhost:8080/api",
		StateDir:  stateDir,
		ExportDir: ".",
		TimeoutMs: 10000,
		LogLevel:  slog.LevelInfo,
		LogCalls:  true,
	}
}

// Load reads an optional .env file, then environment variables,
// falling back to defaults for any unset or malformed values.
func Load() Config {
	_ = godotenv.Load()

	cfg := Default()
	if v := os.Getenv("WORKREPORT_BASE_URL"); v != "" {
		cfg.BaseURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("WORKREPORT_STATE_DIR"); v != "" {
		cfg.StateDir = v
	}
	if v := os.Getenv("WORKREPORT_EXPORT_DIR"); v != "" {
		cfg.ExportDir = v
	}
	if v := os.Getenv("WORKREPORT_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	if v := os.Getenv("WORKREPORT_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("WORKREPORT_LOG_LEVEL"); v != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(v)); err == nil {
			cfg.LogLevel = lvl
		}
	}
	if v := os.Getenv("WORKREPORT_LOG_CALLS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.LogCalls = b
		}
	}
	return cfg
}

// Timeout returns the per-request timeout.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// TokenDir is where the persisted bearer token lives.
func (c Config) TokenDir() string {
	return filepath.Join(c.StateDir, "token")
}

// LogPath returns the log file path, defaulting into the state directory.
func (c Config) LogPath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return filepath.Join(c.StateDir, "workreport.log")
}

// DefaultDevServer returns development backend defaults.
func DefaultDevServer() DevServerConfig {
	return DevServerConfig{
		Addr:      ":8080",
		DBPath:    "workreport-dev.db",
		JWTSecret: "dev-secret-key",
		TokenTTL:  30 * time.Minute,
	}
}

// LoadDevServer reads development backend settings from the environment.
func LoadDevServer() DevServerConfig {
	_ = godotenv.Load()

	cfg := DefaultDevServer()
	if v := os.Getenv("WORKREPORT_DEV_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("WORKREPORT_DEV_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("WORKREPORT_DEV_JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("WORKREPORT_DEV_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.TokenTTL = d
		}
	}
	return cfg
}

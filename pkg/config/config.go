package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Config is the application configuration, read from the environment.
type Config struct {
	Server        ServerConfig
	Store         StoreConfig
	City          CityConfig
	Observability ObservabilityConfig
}

type ServerConfig struct {
	Host               string        `env:"SERVER_HOST,default=0.0.0.0"`
	Port               int           `env:"SERVER_PORT,default=5173"`
	ReadTimeout        time.Duration `env:"SERVER_READ_TIMEOUT,default=15s"`
	WriteTimeout       time.Duration `env:"SERVER_WRITE_TIMEOUT,default=15s"`
	ShutdownTimeout    time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT,default=10s"`
	RateLimitPerSecond int           `env:"SERVER_RATE_LIMIT_PER_SECOND,default=0"`
	RateLimitBurst     int           `env:"SERVER_RATE_LIMIT_BURST,default=0"`
	AllowedOrigins     []string      `env:"SERVER_ALLOWED_ORIGINS,default=http://localhost:5173;http://localhost:3000"`
}

// Addr is the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StoreConfig points at the remote city store.
type StoreConfig struct {
	BaseURL string `env:"STORE_BASE_URL,default=http://localhost:8000"`
	// Zero disables the client timeout.
	Timeout time.Duration `env:"STORE_TIMEOUT,default=10s"`
}

type CityConfig struct {
	DiscardStaleReads bool `env:"CITY_DISCARD_STALE_READS,default=false"`
}

type ObservabilityConfig struct {
	LogLevel       string `env:"LOG_LEVEL,default=info"`
	LogFormat      string `env:"LOG_FORMAT,default=text"`
	MetricsEnabled bool   `env:"METRICS_ENABLED,default=true"`
}

// Load reads envFiles (missing files are ignored) and decodes the environment.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envdecode cannot.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Store.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid STORE_BASE_URL %q", c.Store.BaseURL)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid SERVER_PORT %d", c.Server.Port)
	}
	if c.Store.Timeout < 0 {
		return fmt.Errorf("STORE_TIMEOUT must not be negative")
	}
	if _, err := ParseLevel(c.Observability.LogLevel); err != nil {
		return err
	}
	switch strings.ToLower(c.Observability.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q", c.Observability.LogFormat)
	}
	return nil
}

// ParseLevel maps LOG_LEVEL to a slog level.
func ParseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}
	return l, nil
}

// NewLogger builds the process logger described by the observability settings.
func (o ObservabilityConfig) NewLogger() *slog.Logger {
	level, err := ParseLevel(o.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(o.LogFormat, "json") {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

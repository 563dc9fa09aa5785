// Package config loads settings for both binaries from the environment.
//
// Values are read with github.com/caarlos0/env. A .env file in the working
// directory is loaded first when present (development), without overriding
// variables that are already set. Sanitize runs after parsing and replaces
// out-of-range values with defaults.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DefaultAPIURL      = "http://localhost:3000"
	DefaultHTTPTimeout = 15 * time.Second
	DefaultPort        = 3000
	DefaultDBPath      = "data/mesto.db"
	DefaultTokenTTL    = 7 * 24 * time.Hour

	// MinSecretLength matches what auth.NewTokenService accepts.
	MinSecretLength = 16
)

// ClientConfig configures the mesto CLI.
type ClientConfig struct {
	// APIURL is the base URL of the places API.
	APIURL string `env:"MESTO_API_URL" envDefault:"http://localhost:3000"`

	// StatePath is the SQLite file holding the stored token. Empty means
	// $HOME/.mesto/state.db.
	StatePath string `env:"MESTO_STATE_PATH"`

	HTTPTimeout time.Duration `env:"MESTO_HTTP_TIMEOUT" envDefault:"15s"`
	LogLevel    string        `env:"MESTO_LOG_LEVEL" envDefault:"warn"`
}

// Sanitize applies guardrails to values loaded from env.
func (c *ClientConfig) Sanitize() {
	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	if u, err := url.Parse(c.APIURL); err != nil || u.Scheme == "" || u.Host == "" {
		c.APIURL = DefaultAPIURL
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = DefaultHTTPTimeout
	}
	if c.StatePath == "" {
		c.StatePath = defaultStatePath()
	}
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".mesto", "state.db")
	}
	return filepath.Join(home, ".mesto", "state.db")
}

// ServerConfig configures the local API.
type ServerConfig struct {
	Port      int           `env:"PORT" envDefault:"3000"`
	DBPath    string        `env:"DB_PATH" envDefault:"data/mesto.db"`
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"JWT_TTL" envDefault:"168h"`
	LogLevel  string        `env:"MESTO_LOG_LEVEL" envDefault:"info"`
}

// Sanitize applies guardrails to values loaded from env. The secret is not
// defaulted; Validate reports it.
func (c *ServerConfig) Sanitize() {
	if c.Port <= 0 || c.Port > 65535 {
		c.Port = DefaultPort
	}
	if strings.TrimSpace(c.DBPath) == "" {
		c.DBPath = DefaultDBPath
	}
	if c.TokenTTL <= 0 {
		c.TokenTTL = DefaultTokenTTL
	}
}

// Validate reports settings the server cannot start without.
func (c *ServerConfig) Validate() error {
	if len(c.JWTSecret) < MinSecretLength {
		return fmt.Errorf("config: JWT_SECRET must be at least %d characters", MinSecretLength)
	}
	return nil
}

// LoadClient reads the CLI configuration.
func LoadClient() (ClientConfig, error) {
	var cfg ClientConfig
	if err := load(&cfg); err != nil {
		return cfg, err
	}
	cfg.Sanitize()
	return cfg, nil
}

// LoadServer reads and validates the local API configuration.
func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	if err := load(&cfg); err != nil {
		return cfg, err
	}
	cfg.Sanitize()
	return cfg, cfg.Validate()
}

func load(cfg any) error {
	// A missing .env is normal outside development.
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return fmt.Errorf("config: loading .env file: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("config: parsing environment: %w", err)
	}
	return nil
}

// ParseLogLevel maps debug|info|warn|error (any case) to a slog level.
// Anything else is Info.
func ParseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

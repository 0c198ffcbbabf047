// Package config loads application configuration from environment variables.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"

	"github.com/ericfisherdev/ytsentiment/internal/domain/model"
)

// ErrConfiguration marks configuration that prevents the application from starting.
var ErrConfiguration = errors.New("invalid configuration")

// sessionKeyLen is the byte length of a generated cookie signing key.
const sessionKeyLen = 32

// Config holds the application configuration loaded from environment variables.
type Config struct {
	YouTubeAPIKey      string        `env:"YOUTUBE_API_KEY"`
	YouTubeAPIKeyFile  string        `env:"YOUTUBE_API_KEY_FILE"`
	ListenAddr         string        `env:"YTSENTIMENT_LISTEN_ADDR" default:"127.0.0.1:8080"`
	DefaultMaxComments int           `env:"YTSENTIMENT_DEFAULT_MAX_COMMENTS" default:"5000"`
	MaxPages           int           `env:"YTSENTIMENT_MAX_PAGES" default:"0"`
	PositiveThreshold  float64       `env:"YTSENTIMENT_POSITIVE_THRESHOLD" default:"0.05"`
	NegativeThreshold  float64       `env:"YTSENTIMENT_NEGATIVE_THRESHOLD" default:"-0.05"`
	SessionTTL         time.Duration `env:"YTSENTIMENT_SESSION_TTL" default:"2h"`
	SessionSecret      string        `env:"YTSENTIMENT_SESSION_SECRET"`
	LogLevel           string        `env:"YTSENTIMENT_LOG_LEVEL" default:"info"`
	LogFormat          string        `env:"YTSENTIMENT_LOG_FORMAT" default:"text"`

	sessionKey []byte
}

// Thresholds returns the configured labelling cut-offs.
func (c *Config) Thresholds() model.Thresholds {
	return model.Thresholds{Positive: c.PositiveThreshold, Negative: c.NegativeThreshold}
}

// SessionKey returns the cookie signing key. It is random per process when
// YTSENTIMENT_SESSION_SECRET is unset.
func (c *Config) SessionKey() []byte {
	return c.sessionKey
}

// Load reads a .env file if present, then environment variables, and returns a
// validated Config. A YouTube API key is required, either directly in
// YOUTUBE_API_KEY or as the contents of the file named by YOUTUBE_API_KEY_FILE.
// Every validation failure wraps ErrConfiguration.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	if err := cfg.resolveAPIKey(); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	key, err := sessionKey(cfg.SessionSecret)
	if err != nil {
		return nil, err
	}
	cfg.sessionKey = key

	return &cfg, nil
}

// resolveAPIKey reads YOUTUBE_API_KEY_FILE when YOUTUBE_API_KEY is empty.
func (c *Config) resolveAPIKey() error {
	c.YouTubeAPIKey = strings.TrimSpace(c.YouTubeAPIKey)
	if c.YouTubeAPIKey != "" || c.YouTubeAPIKeyFile == "" {
		return nil
	}

	data, err := os.ReadFile(c.YouTubeAPIKeyFile)
	if err != nil {
		return fmt.Errorf("%w: reading YOUTUBE_API_KEY_FILE: %w", ErrConfiguration, err)
	}
	c.YouTubeAPIKey = strings.TrimSpace(string(data))
	return nil
}

func (c *Config) validate() error {
	if c.YouTubeAPIKey == "" {
		return fmt.Errorf("%w: YOUTUBE_API_KEY or YOUTUBE_API_KEY_FILE is required", ErrConfiguration)
	}
	if c.DefaultMaxComments < 0 {
		return fmt.Errorf("%w: YTSENTIMENT_DEFAULT_MAX_COMMENTS must not be negative, got %d", ErrConfiguration, c.DefaultMaxComments)
	}
	if c.MaxPages < 0 {
		return fmt.Errorf("%w: YTSENTIMENT_MAX_PAGES must not be negative, got %d", ErrConfiguration, c.MaxPages)
	}
	if err := c.Thresholds().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("%w: YTSENTIMENT_SESSION_TTL must be positive, got %s", ErrConfiguration, c.SessionTTL)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: YTSENTIMENT_LOG_LEVEL must be debug, info, warn or error, got %q", ErrConfiguration, c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: YTSENTIMENT_LOG_FORMAT must be text or json, got %q", ErrConfiguration, c.LogFormat)
	}

	return nil
}

// sessionKey decodes a hex secret of at least 32 bytes, or generates a random
// key when secret is empty.
func sessionKey(secret string) ([]byte, error) {
	if secret == "" {
		key := make([]byte, sessionKeyLen)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generating session key: %w", err)
		}
		return key, nil
	}

	key, err := hex.DecodeString(secret)
	if err != nil {
		return nil, fmt.Errorf("%w: YTSENTIMENT_SESSION_SECRET must be valid hex: %w", ErrConfiguration, err)
	}
	if len(key) < sessionKeyLen {
		return nil, fmt.Errorf("%w: YTSENTIMENT_SESSION_SECRET must be at least %d hex characters, got %d bytes",
			ErrConfiguration, sessionKeyLen*2, len(key))
	}
	return key, nil
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/ytsentiment/internal/domain/model"
)

// allConfigKeys lists every env var that Load() reads.
var allConfigKeys = []string{
	"YOUTUBE_API_KEY",
	"YOUTUBE_API_KEY_FILE",
	"YTSENTIMENT_LISTEN_ADDR",
	"YTSENTIMENT_DEFAULT_MAX_COMMENTS",
	"YTSENTIMENT_MAX_PAGES",
	"YTSENTIMENT_POSITIVE_THRESHOLD",
	"YTSENTIMENT_NEGATIVE_THRESHOLD",
	"YTSENTIMENT_SESSION_TTL",
	"YTSENTIMENT_SESSION_SECRET",
	"YTSENTIMENT_LOG_LEVEL",
	"YTSENTIMENT_LOG_FORMAT",
}

// isolateConfigEnv saves and unsets all config env vars so tests don't
// inherit values from the host environment (e.g. a running dev server).
// t.Cleanup restores original values after the test.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func TestLoad_Success(t *testing.T) {
	isolateConfigEnv(t)
	secret := strings.Repeat("ab", 32)
	t.Setenv("YOUTUBE_API_KEY", "  AIza-test  ")
	t.Setenv("YTSENTIMENT_LISTEN_ADDR", "0.0.0.0:9090")
	t.Setenv("YTSENTIMENT_DEFAULT_MAX_COMMENTS", "250")
	t.Setenv("YTSENTIMENT_MAX_PAGES", "4")
	t.Setenv("YTSENTIMENT_POSITIVE_THRESHOLD", "0.1")
	t.Setenv("YTSENTIMENT_NEGATIVE_THRESHOLD", "-0.2")
	t.Setenv("YTSENTIMENT_SESSION_TTL", "30m")
	t.Setenv("YTSENTIMENT_SESSION_SECRET", secret)
	t.Setenv("YTSENTIMENT_LOG_LEVEL", "debug")
	t.Setenv("YTSENTIMENT_LOG_FORMAT", "json")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "AIza-test", cfg.YouTubeAPIKey)
	assert.Equal(t, "0.0.0.0:9090", cfg.ListenAddr)
	assert.Equal(t, 250, cfg.DefaultMaxComments)
	assert.Equal(t, 4, cfg.MaxPages)
	assert.Equal(t, model.Thresholds{Positive: 0.1, Negative: -0.2}, cfg.Thresholds())
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Len(t, cfg.SessionKey(), 32)
	assert.Equal(t, byte(0xab), cfg.SessionKey()[0])
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("YOUTUBE_API_KEY", "AIza-test")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr)
	assert.Equal(t, 5000, cfg.DefaultMaxComments)
	assert.Equal(t, 0, cfg.MaxPages)
	assert.Equal(t, model.DefaultThresholds, cfg.Thresholds())
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Len(t, cfg.SessionKey(), 32, "a random key is generated")
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoad_MissingAPIKey(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := Load()

	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Contains(t, err.Error(), "YOUTUBE_API_KEY")
}

func TestLoad_APIKeyFile(t *testing.T) {
	isolateConfigEnv(t)
	path := filepath.Join(t.TempDir(), "key")
	require.NoError(t, os.WriteFile(path, []byte("AIza-from-file\n"), 0o600))
	t.Setenv("YOUTUBE_API_KEY_FILE", path)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "AIza-from-file", cfg.YouTubeAPIKey)
}

func TestLoad_APIKeyTakesPrecedenceOverFile(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("YOUTUBE_API_KEY", "AIza-direct")
	t.Setenv("YOUTUBE_API_KEY_FILE", "/nonexistent/key")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "AIza-direct", cfg.YouTubeAPIKey)
}

func TestLoad_UnreadableAPIKeyFile(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("YOUTUBE_API_KEY_FILE", filepath.Join(t.TempDir(), "missing"))

	_, err := Load()

	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"negative max comments", "YTSENTIMENT_DEFAULT_MAX_COMMENTS", "-1"},
		{"negative max pages", "YTSENTIMENT_MAX_PAGES", "-3"},
		{"non-numeric max comments", "YTSENTIMENT_DEFAULT_MAX_COMMENTS", "lots"},
		{"bad duration", "YTSENTIMENT_SESSION_TTL", "soon"},
		{"zero ttl", "YTSENTIMENT_SESSION_TTL", "0s"},
		{"overlapping thresholds", "YTSENTIMENT_NEGATIVE_THRESHOLD", "0.5"},
		{"threshold out of range", "YTSENTIMENT_POSITIVE_THRESHOLD", "1.5"},
		{"non-hex secret", "YTSENTIMENT_SESSION_SECRET", "not-hex"},
		{"short secret", "YTSENTIMENT_SESSION_SECRET", "abcd"},
		{"bad log level", "YTSENTIMENT_LOG_LEVEL", "verbose"},
		{"bad log format", "YTSENTIMENT_LOG_FORMAT", "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateConfigEnv(t)
			t.Setenv("YOUTUBE_API_KEY", "AIza-test")
			t.Setenv(tt.key, tt.value)

			_, err := Load()

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

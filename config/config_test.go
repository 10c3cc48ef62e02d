package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv clears keys for the duration of the test.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

var configKeys = []string{
	"GO_ENV", "PORT", "DATABASE_URL", "LOG_LEVEL", "JWT_SECRET", "JWT_EXPIRY", "CONTEXT_TIMEOUT",
	"CORS_ALLOWED_ORIGINS", "MIGRATE_ON_START", "REALTIME_BUFFER", "EMAIL_PROVIDER",
	"EMAIL_FROM_ADDRESS", "EMAIL_FROM_NAME", "AWS_REGION",
}

func TestParse_Defaults(t *testing.T) {
	unsetEnv(t, configKeys...)

	cfg, err := parse()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 5*time.Second, cfg.ContextTimeout)
	assert.Equal(t, 16, cfg.RealtimeBuffer)
	assert.Equal(t, "noop", cfg.Email.Provider)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Empty(t, cfg.AllowedOrigins)
}

func TestParse_FromEnv(t *testing.T) {
	unsetEnv(t, configKeys...)
	t.Setenv("GO_ENV", "production")
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_EXPIRY", "2h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")
	t.Setenv("MIGRATE_ON_START", "true")
	t.Setenv("EMAIL_PROVIDER", "ses")
	t.Setenv("AWS_REGION", "eu-west-1")

	cfg, err := parse()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 2*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
	assert.True(t, cfg.MigrateOnStart)
	assert.Equal(t, "ses", cfg.Email.Provider)
	assert.Equal(t, "eu-west-1", cfg.Email.AWSRegion)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "production without secret", env: map[string]string{"GO_ENV": "production", "JWT_SECRET": ""}},
		{name: "bad duration", env: map[string]string{"JWT_EXPIRY": "soon"}},
		{name: "zero buffer", env: map[string]string{"REALTIME_BUFFER": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unsetEnv(t, configKeys...)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := parse()
			assert.Error(t, err)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "production", "warn")
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "v", rec["k"])

	buf.Reset()
	newLogger(&buf, "development", "debug").Debug("dbg")
	assert.Contains(t, buf.String(), "msg=dbg")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
}

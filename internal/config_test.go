package internal

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Host:              "0.0.0.0",
		Port:              8080,
		SigningKey:        "key",
		AuthTokenDuration: 24 * time.Hour,
		BadgerFilepath:    "/tmp/badger",
		RevocationBackend: BackendBadger,
		LogLevel:          "INFO",
	}
}

func TestConfigValidate(t *testing.T) {
	req := require.New(t)

	t.Run("should accept the badger backend", func(t *testing.T) {
		req.NoError(validConfig().Validate())
	})

	t.Run("should require a redis address for the redis backend", func(t *testing.T) {
		cfg := validConfig()
		cfg.RevocationBackend = BackendRedis
		req.Error(cfg.Validate())

		cfg.RedisAddr = "localhost:6379"
		req.NoError(cfg.Validate())
	})

	t.Run("should reject an unknown backend", func(t *testing.T) {
		cfg := validConfig()
		cfg.RevocationBackend = "memcached"
		req.Error(cfg.Validate())
	})

	t.Run("should reject a non-positive token duration", func(t *testing.T) {
		cfg := validConfig()
		cfg.AuthTokenDuration = 0
		req.Error(cfg.Validate())
	})
}

func TestCharacterRune(t *testing.T) {
	req := require.New(t)

	r, err := CharacterRune("*")
	req.NoError(err)
	req.Equal('*', r)

	_, err = CharacterRune("")
	req.Error(err)
	_, err = CharacterRune("**")
	req.Error(err)
}

func TestNewLoggerWithWriter(t *testing.T) {
	req := require.New(t)

	logger := NewLoggerWithWriter("DEBUG", io.Discard)
	req.True(logger.Enabled(t.Context(), slog.LevelDebug))

	logger = NewLoggerWithWriter("ERROR", io.Discard)
	req.False(logger.Enabled(t.Context(), slog.LevelInfo))

	// Unknown levels fall back to INFO.
	logger = NewLoggerWithWriter("garbage", io.Discard)
	req.True(logger.Enabled(t.Context(), slog.LevelInfo))
	req.False(logger.Enabled(t.Context(), slog.LevelDebug))
}

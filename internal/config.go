package internal

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

const (
	BackendBadger = "badger"
	BackendRedis  = "redis"
)

type Config struct {
	Host string `env:"HOST,required=true"`
	Port int    `env:"PORT,required=true"`

	SigningKey        string        `env:"JWT_SIGNING_KEY,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,required=true"`

	BadgerFilepath    string `env:"BADGER_FILEPATH,required=true"`
	RevocationBackend string `env:"REVOCATION_BACKEND,default=badger"`
	RedisAddr         string `env:"REDIS_ADDR"`
	RedisPassword     string `env:"REDIS_PASSWORD"`
	RedisDB           int    `env:"REDIS_DB"`

	ReadTimeout     time.Duration `env:"READ_TIMEOUT,default=60s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT,default=10s"`
	PingInterval    time.Duration `env:"PING_INTERVAL,default=54s"`
	MaxMessageSize  int64         `env:"MAX_MESSAGE_SIZE,default=4096"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`

	CensoredWordsPath string `env:"CENSORED_WORDS_PATH"`
	CharReplacement   string `env:"CHARACTER_REPLACEMENT,default=*"`

	LogLevel string `env:"LOG_LEVEL,required=true"`
}

// Validate catches configuration mistakes that the env tags cannot express.
// A bad revocation backend or a redis backend without an address must stop
// the server before it accepts connections.
func (c Config) Validate() error {
	switch c.RevocationBackend {
	case BackendBadger:
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when REVOCATION_BACKEND=redis")
		}
	default:
		return fmt.Errorf("unknown REVOCATION_BACKEND %q", c.RevocationBackend)
	}
	if c.AuthTokenDuration <= 0 {
		return fmt.Errorf("AUTH_TOKEN_DURATION must be positive, got %s", c.AuthTokenDuration)
	}
	return nil
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}

// NewLogger builds the process-wide slog logger from the configured level.
// Unknown levels fall back to INFO rather than failing startup.
func NewLogger(level string) *slog.Logger {
	return NewLoggerWithWriter(level, os.Stdout)
}

func NewLoggerWithWriter(level string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		lvl = slog.LevelDebug
	case "WARN":
		lvl = slog.LevelWarn
	case "ERROR":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

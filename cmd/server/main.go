package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chat-relay/api"
	"chat-relay/auth"
	"chat-relay/internal"
	"chat-relay/moderation"
	"chat-relay/realtime"
	"chat-relay/repositories"
	"chat-relay/revocation"
	"chat-relay/services"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// Deferred cleanup (database close, sequence release) is guaranteed to execute before the
// process exits, which a bare os.Exit in main would skip.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()

	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}

	logger := internal.NewLogger(config.LogLevel)
	ctx := context.Background()

	// 2. Database (BadgerDB)
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		// Defer ensures the database lock is released and buffers are flushed.
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Token lifecycle: codec, revocation store, composed verifier.
	// A missing signing key or an unreachable revocation backend is fatal
	// before the server accepts a single connection.
	codec, err := auth.NewCodec([]byte(config.SigningKey), "chat-relay")
	if err != nil {
		return exitConfig, err
	}

	revocationStore, cleanup, err := buildRevocationStore(ctx, config, db)
	if err != nil {
		return exitRuntime, err
	}
	defer cleanup()

	verifier := auth.NewVerifier(codec, revocationStore)

	// 4. Accounts & services
	accounts, err := repositories.NewAccountRepository(db)
	if err != nil {
		return exitRuntime, err
	}
	defer func() {
		_ = accounts.Close()
	}()

	authService := services.NewAuthService(accounts, codec, revocationStore, config.AuthTokenDuration)

	// 5. Realtime core: the one shared registry, the content filter, the
	// WebSocket front door.
	filter, err := buildContentFilter(config, charReplacement, logger)
	if err != nil {
		return exitRuntime, err
	}

	registry := realtime.NewRegistry()
	wsServer := realtime.NewServer(registry, verifier, filter, realtime.ServerConfig{
		ReadTimeout:    config.ReadTimeout,
		WriteTimeout:   config.WriteTimeout,
		PingInterval:   config.PingInterval,
		MaxMessageSize: config.MaxMessageSize,
	}, logger)

	mux := http.NewServeMux()
	api.NewHandlers(authService, logger).Register(mux)
	mux.Handle("GET /ws", wsServer)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	httpServer := &http.Server{
		Addr:    address,
		Handler: mux,
	}

	// 6. Context & Signals
	// NotifyContext captures OS signals and cancels the context to trigger a shutdown.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		return exitRuntime, err
	}

	// 8. Final Cleanup (Graceful Shutdown)
	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown failed", "error", err)
	}
	logger.Info("Program stopped cleanly")

	return exitOK, nil
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG)
	} else {
		options = options.WithLoggingLevel(badger.WARNING)
	}

	return options
}

// buildRevocationStore selects the configured backend. The redis backend is
// pinged up front so a dead cache fails startup instead of first logout.
func buildRevocationStore(ctx context.Context, config internal.Config, db *badger.DB) (revocation.Store, func(), error) {
	switch config.RevocationBackend {
	case internal.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     config.RedisAddr,
			Password: config.RedisPassword,
			DB:       config.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("revocation store unreachable: %w", err)
		}
		return revocation.NewRedisStore(client), func() { _ = client.Close() }, nil
	default:
		return revocation.NewBadgerStore(db), func() {}, nil
	}
}

func buildContentFilter(config internal.Config, replacement rune, logger *slog.Logger) (realtime.ContentFilter, error) {
	if config.CensoredWordsPath == "" {
		return nil, nil
	}

	words, err := moderation.LoadWords(config.CensoredWordsPath)
	if err != nil {
		return nil, fmt.Errorf("loading censored words: %w", err)
	}
	moderator, err := moderation.NewModerator(words, replacement)
	if err != nil {
		return nil, fmt.Errorf("building content filter: %w", err)
	}
	logger.Info("Content filter enabled", "words", len(words))
	return moderator, nil
}

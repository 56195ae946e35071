package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-menu-auth/internal/config"
	"github.com/go-menu-auth/internal/infrastructure/dynamo"
	"github.com/go-menu-auth/internal/infrastructure/notify"
	"github.com/go-menu-auth/internal/infrastructure/redisstore"
	"github.com/go-menu-auth/internal/infrastructure/smtp"
	"github.com/go-menu-auth/internal/infrastructure/sns"
	"github.com/go-menu-auth/internal/infrastructure/sqlite"
	"github.com/go-menu-auth/internal/logging"
	transporthttp "github.com/go-menu-auth/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, reading from environment")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.LogLevel, cfg.Production())

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	deps, closers, err := buildDeps(ctx, cfg, logger)
	defer func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv,
			"storage", cfg.StorageDriver, "sessions", cfg.SessionBackend, "notifier", cfg.Notifier)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// buildDeps wires the stores and notifier selected by cfg. The returned
// closers must be closed even when err is non-nil.
func buildDeps(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*transporthttp.Deps, []io.Closer, error) {
	var closers []io.Closer
	deps := &transporthttp.Deps{}

	switch cfg.StorageDriver {
	case "sqlite":
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, closers, err
		}
		closers = append(closers, db)
		deps.UserRepo = sqlite.NewUserStore(db)
		deps.SessionRepo = sqlite.NewSessionStore(db)
		deps.VerificationRepo = sqlite.NewVerificationStore(db)
	default:
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return nil, closers, fmt.Errorf("load AWS config: %w", err)
		}
		// Creates the tables if they don't exist.
		dynamo.Bootstrap(ctx, client, cfg.DynamoTables)
		deps.UserRepo = dynamo.NewUserRepo(client, cfg.DynamoTables.Users)
		deps.SessionRepo = dynamo.NewSessionRepo(client, cfg.DynamoTables.Sessions)
		deps.VerificationRepo = dynamo.NewVerificationRepo(client, cfg.DynamoTables.VerificationCodes)
	}

	if cfg.SessionBackend == "redis" {
		rdb, err := redisstore.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, closers, err
		}
		closers = append(closers, rdb)
		deps.SessionRepo = redisstore.NewSessionStore(rdb)
	}

	switch cfg.Notifier {
	case "sns":
		n, err := sns.NewTopicNotifier(ctx, cfg)
		if err != nil {
			return nil, closers, fmt.Errorf("sns notifier: %w", err)
		}
		deps.Notifier = n
	case "log":
		deps.Notifier = notify.NewLogNotifier(logger)
	default:
		deps.Notifier = smtp.NewMailer(cfg)
	}

	return deps, closers, nil
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/msomdec/campuscoders/internal/config"
	"github.com/msomdec/campuscoders/internal/domain"
	"github.com/msomdec/campuscoders/internal/handler"
	"github.com/msomdec/campuscoders/internal/repository/memory"
	"github.com/msomdec/campuscoders/internal/repository/postgres"
	"github.com/msomdec/campuscoders/internal/repository/redis"
	"github.com/msomdec/campuscoders/internal/repository/roster"
	"github.com/msomdec/campuscoders/internal/repository/sqlite"
	"github.com/msomdec/campuscoders/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	level, _ := cfg.Level()
	logOpts := &slog.HandlerOptions{Level: level}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	ctx := context.Background()

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		slog.Error("failed to open record store", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("record store ready", "backend", cfg.StoreBackend)

	var credentials service.Credentials = service.NewBcryptCredentials(cfg.BcryptCost)
	if cfg.CredentialMode == config.CredentialsPlaintext {
		slog.Warn("credentials are stored in plaintext")
		credentials = service.PlaintextCredentials{}
	}

	accounts := roster.New(db.Records())
	sessions := service.NewSessionManager(accounts, credentials)
	entitlements := service.NewEntitlementResolver(sessions, cfg.PaymentDelay)
	admin := service.NewAdminService(accounts)
	tokens := service.NewSessionTokens(cfg.SessionSecret, cfg.SessionTTL)

	// Seed the bootstrap administrator (idempotent).
	if _, err := sessions.SeedAdmin(ctx, service.BootstrapAdmin{
		Email:      cfg.AdminEmail,
		Credential: cfg.AdminPassword,
		Name:       cfg.AdminName,
	}); err != nil {
		slog.Error("failed to seed admin", "error", err)
		os.Exit(1)
	}

	if err := sessions.Restore(ctx); err != nil {
		slog.Error("failed to restore session", "error", err)
		os.Exit(1)
	}

	router := handler.NewRouter(handler.RouterConfig{
		Sessions:        sessions,
		Entitlements:    entitlements,
		Admin:           admin,
		Tokens:          tokens,
		CookieSecure:    cfg.CookieSecure,
		Production:      cfg.IsProduction(),
		LoginRateLimit:  cfg.LoginRateLimit,
		LoginRateWindow: cfg.LoginRateWindow,
	})

	srv := &http.Server{
		Addr:              cfg.AppAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-sigCtx.Done()
	slog.Info("shutting down server")

	// Leave room for a subscribe request sitting in its payment delay.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second+cfg.PaymentDelay)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func openDatabase(ctx context.Context, cfg *config.Config) (domain.Database, error) {
	switch cfg.StoreBackend {
	case config.BackendSQLite:
		return sqlite.New(cfg.DatabasePath)
	case config.BackendRedis:
		return redis.New(ctx, cfg.RedisAddr, cfg.RedisPrefix)
	case config.BackendPostgres:
		return postgres.New(ctx, cfg.PGDSN)
	case config.BackendMemory:
		return memory.New(), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

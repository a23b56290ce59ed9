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

	"github.com/joho/godotenv"

	"github.com/alanhoff/apostrophe-people/internal/auth"
	"github.com/alanhoff/apostrophe-people/internal/config"
	"github.com/alanhoff/apostrophe-people/internal/groups"
	"github.com/alanhoff/apostrophe-people/internal/model"
	"github.com/alanhoff/apostrophe-people/internal/people"
	"github.com/alanhoff/apostrophe-people/internal/permission"
	"github.com/alanhoff/apostrophe-people/internal/ratelimit"
	"github.com/alanhoff/apostrophe-people/internal/server"
	"github.com/alanhoff/apostrophe-people/internal/storage"
	"github.com/alanhoff/apostrophe-people/internal/telemetry"
	"github.com/alanhoff/apostrophe-people/migrations"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run0())
}

func run0() int {
	level := slog.LevelInfo
	if os.Getenv("PEOPLE_LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, logger); err != nil {
		slog.Error("fatal error", "error", err)
		return 1
	}
	return 0
}

func run(ctx context.Context, logger *slog.Logger) error {
	// Load .env file if present (non-fatal; production won't have one).
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	slog.Info("people starting", "version", version, "port", cfg.Port)

	// Initialize OpenTelemetry.
	otelShutdown, err := telemetry.Init(ctx, cfg.OTELEndpoint, cfg.ServiceName, version, true)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() { _ = otelShutdown(context.Background()) }()

	// Connect to database and bring the schema up to date.
	db, err := storage.New(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer db.Close()

	if err := db.RunMigrations(ctx, migrations.FS); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	// Create JWT manager.
	jwtMgr, err := auth.NewJWTManager(cfg.JWTPrivateKeyPath, cfg.JWTPublicKeyPath, cfg.JWTExpiration)
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}

	// Permission service with the people gate installed.
	perms := permission.NewService(logger)
	people.RegisterGate(perms)

	groupSvc := groups.NewService(db, logger)
	peopleSvc := people.NewService(db, groupSvc, perms, logger)

	// Make sure a generic directory page exists so permalinks always
	// resolve, even before any group gets its own page.
	if err := seedFallbackPage(ctx, db, logger); err != nil {
		slog.Warn("fallback page seed failed", "error", err)
	}

	// Rate limiter for mutation endpoints.
	var limiter ratelimit.Limiter
	if cfg.RateLimitEnabled {
		limiter = ratelimit.NewMemoryLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		defer func() { _ = limiter.Close() }()
		logger.Info("rate limiting: memory (in-process token bucket)",
			"rps", cfg.RateLimitRPS, "burst", cfg.RateLimitBurst)
	} else {
		logger.Info("rate limiting: disabled")
	}

	srv := server.New(server.ServerConfig{
		PeopleSvc:           peopleSvc,
		JWTMgr:              jwtMgr,
		Logger:              logger,
		Pinger:              db,
		Limiter:             limiter,
		Port:                cfg.Port,
		ReadTimeout:         cfg.ReadTimeout,
		WriteTimeout:        cfg.WriteTimeout,
		Version:             version,
		MaxRequestBodyBytes: cfg.MaxRequestBodyBytes,
	})

	// Start HTTP server in background.
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or server error.
	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	slog.Info("people shutting down")

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer httpCancel()
	if err := srv.Shutdown(httpCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}

	slog.Info("people stopped")
	return nil
}

// seedFallbackPage creates the generic directory page if none exists.
func seedFallbackPage(ctx context.Context, db *storage.DB, logger *slog.Logger) error {
	_, err := db.FallbackPage(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	page, err := db.SavePage(ctx, model.Page{
		Slug:  "people",
		Title: "People",
		Type:  "directory",
	})
	if err != nil {
		return err
	}
	logger.Info("fallback directory page created", "id", page.ID, "slug", page.Slug)
	return nil
}

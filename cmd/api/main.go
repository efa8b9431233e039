package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"blog/internal/config"
	"blog/internal/infra/db"
	"blog/internal/observability/logging"
	"blog/internal/observability/tracing"
)

const (
	shutdownTimeout  = 5 * time.Second
	cleanupInterval  = 5 * time.Minute
	statsInterval    = 30 * time.Second
	readHeaderLimit  = 10 * time.Second
	tracingFlushWait = 2 * time.Second
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.NewLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	shutdownTracing := tracing.Init(cfg.TraceSampleRatio)
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), tracingFlushWait)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("failed to flush traces", slog.Any("error", err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	a, err := newApp(cfg, logger, database)
	if err != nil {
		return err
	}

	return serve(ctx, cfg, logger, a)
}

// openDatabase connects to the configured driver and applies the schema.
func openDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	dsn := cfg.DB.URL
	if cfg.DB.Driver == db.DriverSQLite {
		dsn = cfg.DB.SQLitePath
	}

	database, err := db.Open(ctx, db.Options{
		Driver: cfg.DB.Driver,
		DSN:    dsn,
		Pool: db.ConnectionConfig{
			MaxOpenConns:    cfg.DB.MaxOpenConns,
			MaxIdleConns:    cfg.DB.MaxIdleConns,
			ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.DB.ConnMaxIdleTime,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Migrate(database, cfg.DB.Driver); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return database, nil
}

// serve runs the HTTP server and the background loops until ctx is cancelled,
// then drains in-flight requests.
func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger, a *app) error {
	g, gctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           a.Handler,
		ReadHeaderTimeout: readHeaderLimit, // Prevent Slowloris attacks
		BaseContext: func(_ net.Listener) context.Context {
			return gctx
		},
	}

	g.Go(func() error {
		logger.Info("server starting",
			slog.String("addr", cfg.HTTPAddr),
			slog.String("version", cfg.Version),
			slog.String("db_driver", cfg.DB.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		a.LoginLimiter.StartCleanup(gctx, cleanupInterval)
		return nil
	})

	g.Go(func() error {
		a.recordStats(gctx, statsInterval)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		logger.Info("server stopped")
		return nil
	})

	return g.Wait()
}

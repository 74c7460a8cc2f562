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

	"github.com/crucial707/hci-users/internal/config"
	"github.com/crucial707/hci-users/internal/db"
	"github.com/crucial707/hci-users/internal/logging"
	"github.com/crucial707/hci-users/internal/metrics"
	"github.com/crucial707/hci-users/internal/middleware"
	"github.com/crucial707/hci-users/internal/repo"
	"github.com/crucial707/hci-users/internal/scheduler"
)

const (
	shutdownTimeout  = 15 * time.Second
	limiterPruneSpec = "@every 10m"
	limiterIdle      = 30 * time.Minute
)

func main() {
	if err := run(); err != nil {
		slog.Error("api exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.Setup(os.Stdout, cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return err
	}

	opts := db.Options{
		Host:         cfg.DBHost,
		Port:         cfg.DBPort,
		Name:         cfg.DBName,
		User:         cfg.DBUser,
		Password:     cfg.DBPass,
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
	}
	database, err := db.Connect(opts)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer database.Close()
	logger.Info("connected to database", "host", cfg.DBHost, "name", cfg.DBName)

	if cfg.MigrateOnStart {
		version, err := db.Migrate(opts)
		if err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("schema up to date", "version", version)
	}

	limiter := middleware.CredentialRateLimiter()
	handler, err := newRouter(database, cfg, limiter)
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ==========================
	// Background jobs
	// ==========================
	userRepo := repo.NewUserRepo(database)
	jobErr := make(chan error, 1)
	go func() {
		jobErr <- scheduler.Run(ctx, logger,
			scheduler.Job{
				Name: "users-registered",
				Spec: cfg.StatsRefreshCron,
				Task: func(ctx context.Context) {
					n, err := userRepo.Count(ctx)
					if err != nil {
						logger.Warn("refresh users_registered failed", "error", err)
						return
					}
					metrics.SetUsersRegistered(n)
				},
			},
			scheduler.Job{
				Name: "rate-limiter-prune",
				Spec: limiterPruneSpec,
				Task: func(context.Context) {
					if n := limiter.Prune(limiterIdle); n > 0 {
						logger.Debug("pruned idle rate limiter clients", "removed", n)
					}
				},
			},
		)
	}()

	// ==========================
	// HTTP server
	// ==========================
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", srv.Addr, "tls", cfg.UseTLS(), "env", cfg.Env)
		if cfg.UseTLS() {
			serveErr <- srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
			return
		}
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case err := <-jobErr:
		if err != nil {
			stop()
			shutdown(srv, logger)
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdown(srv, logger)
	return nil
}

func shutdown(srv *http.Server, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

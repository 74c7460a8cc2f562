package main

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/crucial707/hci-users/internal/auth"
	"github.com/crucial707/hci-users/internal/config"
	"github.com/crucial707/hci-users/internal/handlers"
	"github.com/crucial707/hci-users/internal/middleware"
	"github.com/crucial707/hci-users/internal/repo"
	"github.com/crucial707/hci-users/internal/users"
	"github.com/crucial707/hci-users/internal/views"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultTokenTTL = 24 * time.Hour

// newRouter wires repositories, services and handlers onto a chi router.
// limiter guards the credential routes; nil means middleware.CredentialRateLimiter().
func newRouter(database *sql.DB, cfg config.Config, limiter *middleware.IPRateLimiter) (http.Handler, error) {
	logger := slog.Default()
	if limiter == nil {
		limiter = middleware.CredentialRateLimiter()
	}
	proxies, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return nil, err
	}
	limiter.TrustProxies(proxies)

	renderer, err := views.New()
	if err != nil {
		return nil, err
	}

	// ==========================
	// Collaborators
	// ==========================
	userRepo := repo.NewUserRepo(database)
	auditRepo := repo.NewAuditRepo(database)
	userService := users.NewService(userRepo, logger)

	ttl := time.Duration(cfg.JWTExpireHours) * time.Hour
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	tokens := auth.NewTokens([]byte(cfg.JWTSecret), ttl)
	gate := auth.AnyGate{
		&auth.BearerGate{Users: userService, Tokens: tokens},
		&auth.BasicGate{Users: userService, Tokens: tokens},
	}
	requireAuth := auth.Require(gate, logger)

	translator := &handlers.ErrorTranslator{Logger: logger, Expose: cfg.ExposeErrors}
	userHandler := &handlers.UserHandler{
		Users:        userService,
		AuditRepo:    auditRepo,
		Views:        renderer,
		Logger:       logger,
		ExposeErrors: cfg.ExposeErrors,
	}
	tokenHandler := &handlers.TokenHandler{Tokens: tokens, AuditRepo: auditRepo, Logger: logger}

	// ==========================
	// Router
	// ==========================
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLog(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(cfg.UseTLS()))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok\n"))
	})
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := database.PingContext(r.Context()); err != nil {
			logger.Warn("readiness check failed", "error", err)
			handlers.JSONError(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ready\n"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// ==========================
	// Users
	// ==========================
	r.Get("/users", handlers.Negotiate(
		translator.Wrap(userHandler.ListUsers),
		requireAuth(translator.Wrap(userHandler.ListUsersPage)),
	))
	r.With(limiter.Middleware, middleware.MaxBytes(middleware.DefaultMaxBodyBytes)).
		Post("/users", translator.Wrap(userHandler.CreateUser))
	r.With(requireAuth).Get("/users/{id}", handlers.Negotiate(
		translator.Wrap(userHandler.GetUser),
		translator.Wrap(userHandler.UserDetailPage),
	))

	// ==========================
	// Token
	// ==========================
	r.With(limiter.Middleware, requireAuth).Get("/token", translator.Wrap(tokenHandler.IssueToken))

	return r, nil
}

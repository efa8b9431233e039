package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"blog/internal/config"
	hhttp "blog/internal/handler/http"
	"blog/internal/handler/http/admin"
	"blog/internal/handler/http/article"
	hauth "blog/internal/handler/http/auth"
	"blog/internal/handler/http/middleware"
	"blog/internal/handler/http/requestid"
	"blog/internal/infra/adapter/persistence/postgres"
	"blog/internal/infra/adapter/persistence/sqlite"
	"blog/internal/infra/db"
	"blog/internal/observability/metrics"
	"blog/internal/observability/tracing"
	"blog/internal/repository"
	"blog/internal/resilience/circuitbreaker"
	authservice "blog/internal/service/auth"
	artUC "blog/internal/usecase/article"
	commentUC "blog/internal/usecase/comment"
)

// app is the fully wired server: the handler plus the pieces main needs to
// run background work against.
type app struct {
	Handler      http.Handler
	Auth         *authservice.AuthService
	Articles     *artUC.Service
	LoginLimiter *middleware.RateLimiter
	DB           *sql.DB
}

type repos struct {
	articles repository.ArticleRepository
	comments repository.CommentRepository
	users    repository.UserRepository
}

// newRepos picks the store implementation for the configured driver.
func newRepos(driver string, q db.Querier) (repos, error) {
	switch driver {
	case db.DriverPostgres:
		return repos{
			articles: postgres.NewArticleRepo(q),
			comments: postgres.NewCommentRepo(q),
			users:    postgres.NewUserRepo(q),
		}, nil
	case db.DriverSQLite:
		return repos{
			articles: sqlite.NewArticleRepo(q),
			comments: sqlite.NewCommentRepo(q),
			users:    sqlite.NewUserRepo(q),
		}, nil
	default:
		return repos{}, fmt.Errorf("%w: %q", db.ErrUnsupportedDriver, driver)
	}
}

// newAuthService builds the auth service with the configured password policy.
func newAuthService(cfg *config.Config, users repository.UserRepository) (*authservice.AuthService, error) {
	policy, err := config.PasswordPolicyFrom(cfg.SecurityConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load password policy: %w", err)
	}
	return authservice.NewAuthService(users, cfg.Session.Secret, cfg.Session.TTL,
		authservice.WithRequirements(authservice.CredentialRequirements{
			MinPasswordLength: policy.MinLength,
			WeakPasswords:     policy.WeakPasswords,
		}),
	), nil
}

func newApp(cfg *config.Config, logger *slog.Logger, database *sql.DB) (*app, error) {
	breaker := circuitbreaker.NewDBCircuitBreaker(database)

	r, err := newRepos(cfg.DB.Driver, breaker)
	if err != nil {
		return nil, err
	}

	authSvc, err := newAuthService(cfg, r.users)
	if err != nil {
		return nil, err
	}

	articles := &artUC.Service{Repo: r.articles}
	comments := &commentUC.Service{
		Repo:     r.comments,
		Articles: r.articles,
		Throttle: commentUC.NewThrottle(cfg.Comments.RatePerMinute, cfg.Comments.Burst),
	}

	proxies, err := middleware.ParseTrustedProxies(cfg.HTTP.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("parse TRUSTED_PROXIES: %w", err)
	}
	if proxies.Enabled {
		logger.Info("trusted proxy mode enabled", slog.Int("trusted_proxies_count", len(proxies.Prefixes)))
	}
	// レート制限: ログインとトークン発行はIPごとに制限
	loginLimiter := middleware.NewRateLimiter(cfg.Login.RateLimit, cfg.Login.RateWindow, middleware.NewIPExtractor(proxies))

	mux := http.NewServeMux()
	article.Register(mux, articles, comments)
	hauth.Register(mux, hauth.LoginHandler{
		Svc:          authSvc,
		TTL:          cfg.Session.TTL,
		SecureCookie: cfg.Session.CookieSecure,
		Limit:        loginLimiter.Middleware,
	})
	admin.Register(mux, articles, comments)

	// ヘルスチェックエンドポイント（認証不要）
	mux.Handle("GET /health", &hhttp.HealthHandler{DB: database, Breaker: breaker, Version: cfg.Version})
	mux.Handle("GET /ready", &hhttp.ReadyHandler{DB: database, Breaker: breaker})
	mux.HandleFunc("GET /live", hhttp.Live)
	mux.Handle("GET /metrics", hhttp.MetricsHandler())

	csp := middleware.NewCSPMiddleware(middleware.CSPMiddlewareConfig{
		Enabled:       cfg.CSP.Enabled,
		DefaultPolicy: middleware.PagePolicy(),
		PathPolicies: map[string]middleware.Policy{
			"/admin/": middleware.APIPolicy(),
			"/auth/":  middleware.APIPolicy(),
		},
		ReportOnly: cfg.CSP.ReportOnly,
	})
	if !cfg.CSP.Enabled {
		logger.Warn("CSP is disabled")
	}

	// Outermost first: the request id and span exist before anything logs.
	handler := hhttp.Chain(tracing.Route(mux),
		requestid.Middleware,
		tracing.Middleware,
		hhttp.Recover(logger),
		hhttp.Logging(logger),
		hhttp.InputValidation(cfg.HTTP.MaxBodyBytes),
		hhttp.Timeout(cfg.HTTP.RequestTimeout),
		csp.Middleware(),
		hhttp.MetricsMiddleware,
		hauth.Session(authSvc),
	)

	return &app{
		Handler:      handler,
		Auth:         authSvc,
		Articles:     articles,
		LoginLimiter: loginLimiter,
		DB:           database,
	}, nil
}

// recordStats refreshes the article and pool gauges until ctx is cancelled.
func (a *app) recordStats(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		a.refreshStats(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (a *app) refreshStats(ctx context.Context) {
	metrics.RecordDBStats(a.DB.Stats())

	n, err := a.Articles.Count(ctx)
	if err != nil {
		if ctx.Err() == nil {
			slog.Warn("stats: failed to count articles", slog.Any("error", err))
		}
		return
	}
	metrics.UpdateArticlesTotal(n)
}

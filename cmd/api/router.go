package main

import (
	"fmt"
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/todomanager/todomanager/internal/config"
	"github.com/todomanager/todomanager/internal/handler"
	"github.com/todomanager/todomanager/internal/identity"
	"github.com/todomanager/todomanager/internal/metrics"
	"github.com/todomanager/todomanager/internal/middleware"
	"github.com/todomanager/todomanager/internal/service"
	"github.com/todomanager/todomanager/internal/web"
)

// routerDeps are the constructed services the router exposes.
type routerDeps struct {
	cfg      *config.Config
	logger   *slog.Logger
	recorder *metrics.InMemoryRecorder
	limiter  middleware.RateLimiter

	// provider creates accounts; tokens verifies bearer tokens for /api.
	provider identity.Provider
	tokens   identity.Verifier
	sessions *identity.SessionVerifier

	todos    *service.TodoService
	tasks    *service.TaskService
	accounts *service.AccountService
	health   []handler.Dependency
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(d routerDeps) (*chi.Mux, error) {
	cfg, logger := d.cfg, d.logger

	h := handler.New()
	healthHandler := handler.NewHealthHandler(logger, d.health...)
	metricsHandler := handler.NewMetricsHandler(d.recorder)
	accountHandler := handler.NewAccountHandler(d.provider, d.tokens, logger)
	todoHandler := handler.NewTodoHandler(d.todos, logger)
	sessionHandler := handler.NewSessionHandler(d.accounts, d.sessions, logger)
	taskHandler := handler.NewTaskHandler(d.tasks, logger)

	app, err := web.New(d.tasks, d.accounts, d.sessions, logger)
	if err != nil {
		return nil, fmt.Errorf("build web app: %w", err)
	}

	security := middleware.DefaultSecurityConfig()
	security.IsDevelopment = cfg.IsDevelopment()

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.GetCORSAllowedOrigins()

	rateLimit := middleware.RateLimitConfig{
		Logger:            logger,
		Limiter:           d.limiter,
		Enabled:           cfg.RateLimitEnabled && d.limiter != nil,
		RequestsPerMinute: cfg.RateLimitRPM,
		Burst:             cfg.RateLimitBurst,
	}

	resourceID := middleware.ResourceID(handler.TodoIDParam, "Todo not found")

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.StripSlashes)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger, cfg.IsDevelopment()))
	r.Use(middleware.Security(security))
	r.Use(middleware.CORS(cors))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	// Probes and service info
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	r.Get("/metrics", metricsHandler.Metrics)
	r.Get("/", h.Hello)

	// Document API, bearer tokens
	r.Route("/api", func(r chi.Router) {
		r.Post("/signup", accountHandler.Signup)
		r.Post("/login", accountHandler.Login)
		r.Post("/token", accountHandler.Token)

		r.Route("/todos", func(r chi.Router) {
			r.Use(middleware.Identity(middleware.IdentityConfig{
				Logger:         logger,
				Verifier:       d.tokens,
				Metrics:        d.recorder,
				TrustUIDHeader: cfg.TrustUIDHeader,
			}))
			r.Use(middleware.RateLimitUser(rateLimit))

			r.Get("/", todoHandler.List)
			r.Post("/", todoHandler.Create)
			r.Route("/{"+handler.TodoIDParam+"}", func(r chi.Router) {
				r.Use(resourceID)
				r.Get("/", todoHandler.Get)
				r.Put("/", todoHandler.Update)
				r.Patch("/", todoHandler.Update)
				r.Delete("/", todoHandler.Delete)
			})
		})
	})

	// Relational API, cookie sessions
	r.Route("/rest", func(r chi.Router) {
		r.Post("/auth/register", sessionHandler.Register)
		r.Post("/auth/login", sessionHandler.Login)
		r.Post("/auth/logout", sessionHandler.Logout)

		r.Route("/todos", func(r chi.Router) {
			r.Use(middleware.RequireSession(middleware.SessionConfig{
				Logger:   logger,
				Verifier: d.sessions,
				Metrics:  d.recorder,
			}))
			r.Use(middleware.RateLimitUser(rateLimit))

			r.Get("/", taskHandler.List)
			r.Post("/", taskHandler.Create)
			r.Get("/completed", taskHandler.Completed)
			r.Get("/pending", taskHandler.Pending)
			r.Route("/{"+handler.TodoIDParam+"}", func(r chi.Router) {
				r.Use(resourceID)
				r.Get("/", taskHandler.Get)
				r.Put("/", taskHandler.Replace)
				r.Patch("/", taskHandler.Patch)
				r.Delete("/", taskHandler.Delete)
				r.Post("/toggle_complete", taskHandler.Toggle)
			})
		})
	})

	// Server-rendered pages
	htmlSecurity := security
	htmlSecurity.ContentSecurityPolicy = middleware.HTMLContentSecurityPolicy
	r.With(middleware.Security(htmlSecurity)).Mount(web.Base, app.Routes(
		middleware.RequireSession(middleware.SessionConfig{
			Logger:          logger,
			Verifier:        d.sessions,
			Metrics:         d.recorder,
			Unauthenticated: app.LoginRedirect(),
		}),
	))

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r, nil
}

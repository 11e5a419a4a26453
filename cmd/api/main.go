// Command api serves the document todo API, the relational REST API and the
// server-rendered todo app.
package main

import (
	"context"
	"log/slog"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"github.com/todomanager/todomanager/internal/cache"
	"github.com/todomanager/todomanager/internal/config"
	"github.com/todomanager/todomanager/internal/docstore"
	"github.com/todomanager/todomanager/internal/handler"
	"github.com/todomanager/todomanager/internal/identity"
	"github.com/todomanager/todomanager/internal/metrics"
	"github.com/todomanager/todomanager/internal/middleware"
	"github.com/todomanager/todomanager/internal/repository"
	"github.com/todomanager/todomanager/internal/server"
	"github.com/todomanager/todomanager/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	repo, err := repository.New(ctx, cfg.DatabaseURL, repository.PoolOptions{
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL, cache.PoolOptions{PoolSize: cfg.RedisPoolSize})
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		repo.Close()
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	var app *firebase.App
	if cfg.NeedsFirebase() {
		app, err = firebase.NewApp(ctx,
			&firebase.Config{ProjectID: cfg.FirebaseProjectID},
			option.WithCredentialsFile(cfg.FirebaseCredentialsFile),
		)
		if err != nil {
			logger.Error("failed to initialize firebase", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	store, fsClient, err := openDocstore(ctx, cfg, app)
	if err != nil {
		logger.Error("failed to open document store",
			slog.String("backend", cfg.DocstoreBackend),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	provider, err := newIdentityProvider(ctx, cfg, app, repo, logger)
	if err != nil {
		logger.Error("failed to initialize identity provider",
			slog.String("provider", cfg.IdentityProvider),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	recorder := metrics.NewInMemory()
	sessions := identity.NewSessionVerifier(cacheClient, cfg.SessionTTL)

	r, err := setupRouter(routerDeps{
		cfg:      cfg,
		logger:   logger,
		recorder: recorder,
		limiter:  cacheClient,
		provider: provider,
		tokens:   identity.NewCachingVerifier(provider, cacheClient, recorder, logger),
		sessions: sessions,
		todos:    service.NewTodoService(store, recorder, logger),
		tasks:    service.NewTaskService(repo, recorder, logger),
		accounts: service.NewAccountService(repo, logger),
		health: []handler.Dependency{
			{Name: "postgres", Checker: repo},
			{Name: "redis", Checker: cacheClient},
			{Name: "docstore", Checker: store},
		},
	})
	if err != nil {
		logger.Error("failed to build router", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv := server.New(r, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(context.Context) error {
		return cacheClient.Close()
	})
	if fsClient != nil {
		srv.OnShutdown("firestore", func(context.Context) error {
			return fsClient.Close()
		})
	}

	logger.Info("starting server",
		slog.Int("port", cfg.AppPort),
		slog.String("env", cfg.AppEnv),
		slog.String("docstore", cfg.DocstoreBackend),
		slog.String("identity", cfg.IdentityProvider),
		slog.Bool("trust_uid_header", cfg.TrustUIDHeader),
	)
	if cfg.TrustUIDHeader {
		logger.Warn("unsigned identity header accepted", slog.String("header", middleware.UIDHeader))
	}

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// openDocstore returns the configured document store. The Firestore client
// is returned separately so it can be closed on shutdown.
func openDocstore(ctx context.Context, cfg *config.Config, app *firebase.App) (docstore.Store, *firestore.Client, error) {
	if cfg.DocstoreBackend == config.DocstoreMemory {
		return docstore.NewMemoryStore(), nil, nil
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, nil, err
	}
	return docstore.NewFirestoreStore(client, cfg.FirestoreCollection), client, nil
}

func newIdentityProvider(ctx context.Context, cfg *config.Config, app *firebase.App, repo *repository.Repository, logger *slog.Logger) (identity.Provider, error) {
	if cfg.IdentityProvider == config.IdentityLocal {
		return identity.NewLocalProvider(repo, cfg.JWTSecret, cfg.TokenTTL, logger), nil
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, err
	}
	return identity.NewFirebaseProvider(client, logger), nil
}

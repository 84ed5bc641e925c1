package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	oauthadapter "github.com/ericfisherdev/pike13bridge/internal/adapter/driven/oauth"
	pike13adapter "github.com/ericfisherdev/pike13bridge/internal/adapter/driven/pike13"
	redisadapter "github.com/ericfisherdev/pike13bridge/internal/adapter/driven/redis"
	sqliteadapter "github.com/ericfisherdev/pike13bridge/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/pike13bridge/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/pike13bridge/internal/adapter/driving/web"
	"github.com/ericfisherdev/pike13bridge/internal/application"
	"github.com/ericfisherdev/pike13bridge/internal/config"
	"github.com/ericfisherdev/pike13bridge/internal/domain/port/driven"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on missing required env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"subdomain", cfg.Subdomain,
		"api_base_url", cfg.APIBaseURL,
		"redirect_uri", cfg.RedirectURI,
		"token_backend", cfg.TokenBackend,
		"field_name", cfg.FieldName,
	)
	if !cfg.HasSecretKey() {
		slog.Warn("PIKE13BRIDGE_SECRET_KEY not set: sessions reset on restart and the stored token is not encrypted")
	}

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open the durable token store.
	tokenStore, closeStore, err := openTokenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	// 4. Wire driven adapters.
	api, err := pike13adapter.NewClient(cfg.APIBaseURL)
	if err != nil {
		return err
	}
	provider := oauthadapter.NewProvider(cfg.ClientID, cfg.ClientSecret, cfg.RedirectURI, cfg.AuthorizeURL(), cfg.TokenURL())

	// 5. Create application services.
	credSvc := application.NewCredentialService(tokenStore, slog.Default())
	resolver := application.NewFieldResolver(api, cfg.FieldName)
	engine := application.NewUpdateEngine(api, slog.Default())

	// 6. Create HTTP handlers and register routes.
	sessions := httphandler.NewSessionStore(cfg.SecretKey, strings.HasPrefix(cfg.RedirectURI, "https://"))
	apiHandler := httphandler.NewHandler(sessions, provider, credSvc, resolver, engine, api, slog.Default())
	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, apiHandler)

	webHandler := webhandler.NewHandler(credSvc, sessions, httphandler.LoginPath, cfg.FieldName, slog.Default())
	webhandler.RegisterRoutes(mux, webHandler)

	// Apply middleware.
	handler := httphandler.ApplyMiddleware(mux, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
			stop()
		}
	}()

	// 7. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 8. Graceful shutdown with 10s timeout for in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

// openTokenStore opens the configured durable token backend. The returned
// func releases it.
func openTokenStore(ctx context.Context, cfg *config.Config) (driven.TokenStore, func(), error) {
	switch cfg.TokenBackend {
	case config.TokenBackendRedis:
		client, err := redisadapter.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("redis token store connected")
		return redisadapter.NewTokenStore(client, "pike13bridge:"+cfg.Subdomain), func() {
			if err := client.Close(); err != nil {
				slog.Error("error closing redis client", "error", err)
			}
		}, nil

	case config.TokenBackendSQLite:
		// Dual reader/writer with WAL mode.
		db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		slog.Info("database opened", "path", db.Path())
		return sqliteadapter.NewCredentialRepo(db, cfg.SecretKey), func() {
			if err := db.Close(); err != nil {
				slog.Error("error closing database", "error", err)
			}
		}, nil

	default:
		return nil, nil, fmt.Errorf("unknown token backend %q", cfg.TokenBackend)
	}
}

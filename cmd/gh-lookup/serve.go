package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/vilaca/gh-lookup/internal/api/github"
	"github.com/vilaca/gh-lookup/internal/config"
	"github.com/vilaca/gh-lookup/internal/httpserver"
	"github.com/vilaca/gh-lookup/internal/metrics"
	"github.com/vilaca/gh-lookup/internal/middleware"
	"github.com/vilaca/gh-lookup/internal/service"
	"github.com/vilaca/gh-lookup/internal/theme"
	"github.com/vilaca/gh-lookup/internal/web"
)

const sessionCleanupInterval = time.Minute

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewLoader().Load(*configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			logger := setupLogger(cfg, os.Stdout)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cfg, logger)
		},
	}
}

// application is everything the serve command starts and stops.
type application struct {
	server   *httpserver.Server
	sessions *web.Sessions
	metrics  *metrics.Metrics
	closers  []func() error
}

// close releases resources in reverse creation order.
func (a *application) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// buildApplication wires up all dependencies.
// This is the composition root where all dependencies are created and injected.
func buildApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	app.metrics = metrics.New(registry)

	store, closeStore, err := buildThemeStore(cfg, logger)
	if err != nil {
		return nil, err
	}
	if closeStore != nil {
		app.closers = append(app.closers, closeStore)
	}

	renderer, err := web.NewHTMLRenderer()
	if err != nil {
		_ = app.close()
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	client, err := newGitHubClient(cfg, github.WithObserver(app.metrics))
	if err != nil {
		_ = app.close()
		return nil, err
	}
	lookupService := service.NewLookupService(client, logger, app.metrics)
	app.sessions = web.NewSessions(cfg.Session.IdleTimeout)

	handler := web.NewHandler(web.HandlerConfig{
		Renderer:       renderer,
		Logger:         logger,
		LookupService:  lookupService,
		Preferences:    theme.NewPreferences(store, logger),
		Sessions:       app.sessions,
		Recorder:       app.metrics,
		MetricsHandler: app.metrics.Handler(),
		CookieName:     cfg.Session.CookieName,
		SecureCookie:   cfg.Session.SecureCookie,
	})

	app.server = httpserver.NewServer(httpserver.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, logger)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.Logger = logger
	app.server.Use(middleware.Recovery(logger), middleware.Logging(loggingConfig))
	handler.RegisterRoutes(app.server.Echo())

	return app, nil
}

// buildThemeStore returns the configured preference store and an optional close function.
func buildThemeStore(cfg *config.Config, logger *slog.Logger) (theme.Store, func() error, error) {
	switch cfg.Theme.Store {
	case config.ThemeStoreFile:
		return theme.NewFileStore(cfg.Theme.FilePath, logger), nil, nil

	case config.ThemeStoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}

		store := theme.NewRedisStore(theme.RedisStoreConfig{
			Client: client,
			TTL:    365 * 24 * time.Hour,
		})
		return store, client.Close, nil

	default:
		return theme.NewMemoryStore(), nil, nil
	}
}

// runServe starts the server and blocks until ctx is cancelled, then shuts down gracefully.
func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	app, err := buildApplication(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.close(); err != nil {
			logger.Error("failed to release resources", slog.Any("error", err))
		}
	}()

	logger.Info("gh-lookup starting",
		slog.String("version", version),
		slog.String("github_api", cfg.GitHub.APIURL),
		slog.String("theme_store", cfg.Theme.Store),
	)

	go app.sessions.Run(ctx, sessionCleanupInterval, app.metrics.SetActiveSessions)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	if err := app.server.Shutdown(context.Background()); err != nil {
		return err
	}
	return <-errCh
}

// Package cli provides the initialization shared by cmd/kharcha and
// cmd/kharcha-cli: environment, logging, storage backend, caches, the
// optional AMQP publisher and the ledger service.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"kharcha/internal/amqp"
	"kharcha/internal/backend"
	"kharcha/internal/cache"
	"kharcha/internal/config"
	"kharcha/internal/log"
	"kharcha/internal/services"
	"kharcha/internal/storage"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the text logger for cfg's level, writing to out, and
// makes it the slog default.
func SetupLogger(cfg *config.Config, out io.Writer, component string) *log.Logger {
	logger := log.New(log.Config{
		Level:     cfg.Level(),
		Component: component,
		Output:    out,
	})
	log.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration from the environment and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// App bundles the ledger service with the resources it was built from.
type App struct {
	Config  *config.Config
	Logger  *log.Logger
	Service *services.LedgerService
	Caches  *cache.Manager

	publisher *amqp.Client
}

// OpenApp opens the configured backend and builds the ledger service on it.
// The AMQP publisher is optional: a broker that cannot be reached is logged
// and the app runs without events.
func OpenApp(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, Logger: logger, Caches: cache.NewManager(logger)}

	dashboards, err := cache.New[services.DashboardView](cfg.CacheKind, cfg.CacheSize, cfg.CacheTTL)
	if err != nil {
		_ = res.Cleanup()
		return nil, err
	}
	histories, err := cache.New[services.HistoryView](cfg.CacheKind, cfg.CacheSize, cfg.CacheTTL)
	if err != nil {
		_ = res.Cleanup()
		return nil, err
	}
	app.Caches.Register(dashboards)
	app.Caches.Register(histories)

	opts := services.Options{
		Logger:     logger,
		PageSize:   cfg.PageSize,
		Dashboards: dashboards,
		Histories:  histories,
	}
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.WithComponent(log.ComponentAMQP).WarnContext(ctx, "AMQP unavailable, ledger events disabled", log.FieldError, err.Error())
		} else {
			app.publisher = client
			opts.Publisher = client
		}
	}

	repo := storage.NewRepository(res.Store, cfg.Budget(), logger)
	svc, err := services.NewLedgerService(ctx, repo, opts)
	if err != nil {
		_ = res.Cleanup()
		if app.publisher != nil {
			_ = app.publisher.Close()
		}
		return nil, err
	}
	app.Service = svc

	logger.InfoContext(ctx, "Application initialized",
		log.FieldBackend, cfg.DataBackend,
		"cache", cfg.CacheKind,
		"events", app.publisher != nil)
	return app, nil
}

// Close drains the ledger service (which closes the store), releases the
// caches and then closes the AMQP connection.
func (a *App) Close() error {
	err := a.Service.Close()
	a.Caches.Stop()
	if a.publisher != nil {
		if perr := a.publisher.Close(); perr != nil && err == nil {
			err = fmt.Errorf("close amqp: %w", perr)
		}
	}
	return err
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// ShutdownTimeout bounds the graceful shutdown of the server.
const ShutdownTimeout = 30 * time.Second

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"kharcha/internal/cli"
	apphttp "kharcha/internal/http"
	"kharcha/internal/log"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		log.New(log.DefaultConfig()).Error("Configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg, os.Stdout, log.ComponentApp)

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	app, err := cli.OpenApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize application", log.FieldError, err.Error(), log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}

	srv := apphttp.NewServer(":"+cfg.Port, app.Service, apphttp.Options{
		Logger:    logger,
		RateLimit: cfg.RateLimit,
	})
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	app.Caches.StartCleanup(time.Minute)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting kharcha server", "port", cfg.Port, log.FieldBackend, cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cli.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	exitCode := 0
	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err.Error(), "port", cfg.Port)
		exitCode = 1
	}
	if err := app.Close(); err != nil {
		logger.Error("Failed to close application", log.FieldError, err.Error())
		exitCode = 1
	}
	if exitCode == 0 {
		logger.Info("Server stopped gracefully")
	}
	stop()
	os.Exit(exitCode)
}

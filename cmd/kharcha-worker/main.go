// Command kharcha-worker consumes the server's ledger events and keeps JSON
// and CSV backups of the shared sqlite store in BACKUP_DIRECTORY.
package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"kharcha/internal/amqp"
	"kharcha/internal/backend"
	"kharcha/internal/cli"
	"kharcha/internal/config"
	"kharcha/internal/log"
	"kharcha/internal/storage"
	"kharcha/internal/worker"
)

func main() {
	os.Exit(run())
}

func run() int {
	cli.LoadEnvFile()

	cfg, err := loadConfig()
	if err != nil {
		log.New(log.DefaultConfig()).Error("Configuration validation failed", log.FieldError, err.Error())
		return 1
	}
	logger := cli.SetupLogger(cfg, os.Stdout, log.ComponentWorker)
	logger.Info("Starting kharcha-worker", "dir", cfg.BackupDirectory, "interval", cfg.BackupInterval)

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err.Error())
		return 1
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to open store", log.FieldError, err.Error(), log.FieldBackend, cfg.DataBackend)
		return 1
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Failed to close store", log.FieldError, err.Error())
		}
	}()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err.Error())
		return 1
	}
	defer client.Close()

	repo := storage.NewRepository(res.Store, cfg.Budget(), logger)
	w := worker.NewBackupWorker(repo, cfg.BackupDirectory, logger)

	// A backup at startup covers events published while the worker was down.
	if err := w.Backup(ctx, log.OpStartup); err != nil {
		logger.Error("Startup backup failed", log.FieldError, err.Error())
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.Consume(gctx, w.HandleEvent)
	})
	g.Go(func() error {
		w.Run(gctx, cfg.BackupInterval)
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Event consumption failed", log.FieldError, err.Error())
		return 1
	}
	logger.Info("Worker stopped", log.FieldOperation, log.OpShutdown)
	return 0
}

func loadConfig() (*config.Config, error) {
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateWorker(); err != nil {
		return nil, err
	}
	return cfg, nil
}

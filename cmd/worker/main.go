// Package main is the entry point for the venueledger background worker.
// It generates the previous business day's DAILY report for every venue
// and expires idempotency keys.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"venueledger/internal/config"
	"venueledger/internal/domain/finance"
	"venueledger/internal/infrastructure/storage/postgres"
	"venueledger/internal/infrastructure/storage/postgres/report_repo"
	"venueledger/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(logger.WithLogger(context.Background(), log))
	defer cancel()

	log.Info("starting venueledger worker")

	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = 4
	poolCfg.MinConns = 1
	poolCfg.ApplicationName = "venueledger-worker"
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool, postgres.DefaultTxOptions())
	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to create audit service", "error", err)
	}

	financeService := finance.NewService(
		report_repo.NewSettingsRepo(txManager),
		report_repo.NewEventRepo(txManager),
		report_repo.NewReportRepo(txManager),
		txManager,
		txManager,
		auditService,
	)

	worker := NewWorker(financeService, postgres.NewIdempotencyStore(txManager, cfg.IdempotencyTTL), log, cfg.WorkerInterval)
	worker.onTick = func(ctx context.Context) { postgres.LogPoolStats(ctx, pool) }

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

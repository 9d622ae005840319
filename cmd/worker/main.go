package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"guardops_backend/internal/catalog"
	"guardops_backend/internal/costing"
	"guardops_backend/internal/events"
	"guardops_backend/internal/jobs"
	"guardops_backend/internal/payroll"
	"guardops_backend/internal/quotes"
	"guardops_backend/platform/config"
	"guardops_backend/platform/db"
	"guardops_backend/platform/logger"
	"guardops_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env).WithModule("worker")
	log.Info("starting worker", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	payrollModule := payroll.NewModule(pool, val, log)
	catalogModule := catalog.NewModule(pool, val, log)
	quotesModule := quotes.NewModule(pool, val, log)

	// The worker recomputes inline, so it carries no enqueuer of its own.
	costingModule := costing.NewModule(
		pool,
		val,
		log,
		payrollModule.Service(),
		quotesModule.Service(),
		catalogModule.Repository(),
		eventBus,
		nil,
	)

	worker, err := jobs.NewWorker(cfg, costingModule.Service(), log)
	if err != nil {
		log.Error("failed to initialize worker", "error", err)
		panic("failed to initialize worker: " + err.Error())
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("worker consuming tasks", "queue", cfg.AsynqQueueName)
		srvErr <- worker.Run()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, stopping worker")
		worker.Shutdown()
	case err := <-srvErr:
		if err != nil {
			log.Error("worker error", "error", err)
			panic("worker error: " + err.Error())
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return fmt.Errorf("%s: %w", name, lastErr)
}

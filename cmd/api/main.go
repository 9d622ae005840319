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
	costingservice "guardops_backend/internal/costing/service"
	"guardops_backend/internal/events"
	apphttp "guardops_backend/internal/http"
	"guardops_backend/internal/http/router"
	"guardops_backend/internal/jobs"
	"guardops_backend/internal/payroll"
	"guardops_backend/internal/quotes"
	"guardops_backend/migrations"
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

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

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

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)
	subscribeObservers(eventBus, log)

	jobsClient, closeJobs := initJobsClient(cfg, log)
	if closeJobs != nil {
		defer closeJobs()
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	payrollModule := payroll.NewModule(pool, val, log)
	catalogModule := catalog.NewModule(pool, val, log)
	quotesModule := quotes.NewModule(pool, val, log)

	var enqueuer costingservice.Enqueuer
	if jobsClient != nil {
		enqueuer = jobsClient
	}
	costingModule := costing.NewModule(
		pool,
		val,
		log,
		payrollModule.Service(),
		quotesModule.Service(),
		catalogModule.Repository(),
		eventBus,
		enqueuer,
	)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			payrollModule,
			catalogModule,
			quotesModule,
			costingModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// subscribeObservers attaches logging observers so recalculation outcomes
// show up in the logs regardless of which path triggered them.
func subscribeObservers(bus events.Bus, log *logger.Logger) {
	bus.Subscribe(events.EventQuoteCostsRecalculated, events.HandlerFunc(func(_ context.Context, e events.Event) error {
		if ev, ok := e.(events.QuoteCostsRecalculated); ok {
			log.Info("quote costs recalculated",
				"quoteId", ev.QuoteID,
				"monthlyTotalClp", ev.MonthlyTotalCLP,
				"salePriceMonthlyClp", ev.SalePriceMonthly,
				"totalGuards", ev.TotalGuards,
			)
		}
		return nil
	}))
}

func initJobsClient(cfg config.SchedulerConfig, log *logger.Logger) (*jobs.Client, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; quote recomputation runs inline only")
		return nil, nil
	}

	client, err := jobs.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize jobs client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
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

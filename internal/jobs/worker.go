package jobs

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"guardops_backend/platform/config"
	"guardops_backend/platform/logger"
)

// QuoteRecomputer is the costing operation the worker drives.
type QuoteRecomputer interface {
	RecomputeQuote(ctx context.Context, organizationID, quoteID uuid.UUID, force bool) error
}

// Worker consumes background tasks from redis.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	recompute QuoteRecomputer
	log       *logger.Logger
}

// NewWorker creates the asynq worker with its task handlers registered.
func NewWorker(cfg config.SchedulerConfig, recompute QuoteRecomputer, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:    server,
		mux:       mux,
		recompute: recompute,
		log:       log,
	}

	mux.HandleFunc(TaskRecomputeQuote, w.handleRecomputeQuote)

	return w, nil
}

// Run blocks serving tasks until Shutdown is called.
func (w *Worker) Run() error {
	return w.server.Run(w.mux)
}

// Shutdown stops the worker gracefully.
func (w *Worker) Shutdown() {
	w.server.Shutdown()
}

func (w *Worker) handleRecomputeQuote(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseRecomputeQuotePayload(task)
	if err != nil {
		return err
	}

	orgID, err := uuid.Parse(payload.OrganizationID)
	if err != nil {
		return fmt.Errorf("parse organization id: %w", err)
	}
	quoteID, err := uuid.Parse(payload.QuoteID)
	if err != nil {
		return fmt.Errorf("parse quote id: %w", err)
	}

	if err := w.recompute.RecomputeQuote(ctx, orgID, quoteID, payload.Force); err != nil {
		w.log.Error("quote recomputation failed",
			"quoteId", payload.QuoteID,
			"organizationId", payload.OrganizationID,
			"error", err,
		)
		return err
	}

	w.log.Info("quote recomputed", "quoteId", payload.QuoteID, "force", payload.Force)
	return nil
}

package waitlist

import (
	"context"
	"log/slog"
	"time"

	"icetea/pkg/logger"
	"icetea/pkg/metrics"
)

// JobProcessor runs waitlist maintenance in the background
type JobProcessor struct {
	repo    Repository
	config  *JobConfig
	metrics *metrics.Metrics
	logger  *logger.Logger
	done    chan struct{}
}

// JobConfig contains configuration for background jobs
type JobConfig struct {
	ReconcileInterval time.Duration
}

// DefaultJobConfig returns default job configuration
func DefaultJobConfig() *JobConfig {
	return &JobConfig{
		ReconcileInterval: 10 * time.Minute,
	}
}

func NewJobProcessor(repo Repository, m *metrics.Metrics, config *JobConfig) *JobProcessor {
	if config == nil {
		config = DefaultJobConfig()
	}

	return &JobProcessor{
		repo:    repo,
		config:  config,
		metrics: m,
		logger:  logger.GetDefault(),
		done:    make(chan struct{}),
	}
}

// Start launches the counter reconciler. It stops when ctx is cancelled or
// Stop is called.
func (jp *JobProcessor) Start(ctx context.Context) {
	jp.logger.Info("Starting waitlist background jobs",
		slog.Duration("reconcile_interval", jp.config.ReconcileInterval))
	go jp.runReconciler(ctx)
}

// Stop stops all background jobs
func (jp *JobProcessor) Stop() {
	jp.logger.Info("Stopping waitlist background jobs")
	close(jp.done)
}

func (jp *JobProcessor) runReconciler(ctx context.Context) {
	ticker := time.NewTicker(jp.config.ReconcileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-jp.done:
			return
		case <-ticker.C:
			jp.ReconcileOnce(ctx)
		}
	}
}

// ReconcileOnce repairs any drift between current_entrants and the entries.
func (jp *JobProcessor) ReconcileOnce(ctx context.Context) int {
	repaired, err := jp.repo.ReconcileCounters(ctx)
	if err != nil {
		jp.logger.WithError(err).ErrorContext(ctx, "Counter reconciliation failed")
	}
	if repaired > 0 {
		jp.logger.WarnContext(ctx, "Repaired entrant counters", slog.Int("events", repaired))
		jp.metrics.TrackCounterRepairs(repaired)
	}
	return repaired
}

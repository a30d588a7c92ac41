package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// RunnerConfig holds configuration for the sweep runner
type RunnerConfig struct {
	// Interval between consecutive sweep rounds.
	// If zero, defaults to one hour.
	Interval time.Duration
}

// DefaultRunnerConfig returns a RunnerConfig with reasonable defaults
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		Interval: time.Hour,
	}
}

// Runner triggers both reminder sweeps on a fixed interval. The first
// round runs immediately on Start so a restarted process never waits a
// full interval before catching up.
type Runner struct {
	service    *ReminderService
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	config     RunnerConfig
	logger     *slog.Logger
}

// NewRunner creates a new Runner around an already-constructed
// ReminderService.
func NewRunner(service *ReminderService, config RunnerConfig, logger *slog.Logger) *Runner {
	if config.Interval <= 0 {
		config.Interval = time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Runner{
		service:    service,
		ctx:        ctx,
		cancelFunc: cancel,
		wg:         sync.WaitGroup{},
		config:     config,
		logger:     logger.With("component", "reminder_runner"),
	}
}

// Start begins the sweep loop in the background.
func (r *Runner) Start() {
	r.wg.Add(1)
	go r.loop()
}

// Stop cancels the loop and waits for any in-flight round to finish.
func (r *Runner) Stop() {
	r.cancelFunc()
	r.wg.Wait()
}

func (r *Runner) loop() {
	defer r.wg.Done()

	r.logger.Debug("starting sweep loop", "interval", r.config.Interval)
	r.runOnce()

	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Debug("stopping sweep loop")
			return

		case <-ticker.C:
			r.runOnce()
		}
	}
}

// runOnce executes one round of both sweeps. A failing sweep is logged
// and the loop keeps its schedule; the store dedup key makes the next
// round safe to retry.
func (r *Runner) runOnce() {
	ctx := context.Background()

	if _, err := r.service.RunDeadlineSweep(ctx); err != nil {
		r.logger.Error("deadline sweep failed", "error", err)
	}

	if _, err := r.service.RunOverdueSweep(ctx); err != nil {
		r.logger.Error("overdue sweep failed", "error", err)
	}
}

package daemon

import (
	"context"
	"log/slog"
	"time"
)

// Runner executes a function on the goroutine that owns window state.
type Runner interface {
	Do(ctx context.Context, fn func()) error
}

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically re-reads window-manager state so that a missed
// notification cannot leave the managed set out of date.
type Reconciler struct {
	interval  time.Duration
	runner    Runner
	reconcile func()
	logger    *slog.Logger
}

// NewReconciler creates a new reconciler. reconcile runs through runner.
func NewReconciler(cfg ReconcilerConfig, runner Runner, reconcile func()) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		interval:  interval,
		runner:    runner,
		reconcile: reconcile,
		logger:    logger,
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.ReconcileNow(ctx)
		}
	}
}

// ReconcileNow performs a single reconciliation pass.
func (r *Reconciler) ReconcileNow(ctx context.Context) {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	if err := r.runner.Do(ctx, r.reconcile); err != nil && ctx.Err() == nil {
		r.logger.Warn("reconciler: pass skipped", "error", err)
	}
}

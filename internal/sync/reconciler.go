package sync

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"pos-sync-service/internal/config"
	"pos-sync-service/internal/logger"
)

// Reconciler drains the pending queue on a schedule, so queued sales reach
// the remote even when no connectivity edge ever fires.
type Reconciler struct {
	cfg          config.SchedulerConfig
	orchestrator *Orchestrator
	cron         *cron.Cron
	entryID      cron.EntryID
}

func NewReconciler(cfg config.SchedulerConfig, orchestrator *Orchestrator) *Reconciler {
	return &Reconciler{
		cfg:          cfg,
		orchestrator: orchestrator,
		cron:         cron.New(),
	}
}

// cronSpec accepts either a cron expression or a bare duration such as "30s".
func cronSpec(interval string) (string, error) {
	interval = strings.TrimSpace(interval)
	if interval == "" {
		return "", fmt.Errorf("scheduler interval is empty")
	}
	if d, err := time.ParseDuration(interval); err == nil {
		if d <= 0 {
			return "", fmt.Errorf("scheduler interval must be positive: %s", interval)
		}
		return "@every " + d.String(), nil
	}
	if _, err := cron.ParseStandard(interval); err != nil {
		return "", fmt.Errorf("invalid scheduler interval %q: %w", interval, err)
	}
	return interval, nil
}

func (r *Reconciler) Start() error {
	if !r.cfg.Enabled {
		logger.Log.Info("Reconciler is disabled")
		return nil
	}

	spec, err := cronSpec(r.cfg.Interval)
	if err != nil {
		return err
	}

	logger.Log.Info("Starting reconciler", zap.String("interval", spec))

	id, err := r.cron.AddFunc(spec, func() {
		r.Tick(r.orchestrator.ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reconcile job: %w", err)
	}

	r.entryID = id
	r.cron.Start()
	return nil
}

// Stop halts the schedule and waits for a running tick to finish.
func (r *Reconciler) Stop() {
	if r.cron != nil {
		<-r.cron.Stop().Done()
	}
	logger.Log.Info("Stopped reconciler")
}

// Tick runs one scheduled drain unless one is already in progress.
func (r *Reconciler) Tick(ctx context.Context) DrainResult {
	if r.orchestrator.IsDraining() {
		logger.Log.Debug("Drain already running, skipping scheduled run")
		return DrainResult{Skipped: true}
	}
	return r.orchestrator.Drain(ctx)
}

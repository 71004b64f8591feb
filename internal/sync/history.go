package sync

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pos-sync-service/internal/logger"
	"pos-sync-service/internal/store"
)

func (o *Orchestrator) beginRun(ctx context.Context, kind store.SyncRunKind) *store.SyncRun {
	run := &store.SyncRun{
		ID:        uuid.New().String(),
		Kind:      kind,
		StartedAt: o.now(),
		Status:    "running",
	}
	if err := o.local.CreateSyncRun(ctx, run); err != nil {
		logger.Log.Warn("Failed to record sync run", zap.String("kind", string(kind)), zap.Error(err))
	}
	return run
}

func (o *Orchestrator) finishRun(ctx context.Context, run *store.SyncRun, status string, runErr error) {
	done := o.now()
	run.CompletedAt = &done
	run.Status = status
	if runErr != nil {
		run.Error = runErr.Error()
	}
	// The cycle's own context may already be cancelled at shutdown.
	if err := o.local.UpdateSyncRun(context.WithoutCancel(ctx), run); err != nil {
		logger.Log.Warn("Failed to update sync run", zap.String("id", run.ID), zap.Error(err))
	}
}

package sync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-sync-service/internal/config"
	"pos-sync-service/internal/store"
)

func TestCronSpec(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "@every 30s", want: "@every 30s"},
		{in: "45s", want: "@every 45s"},
		{in: "2m", want: "@every 2m0s"},
		{in: "*/5 * * * *", want: "*/5 * * * *"},
		{in: "", wantErr: true},
		{in: "-5s", wantErr: true},
		{in: "whenever", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := cronSpec(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReconciler_TickDrains(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	require.NoError(t, h.queue.Enqueue(ctx, sale("A", "2025-03-01T08:00:00.000Z", store.StatusPaid)))

	r := NewReconciler(config.SchedulerConfig{Enabled: true, Interval: "@every 1h"}, h.o)
	res := r.Tick(ctx)

	assert.Equal(t, 1, res.Committed)
	assert.Empty(t, h.pending(t))
}

func TestReconciler_TickSkipsWhileDraining(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	h.gw.entered = make(chan struct{})
	h.gw.release = make(chan struct{})
	require.NoError(t, h.queue.Enqueue(ctx, sale("A", "2025-03-01T08:00:00.000Z", store.StatusPaid)))

	done := make(chan struct{})
	go func() {
		h.o.Drain(ctx)
		close(done)
	}()
	<-h.gw.entered

	r := NewReconciler(config.SchedulerConfig{Enabled: true, Interval: "@every 1h"}, h.o)
	assert.True(t, r.Tick(ctx).Skipped)

	close(h.gw.release)
	<-done
	assert.Equal(t, 1, h.gw.commitCount())
}

func TestReconciler_StartStop(t *testing.T) {
	h := newHarness(t, false)

	disabled := NewReconciler(config.SchedulerConfig{Enabled: false}, h.o)
	require.NoError(t, disabled.Start())
	disabled.Stop()

	bad := NewReconciler(config.SchedulerConfig{Enabled: true, Interval: "sometimes"}, h.o)
	assert.Error(t, bad.Start())

	r := NewReconciler(config.SchedulerConfig{Enabled: true, Interval: "1h"}, h.o)
	require.NoError(t, r.Start())
	assert.NotZero(t, r.entryID)
	r.Stop()
}

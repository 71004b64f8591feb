package connectivity

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"pos-sync-service/internal/config"
	"pos-sync-service/internal/logger"
)

// Pinger is the part of the remote gateway a probe needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Prober pings the remote on a fixed interval and feeds the result to a Monitor.
type Prober struct {
	pinger   Pinger
	monitor  *Monitor
	interval time.Duration
	timeout  time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewProber(cfg config.ConnectivityConfig, pinger Pinger, monitor *Monitor) *Prober {
	ctx, cancel := context.WithCancel(context.Background())
	return &Prober{
		pinger:   pinger,
		monitor:  monitor,
		interval: cfg.GetProbeInterval(),
		timeout:  cfg.GetProbeTimeout(),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start probes once immediately, then every interval until Stop.
func (p *Prober) Start() {
	logger.Log.Info("Starting connectivity prober",
		zap.Duration("interval", p.interval),
		zap.Duration("timeout", p.timeout),
	)
	p.wg.Add(1)
	go p.run()
}

func (p *Prober) Stop() {
	p.cancel()
	p.wg.Wait()
	logger.Log.Info("Stopped connectivity prober")
}

func (p *Prober) run() {
	defer p.wg.Done()

	p.Probe(p.ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.Probe(p.ctx)
		case <-p.ctx.Done():
			return
		}
	}
}

// Probe runs one ping and reports whether the remote answered.
func (p *Prober) Probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := p.pinger.Ping(ctx)
	if err != nil {
		// Shutdown is not an outage.
		if p.ctx.Err() != nil {
			return false
		}
		logger.Log.Debug("Connectivity probe failed", zap.Error(err))
	}
	p.monitor.Set(err == nil)
	return err == nil
}

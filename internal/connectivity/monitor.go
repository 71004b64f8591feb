// Package connectivity tracks whether the remote authority is reachable.
//
// The Monitor holds the last-known state and fires callbacks once per
// transition. It starts unreachable, so writes queue until the first
// successful signal says otherwise.
package connectivity

import (
	"sync"

	"go.uber.org/zap"

	"pos-sync-service/internal/logger"
)

type Monitor struct {
	mu          sync.Mutex
	reachable   bool
	onReachable []func()
	onLost      []func()
}

func NewMonitor() *Monitor {
	return &Monitor{}
}

// CurrentlyReachable returns the last-known state.
func (m *Monitor) CurrentlyReachable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reachable
}

func (m *Monitor) OnBecameReachable(cb func()) {
	m.mu.Lock()
	m.onReachable = append(m.onReachable, cb)
	m.mu.Unlock()
}

func (m *Monitor) OnBecameUnreachable(cb func()) {
	m.mu.Lock()
	m.onLost = append(m.onLost, cb)
	m.mu.Unlock()
}

// Set feeds a platform signal. Callbacks run on the caller's goroutine,
// outside the lock, only when the state actually changes.
func (m *Monitor) Set(reachable bool) {
	m.mu.Lock()
	if m.reachable == reachable {
		m.mu.Unlock()
		return
	}
	m.reachable = reachable
	var cbs []func()
	if reachable {
		cbs = append(cbs, m.onReachable...)
	} else {
		cbs = append(cbs, m.onLost...)
	}
	m.mu.Unlock()

	logger.Log.Info("Connectivity changed", zap.Bool("reachable", reachable))

	for _, cb := range cbs {
		cb()
	}
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TMS AS

// Package workers hosts the agent's background jobs, currently the
// connectivity monitor that decides when sync runs happen.
package workers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/khsolheim/tms-mobile-sync/internal/logger"
	"github.com/khsolheim/tms-mobile-sync/internal/service"
	"github.com/khsolheim/tms-mobile-sync/models"
)

// ConnectivityMonitor tracks reachability transitions and triggers sync
// runs at the right moments, not continuously:
//
//   - on the offline→online edge (low latency after reconnect);
//   - on app foregrounding while already online (covers missed events);
//   - on a fixed interval while online (guards against missed edges).
//
// Overlap protection lives in the sync engine's run gate; the monitor just
// fires triggers and ignores [service.ErrSyncInProgress].
type ConnectivityMonitor struct {
	runner   SyncRunner
	probe    ReachabilityProbe
	logger   *logger.Logger
	interval time.Duration

	mu      sync.Mutex
	state   models.ConnectivityState
	jobCtx  context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// NewConnectivityMonitor creates a monitor that is idle until Start is
// called. The probe may be nil; without one the monitor relies entirely on
// Notify events from the host platform. The initial state is offline until a
// signal or probe says otherwise.
func NewConnectivityMonitor(runner SyncRunner, probe ReachabilityProbe, interval time.Duration, log *logger.Logger) *ConnectivityMonitor {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &ConnectivityMonitor{
		runner:   runner,
		probe:    probe,
		logger:   log,
		interval: interval,
		state:    models.StateOffline,
	}
}

// Start stops any previously running monitor, then launches the interval
// ticker goroutine. If a probe is configured it is consulted once so a
// device that boots with connectivity syncs immediately. The goroutine exits
// when ctx is cancelled or Stop is called.
func (m *ConnectivityMonitor) Start(ctx context.Context) {
	m.Stop()

	m.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	m.jobCtx = jobCtx
	m.cancel = cancel
	m.started = true
	m.wg.Add(1)
	m.mu.Unlock()

	if m.probe != nil {
		if err := m.probe.Ping(jobCtx); err == nil {
			m.Notify(true)
		}
	}

	go func() {
		defer m.wg.Done()
		t := time.NewTicker(m.interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				if m.State() == models.StateOnline {
					m.runOnce(jobCtx)
				}
			}
		}
	}()
}

// Stop cancels the ticker goroutine's context and blocks until it has fully
// exited. Safe to call when the monitor is not running.
func (m *ConnectivityMonitor) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.started = false
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.wg.Wait()
}

// Notify feeds a reachability signal from the host platform into the state
// machine. Only the offline→online edge triggers a sync run; going offline
// just records the state, and queueing keeps accepting actions regardless.
func (m *ConnectivityMonitor) Notify(isConnected bool) {
	next := models.StateOffline
	if isConnected {
		next = models.StateOnline
	}

	m.mu.Lock()
	prev := m.state
	m.state = next
	ctx := m.jobCtx
	started := m.started
	m.mu.Unlock()

	m.logger.Debug().Str("from", string(prev)).Str("to", string(next)).Msg("connectivity transition")

	if started && prev == models.StateOffline && next == models.StateOnline {
		m.runOnce(ctx)
	}
}

// Foreground handles the app moving to the foreground: while online it
// triggers a safety-net run in case a connectivity event was missed while
// backgrounded.
func (m *ConnectivityMonitor) Foreground() {
	m.mu.Lock()
	ctx := m.jobCtx
	started := m.started
	online := m.state == models.StateOnline
	m.mu.Unlock()

	if started && online {
		m.runOnce(ctx)
	}
}

// ForceSync triggers a run regardless of the recorded state, for manual
// "sync now" actions from the shell or the diagnostics endpoint.
func (m *ConnectivityMonitor) ForceSync(ctx context.Context) (models.SyncRunResult, error) {
	return m.runner.RunSync(ctx)
}

// State returns the currently recorded reachability state.
func (m *ConnectivityMonitor) State() models.ConnectivityState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *ConnectivityMonitor) runOnce(ctx context.Context) {
	if ctx == nil {
		return
	}
	if _, err := m.runner.RunSync(ctx); err != nil {
		if errors.Is(err, service.ErrSyncInProgress) {
			m.logger.Debug().Msg("sync trigger skipped, run in progress")
			return
		}
		m.logger.Err(err).Msg("sync run failed")
	}
}

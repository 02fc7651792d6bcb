package workers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khsolheim/tms-mobile-sync/internal/logger"
	"github.com/khsolheim/tms-mobile-sync/internal/service"
	"github.com/khsolheim/tms-mobile-sync/models"
)

// spyRunner counts RunSync calls and returns a scripted error.
type spyRunner struct {
	calls atomic.Int64
	err   error
}

func (s *spyRunner) RunSync(_ context.Context) (models.SyncRunResult, error) {
	s.calls.Add(1)
	if s.err != nil {
		return models.SyncRunResult{}, s.err
	}
	return models.SyncRunResult{Success: true}, nil
}

// spyProbe scripts the reachability probe.
type spyProbe struct {
	calls atomic.Int64
	err   error
}

func (s *spyProbe) Ping(_ context.Context) error {
	s.calls.Add(1)
	return s.err
}

func TestConnectivityMonitor_InitialStateOffline(t *testing.T) {
	m := NewConnectivityMonitor(&spyRunner{}, nil, time.Minute, logger.Nop())
	assert.Equal(t, models.StateOffline, m.State())
}

func TestConnectivityMonitor_OfflineToOnlineEdgeTriggersSync(t *testing.T) {
	runner := &spyRunner{}
	m := NewConnectivityMonitor(runner, nil, time.Hour, logger.Nop())
	m.Start(context.Background())
	defer m.Stop()

	m.Notify(true)
	assert.Equal(t, models.StateOnline, m.State())
	assert.EqualValues(t, 1, runner.calls.Load())

	// Already online: a repeated online signal is not an edge.
	m.Notify(true)
	assert.EqualValues(t, 1, runner.calls.Load())

	// Going offline records state without a trigger.
	m.Notify(false)
	assert.Equal(t, models.StateOffline, m.State())
	assert.EqualValues(t, 1, runner.calls.Load())

	// The next reconnect is an edge again.
	m.Notify(true)
	assert.EqualValues(t, 2, runner.calls.Load())
}

func TestConnectivityMonitor_NotifyBeforeStartOnlyRecordsState(t *testing.T) {
	runner := &spyRunner{}
	m := NewConnectivityMonitor(runner, nil, time.Hour, logger.Nop())

	m.Notify(true)
	assert.Equal(t, models.StateOnline, m.State())
	assert.Zero(t, runner.calls.Load())
}

func TestConnectivityMonitor_ForegroundTriggersOnlyWhileOnline(t *testing.T) {
	runner := &spyRunner{}
	m := NewConnectivityMonitor(runner, nil, time.Hour, logger.Nop())
	m.Start(context.Background())
	defer m.Stop()

	m.Foreground()
	assert.Zero(t, runner.calls.Load(), "no trigger while offline")

	m.Notify(true)
	require.EqualValues(t, 1, runner.calls.Load())

	m.Foreground()
	assert.EqualValues(t, 2, runner.calls.Load())
}

func TestConnectivityMonitor_StartProbesOnce(t *testing.T) {
	runner := &spyRunner{}
	probe := &spyProbe{}
	m := NewConnectivityMonitor(runner, probe, time.Hour, logger.Nop())
	m.Start(context.Background())
	defer m.Stop()

	// A reachable remote at startup flips the state and syncs immediately.
	assert.EqualValues(t, 1, probe.calls.Load())
	assert.Equal(t, models.StateOnline, m.State())
	assert.EqualValues(t, 1, runner.calls.Load())
}

func TestConnectivityMonitor_StartWithUnreachableRemoteStaysOffline(t *testing.T) {
	runner := &spyRunner{}
	probe := &spyProbe{err: errors.New("no route to host")}
	m := NewConnectivityMonitor(runner, probe, time.Hour, logger.Nop())
	m.Start(context.Background())
	defer m.Stop()

	assert.Equal(t, models.StateOffline, m.State())
	assert.Zero(t, runner.calls.Load())
}

func TestConnectivityMonitor_IntervalTicksWhileOnline(t *testing.T) {
	runner := &spyRunner{}
	m := NewConnectivityMonitor(runner, nil, 10*time.Millisecond, logger.Nop())
	m.Start(context.Background())
	defer m.Stop()

	m.Notify(true)
	require.EqualValues(t, 1, runner.calls.Load())

	assert.Eventually(t, func() bool {
		return runner.calls.Load() >= 3
	}, time.Second, 5*time.Millisecond, "interval ticks keep triggering runs")
}

func TestConnectivityMonitor_IntervalDoesNotTickWhileOffline(t *testing.T) {
	runner := &spyRunner{}
	m := NewConnectivityMonitor(runner, nil, 10*time.Millisecond, logger.Nop())
	m.Start(context.Background())
	defer m.Stop()

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, runner.calls.Load())
}

func TestConnectivityMonitor_StopHaltsTicker(t *testing.T) {
	runner := &spyRunner{}
	m := NewConnectivityMonitor(runner, nil, 10*time.Millisecond, logger.Nop())
	m.Start(context.Background())
	m.Notify(true)
	m.Stop()

	calls := runner.calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, calls, runner.calls.Load())

	// Stop on a stopped monitor is safe.
	m.Stop()
}

func TestConnectivityMonitor_BusyEngineIsNotAnError(t *testing.T) {
	runner := &spyRunner{err: service.ErrSyncInProgress}
	m := NewConnectivityMonitor(runner, nil, time.Hour, logger.Nop())
	m.Start(context.Background())
	defer m.Stop()

	// The trigger fires, the engine reports busy, the monitor carries on.
	m.Notify(true)
	assert.EqualValues(t, 1, runner.calls.Load())
	assert.Equal(t, models.StateOnline, m.State())
}

func TestConnectivityMonitor_ForceSync(t *testing.T) {
	runner := &spyRunner{}
	m := NewConnectivityMonitor(runner, nil, time.Hour, logger.Nop())

	// ForceSync bypasses the recorded state entirely.
	result, err := m.ForceSync(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.EqualValues(t, 1, runner.calls.Load())
}

func TestConnectivityMonitor_DefaultInterval(t *testing.T) {
	m := NewConnectivityMonitor(&spyRunner{}, nil, 0, logger.Nop())
	assert.Equal(t, 5*time.Minute, m.interval)
}

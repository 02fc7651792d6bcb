// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TMS AS

package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/khsolheim/tms-mobile-sync/internal/adapter"
	"github.com/khsolheim/tms-mobile-sync/internal/logger"
	"github.com/khsolheim/tms-mobile-sync/models"
)

type syncEngine struct {
	queue  ActionQueue
	remote adapter.RemoteAdapter
	logger *logger.Logger
	now    func() time.Time

	running atomic.Bool

	mu         sync.RWMutex
	lastResult *models.SyncRunResult
}

// NewSyncEngine constructs the engine that drains the action queue against
// the remote API.
func NewSyncEngine(queue ActionQueue, remote adapter.RemoteAdapter, log *logger.Logger) SyncEngine {
	return &syncEngine{
		queue:  queue,
		remote: remote,
		logger: log,
		now:    time.Now,
	}
}

// RunSync implements [SyncEngine]. One pass, strictly sequential in snapshot
// order so method semantics that depend on submission order (create before
// update) are never replayed out of order. A single action's transport
// failure never aborts the remaining actions in the pass.
func (e *syncEngine) RunSync(ctx context.Context) (models.SyncRunResult, error) {
	if !e.running.CompareAndSwap(false, true) {
		return models.SyncRunResult{}, ErrSyncInProgress
	}
	defer e.running.Store(false)

	result := models.SyncRunResult{Errors: []models.SyncError{}}

	snapshot := e.queue.Pending(ctx)
	if len(snapshot) == 0 {
		result.Success = true
		result.FinishedAt = e.now()
		e.setLastResult(result)
		return result, nil
	}

	for _, action := range snapshot {
		if !action.Eligible(e.now()) {
			result.SkippedCount++
			continue
		}

		err := e.remote.Execute(ctx, action)
		switch {
		case err == nil:
			if rerr := e.queue.Remove(ctx, action.ID); rerr != nil {
				e.logger.Err(rerr).Str("id", action.ID).Msg("remove synced action")
			}
			result.SyncedCount++

		case errors.Is(err, adapter.ErrPermanent):
			// The request itself is invalid; retrying cannot help.
			if rerr := e.queue.Remove(ctx, action.ID); rerr != nil {
				e.logger.Err(rerr).Str("id", action.ID).Msg("remove rejected action")
			}
			result.FailedCount++
			result.Errors = append(result.Errors, models.SyncError{ActionType: action.Type, Error: err.Error()})
			e.logger.Warn().Str("id", action.ID).Str("type", action.Type).Err(err).Msg("action rejected by remote")

		default:
			dropped, rerr := e.queue.RecordFailure(ctx, action.ID, err)
			if rerr != nil {
				e.logger.Err(rerr).Str("id", action.ID).Msg("record action failure")
			}
			if dropped {
				result.FailedCount++
				result.Errors = append(result.Errors, models.SyncError{ActionType: action.Type, Error: err.Error()})
				e.logger.Warn().Str("id", action.ID).Str("type", action.Type).Err(err).Msg("action dropped after retry bound")
			}
		}
	}

	result.Success = result.FailedCount == 0
	result.FinishedAt = e.now()
	e.setLastResult(result)

	e.logger.Info().
		Int("synced", result.SyncedCount).
		Int("failed", result.FailedCount).
		Int("skipped", result.SkippedCount).
		Msg("sync run finished")

	return result, nil
}

// LastResult implements [SyncEngine].
func (e *syncEngine) LastResult() (models.SyncRunResult, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.lastResult == nil {
		return models.SyncRunResult{}, false
	}
	return *e.lastResult, true
}

func (e *syncEngine) setLastResult(result models.SyncRunResult) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastResult = &result
}

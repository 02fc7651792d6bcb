// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TMS AS

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/khsolheim/tms-mobile-sync/internal/logger"
	"github.com/khsolheim/tms-mobile-sync/internal/store"
	"github.com/khsolheim/tms-mobile-sync/models"
)

// QueuePolicy holds the retry policy applied to enqueued actions.
type QueuePolicy struct {
	// DefaultMaxRetries is used when Enqueue is called with maxRetries <= 0.
	DefaultMaxRetries int
	// BackoffBase is the initial retry delay; doubles per attempt with
	// jitter. Zero disables the delay entirely.
	BackoffBase time.Duration
	// BackoffCap bounds the per-attempt delay.
	BackoffCap time.Duration
}

type queueService struct {
	kv     store.KeyValueRepository
	logger *logger.Logger
	policy QueuePolicy
	now    func() time.Time

	mu      sync.Mutex
	actions []models.QueuedAction
}

// NewActionQueue constructs the durable FIFO action queue. The persisted
// queue is reloaded here so submission order survives process restarts; a
// load failure starts an empty queue and is logged, matching the best-effort
// storage contract.
func NewActionQueue(kv store.KeyValueRepository, policy QueuePolicy, log *logger.Logger) ActionQueue {
	if policy.DefaultMaxRetries <= 0 {
		policy.DefaultMaxRetries = 3
	}
	q := &queueService{
		kv:     kv,
		logger: log,
		policy: policy,
		now:    time.Now,
	}
	q.load(context.Background())
	return q
}

func (q *queueService) load(ctx context.Context) {
	blob, err := q.kv.Get(ctx, store.KeyOfflineQueue)
	if errors.Is(err, store.ErrKeyNotFound) {
		return
	}
	if err != nil {
		q.logger.Err(err).Msg("load offline queue")
		return
	}

	var actions []models.QueuedAction
	if err = json.Unmarshal(blob, &actions); err != nil {
		q.logger.Err(err).Msg("decode offline queue, starting empty")
		return
	}
	q.actions = actions
}

// persist rewrites the whole queue after a mutation. Storage errors are
// logged and absorbed; memory stays authoritative until the next successful
// persist. Callers must hold q.mu.
func (q *queueService) persist(ctx context.Context) {
	blob, err := json.Marshal(q.actions)
	if err != nil {
		q.logger.Err(err).Msg("encode offline queue")
		return
	}
	if err = q.kv.Put(ctx, store.KeyOfflineQueue, blob); err != nil {
		q.logger.Err(err).Msg("persist offline queue")
	}
}

// Enqueue implements [ActionQueue].
func (q *queueService) Enqueue(ctx context.Context, actionType, endpoint, method string, payload json.RawMessage, maxRetries int) (string, error) {
	method = strings.ToUpper(method)
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedMethod, method)
	}
	if maxRetries <= 0 {
		maxRetries = q.policy.DefaultMaxRetries
	}

	action := models.QueuedAction{
		ID:         newActionID(),
		Type:       actionType,
		Endpoint:   endpoint,
		Method:     method,
		Payload:    payload,
		EnqueuedAt: q.now(),
		MaxRetries: maxRetries,
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.actions = append(q.actions, action)
	q.persist(ctx)

	q.logger.Debug().Str("id", action.ID).Str("type", actionType).Msg("action enqueued")
	return action.ID, nil
}

// Pending implements [ActionQueue]; the returned slice is a copy.
func (q *queueService) Pending(_ context.Context) []models.QueuedAction {
	q.mu.Lock()
	defer q.mu.Unlock()

	snapshot := make([]models.QueuedAction, len(q.actions))
	copy(snapshot, q.actions)
	return snapshot
}

// Remove implements [ActionQueue]. Removing an unknown id is a no-op.
func (q *queueService) Remove(ctx context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	idx := q.indexOf(id)
	if idx < 0 {
		return nil
	}
	q.actions = append(q.actions[:idx], q.actions[idx+1:]...)
	q.persist(ctx)
	return nil
}

// RecordFailure implements [ActionQueue]. The retry bound is enforced here,
// at the queue's single choke point: retryCount never exceeds maxRetries,
// and an action that reaches the bound is removed in the same step.
func (q *queueService) RecordFailure(ctx context.Context, id string, cause error) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	idx := q.indexOf(id)
	if idx < 0 {
		return false, nil
	}

	action := &q.actions[idx]
	action.RetryCount++
	if cause != nil {
		action.LastError = cause.Error()
	}

	if action.RetryCount >= action.MaxRetries {
		q.actions = append(q.actions[:idx], q.actions[idx+1:]...)
		q.persist(ctx)
		return true, nil
	}

	action.NextEligibleAt = q.now().Add(q.backoffDelay(action.RetryCount))
	q.persist(ctx)
	return false, nil
}

// Len implements [ActionQueue].
func (q *queueService) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.actions)
}

func (q *queueService) indexOf(id string) int {
	for i := range q.actions {
		if q.actions[i].ID == id {
			return i
		}
	}
	return -1
}

// backoffDelay returns the delay before the attempt-th retry becomes
// eligible: exponential from the configured base, capped, with jitter.
func (q *queueService) backoffDelay(attempt int) time.Duration {
	if q.policy.BackoffBase <= 0 {
		return 0
	}

	b := retry.NewExponential(q.policy.BackoffBase)
	if q.policy.BackoffCap > 0 {
		b = retry.WithCappedDuration(q.policy.BackoffCap, b)
	}
	b = retry.WithJitterPercent(10, b)

	var delay time.Duration
	for i := 0; i < attempt; i++ {
		next, stop := b.Next()
		if stop {
			break
		}
		delay = next
	}
	return delay
}

// newActionID returns a UUIDv7 (time-ordered), falling back to a random v4
// if the monotonic source fails.
func newActionID() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return v7.String()
}

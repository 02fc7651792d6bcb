// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TMS AS

// Package service implements the offline-first core of the TMS mobile shell:
// the durable cache, the offline action queue, the sync engine that drains it
// and the biometric session gate.
package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/khsolheim/tms-mobile-sync/models"
)

// CacheService is the durable key/value cache serving last-known-good reads
// while the device is offline. Expiry is strict and lazy: entries are checked
// only when read and deleted as a side effect of an expired read.
type CacheService interface {
	// Set inserts or overwrites the entry under key. A positive ttl sets the
	// entry's expiry; zero applies the configured default; a negative ttl
	// stores the entry without expiry. Returns an error only if value cannot
	// be serialized; persistence failures are logged and absorbed.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error

	// Get unmarshals the entry under key into dest (dest may be nil to test
	// presence only) and reports whether a live entry was found. An expired
	// entry is deleted and reported as absent.
	Get(ctx context.Context, key string, dest any) (bool, error)

	// Delete evicts the entry under key. Missing keys are a no-op.
	Delete(ctx context.Context, key string) error

	// Clear evicts every entry.
	Clear(ctx context.Context) error
}

// ActionQueue durably records write intents that could not complete
// synchronously, preserving FIFO submission order across process restarts.
// The queue exclusively owns its backing collection; the sync engine borrows
// snapshots and writes mutations back through this interface only.
type ActionQueue interface {
	// Enqueue appends a new action and returns its generated id. maxRetries
	// <= 0 applies the configured default.
	Enqueue(ctx context.Context, actionType, endpoint, method string, payload json.RawMessage, maxRetries int) (string, error)

	// Pending returns a snapshot copy of the queue in FIFO order; callers
	// must not assume it stays live.
	Pending(ctx context.Context) []models.QueuedAction

	// Remove deletes the action with the given id. Idempotent: removing a
	// nonexistent id is a no-op, not an error.
	Remove(ctx context.Context, id string) error

	// RecordFailure increments the action's retry count after a transient
	// failure and stamps its next-eligible time from the backoff policy.
	// Once the retry bound is reached the action is removed and dropped=true
	// is returned; it must then be reported and never retried again.
	RecordFailure(ctx context.Context, id string, cause error) (dropped bool, err error)

	// Len reports the current queue depth.
	Len() int
}

// SyncEngine drains the action queue against the remote API.
type SyncEngine interface {
	// RunSync performs one sequential pass over a snapshot of the queue and
	// returns the aggregated result. Returns [ErrSyncInProgress] when another
	// run is active; overlapping runs are never allowed.
	RunSync(ctx context.Context) (models.SyncRunResult, error)

	// LastResult returns the most recent completed run's result, if any.
	LastResult() (models.SyncRunResult, bool)
}

// BiometricProber reports the device's biometric capability. Implemented by
// the host platform layer.
type BiometricProber interface {
	Probe(ctx context.Context) (models.BiometricCapability, error)
}

// BiometricChallenger shows the platform biometric prompt and blocks until
// the user completes or dismisses it. It returns the biometric type used on
// success. Implemented by the host platform layer.
type BiometricChallenger interface {
	Challenge(ctx context.Context, opts models.ChallengeOptions) (string, error)
}

// BiometricService gates local session resumption behind a platform
// biometric challenge and tracks aggregate usage statistics.
type BiometricService interface {
	// Availability reports the gate's current lifecycle state.
	Availability(ctx context.Context) models.BiometricState

	// Enable opts the user in to biometric unlock. Fails unless biometrics
	// are available and enrolled.
	Enable(ctx context.Context) error

	// Disable opts the user out, returning the gate to the enrolled state.
	Disable(ctx context.Context) error

	// Authenticate runs the capability probe and, when the gate is enabled,
	// the platform challenge. Every platform-layer failure is mapped into
	// the returned result; Authenticate never panics past its boundary.
	Authenticate(ctx context.Context, opts models.ChallengeOptions) models.BiometricAuthResult

	// ResumeSession verifies a session token previously issued by
	// Authenticate. A nil return means the local session may be resumed.
	ResumeSession(ctx context.Context, token string) error

	// Stats returns the persisted aggregate counters.
	Stats(ctx context.Context) models.BiometricStats
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TMS AS

package models

import (
	"encoding/json"
	"time"
)

// QueuedAction is a single pending write operation recorded while the device
// could not reach the TMS API. Actions are drained in FIFO order by the sync
// engine and removed on success or once RetryCount reaches MaxRetries.
type QueuedAction struct {
	// ID is generated at enqueue time (UUIDv7) and unique for the device.
	ID string `json:"id"`

	// Type is the logical operation name, e.g. "create-contract".
	Type string `json:"type"`

	// Endpoint is the target resource path on the TMS API.
	Endpoint string `json:"endpoint"`

	// Method is the HTTP method used to replay the action.
	Method string `json:"method"`

	// Payload is the optional request body, stored as raw JSON.
	Payload json.RawMessage `json:"payload,omitempty"`

	// EnqueuedAt is the time the action entered the queue.
	EnqueuedAt time.Time `json:"enqueued_at"`

	// RetryCount is incremented on every transient failure.
	// Invariant: RetryCount <= MaxRetries.
	RetryCount int `json:"retry_count"`

	// MaxRetries bounds RetryCount; once reached the action is dropped and
	// reported, never silently retried again.
	MaxRetries int `json:"max_retries"`

	// NextEligibleAt is the earliest time a future sync run may retry the
	// action. Zero means immediately eligible.
	NextEligibleAt time.Time `json:"next_eligible_at,omitempty"`

	// LastError holds the message of the most recent failed attempt.
	LastError string `json:"last_error,omitempty"`
}

// Eligible reports whether the action may be attempted at the given time.
func (a QueuedAction) Eligible(now time.Time) bool {
	return a.NextEligibleAt.IsZero() || !now.Before(a.NextEligibleAt)
}

// SyncError describes one action that was permanently failed during a sync
// run, either because its retry bound was exhausted or because the remote
// rejected the request as invalid.
type SyncError struct {
	ActionType string `json:"action_type"`
	Error      string `json:"error"`
}

// SyncRunResult is the aggregate outcome of a single sync engine pass.
// It is produced fresh per run and never persisted.
type SyncRunResult struct {
	// Success is true iff no action failed permanently during the run.
	Success bool `json:"success"`

	// SyncedCount is the number of actions confirmed by the remote.
	SyncedCount int `json:"synced_count"`

	// FailedCount is the number of actions failed permanently this run.
	FailedCount int `json:"failed_count"`

	// SkippedCount is the number of actions left untouched because their
	// backoff window had not elapsed. They remain pending.
	SkippedCount int `json:"skipped_count"`

	// Errors holds one record per permanently failed action, in queue order.
	Errors []SyncError `json:"errors"`

	// FinishedAt is the time the pass completed.
	FinishedAt time.Time `json:"finished_at"`
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TMS AS

// Package store implements the agent's persistence boundary.
//
// Each durable collection (offline queue, offline cache, biometric stats and
// settings) is persisted as a single serialized blob under a fixed storage
// key in a sqlite-backed key/value table. Collections are loaded once at
// service initialization and rewritten after each mutation; the in-memory
// copy held by the owning service stays authoritative between writes.
package store

import "context"

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// Fixed storage keys for the agent's persisted collections.
const (
	// KeyOfflineQueue holds the serialized action queue.
	KeyOfflineQueue = "offline_queue"
	// KeyOfflineCache holds the serialized cache table.
	KeyOfflineCache = "offline_cache"
	// KeyBiometricStats holds the aggregate biometric counters.
	KeyBiometricStats = "biometric_stats"
	// KeyBiometricSettings holds the gate's opt-in flag and token salt.
	KeyBiometricSettings = "biometric_settings"
)

// KeyValueRepository is the low-level blob store behind every durable
// collection. Implementations must treat values as opaque bytes.
type KeyValueRepository interface {
	// Get returns the blob stored under key, or [ErrKeyNotFound].
	Get(ctx context.Context, key string) ([]byte, error)

	// Put inserts or overwrites the blob stored under key.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes the blob stored under key. Deleting a nonexistent key
	// is a no-op.
	Delete(ctx context.Context, key string) error
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TMS AS

package models

import (
	"encoding/json"
	"time"
)

// CacheEntry is one key/value record in the durable offline cache. Expiry is
// lazy: an entry past ExpiresAt is logically absent and is deleted the next
// time it is read, never by a background sweep.
type CacheEntry struct {
	Key      string          `json:"key"`
	Value    json.RawMessage `json:"value"`
	StoredAt time.Time       `json:"stored_at"`

	// ExpiresAt is zero for entries that never expire on their own.
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Expired reports whether the entry is logically absent at the given time.
func (e CacheEntry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TMS AS

package models

import "time"

// ConnectivityState is the reachability state tracked by the monitor.
type ConnectivityState string

const (
	// StateOffline means the remote API is considered unreachable.
	StateOffline ConnectivityState = "offline"
	// StateOnline means the remote API is considered reachable.
	StateOnline ConnectivityState = "online"
)

// ConnectivityEvent is a single reachability transition delivered by the host
// platform's connectivity signal.
type ConnectivityEvent struct {
	IsConnected bool      `json:"is_connected"`
	At          time.Time `json:"at"`
}

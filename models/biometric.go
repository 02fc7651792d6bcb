// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TMS AS

package models

import "time"

// BiometricState describes where the device sits in the biometric gate's
// lifecycle. Only StateEnabled shows the platform prompt on login.
type BiometricState string

const (
	// StateUnavailable means the device has no usable biometric hardware.
	StateUnavailable BiometricState = "unavailable"
	// StateNotEnrolled means hardware exists but no biometrics are enrolled.
	StateNotEnrolled BiometricState = "not_enrolled"
	// StateEnrolled means biometrics are enrolled but the user has not opted
	// in to using them for the TMS session.
	StateEnrolled BiometricState = "enrolled"
	// StateEnabled means the user opted in; login attempts show the prompt.
	StateEnabled BiometricState = "enabled"
)

// BiometricCapability is the outcome of a platform capability probe.
type BiometricCapability struct {
	Available bool   `json:"available"`
	Enrolled  bool   `json:"enrolled"`
	Type      string `json:"type,omitempty"` // e.g. "face", "fingerprint"
}

// ChallengeOptions configures a single platform biometric challenge.
type ChallengeOptions struct {
	Reason      string `json:"reason,omitempty"`
	AllowDevice bool   `json:"allow_device_credential,omitempty"`
}

// BiometricDetails carries metadata about a successful authentication.
type BiometricDetails struct {
	BiometricType string    `json:"biometric_type"`
	Timestamp     time.Time `json:"timestamp"`
	DeviceID      string    `json:"device_id"`
}

// BiometricAuthResult is the structured outcome of an authentication attempt.
// Platform-layer failures are mapped into Error; the gate never propagates
// them as Go errors across its boundary.
type BiometricAuthResult struct {
	Success bool              `json:"success"`
	Error   string            `json:"error,omitempty"`
	Details *BiometricDetails `json:"details,omitempty"`

	// SessionToken is issued on success and unlocks local session
	// resumption until it expires.
	SessionToken string `json:"session_token,omitempty"`
}

// BiometricStats are persisted aggregate counters, updated read-modify-write
// on every authentication attempt.
type BiometricStats struct {
	TotalAttempts      int64     `json:"total_attempts"`
	SuccessfulAttempts int64     `json:"successful_attempts"`
	FailedAttempts     int64     `json:"failed_attempts"`
	LastSuccessfulAuth time.Time `json:"last_successful_auth,omitempty"`
	LastFailedAuth     time.Time `json:"last_failed_auth,omitempty"`
}

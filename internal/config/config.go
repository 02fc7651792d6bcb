// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TMS AS

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for the
// tms-mobile-sync agent. It aggregates all sub-configurations and is
// populated by merging values from environment variables, command-line flags,
// and an optional JSON file.
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds application-level settings such as the device identity and
	// session token parameters.
	App App `envPrefix:"APP_"`

	// Remote holds the TMS API endpoint settings used by the sync engine.
	Remote Remote `envPrefix:"REMOTE_"`

	// Storage holds configuration for the local persistence backend.
	Storage Storage `envPrefix:"STORAGE_"`

	// Queue holds retry and backoff settings for the offline action queue.
	Queue Queue `envPrefix:"QUEUE_"`

	// Cache holds settings for the durable offline cache.
	Cache Cache `envPrefix:"CACHE_"`

	// Workers holds configuration for the connectivity monitor and other
	// background jobs.
	Workers Workers `envPrefix:"WORKERS_"`

	// Server holds the local diagnostics listener settings.
	Server Server `envPrefix:"SERVER_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds application-level configuration values controlling the device
// identity and the biometric session token lifecycle.
type App struct {
	// DeviceID identifies this installation in authentication details and
	// session token claims.
	// Env: APP_DEVICE_ID
	DeviceID string `env:"DEVICE_ID"`

	// DeviceSecret is the secret the session signing key is derived from.
	// Must be kept confidential.
	// Env: APP_DEVICE_SECRET
	DeviceSecret string `env:"DEVICE_SECRET"`

	// TokenIssuer is the "iss" claim embedded in every issued session token.
	// Env: APP_TOKEN_ISSUER
	TokenIssuer string `env:"TOKEN_ISSUER"`

	// TokenDuration specifies how long a session token remains valid after
	// issuance (e.g. "12h", "30m").
	// Env: APP_TOKEN_DURATION
	TokenDuration time.Duration `env:"TOKEN_DURATION"`
}

// Remote holds network settings for the outbound transport layer.
type Remote struct {
	// BaseURL is the TMS API base address, e.g. "https://api.tms.example".
	// Env: REMOTE_BASE_URL
	BaseURL string `env:"BASE_URL"`

	// RequestTimeout is the maximum duration for a single outbound request.
	// Env: REMOTE_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// HealthPath is the path probed to confirm reachability (e.g. "/health").
	// Env: REMOTE_HEALTH_PATH
	HealthPath string `env:"HEALTH_PATH"`
}

// Storage holds connection settings for the local database backend.
type Storage struct {
	// DB holds local database settings.
	DB DB `envPrefix:"DB_"`
}

// DB holds connection settings for the local sqlite database.
type DB struct {
	// DSN is the sqlite file path used by the agent
	// (e.g. "/var/lib/tms/sync.db").
	// Env: STORAGE_DB_DSN
	DSN string `env:"DSN"`
}

// Queue holds retry policy settings for the offline action queue.
type Queue struct {
	// MaxRetries is the default retry bound applied at enqueue time when the
	// caller does not specify one.
	// Env: QUEUE_MAX_RETRIES
	MaxRetries int `env:"MAX_RETRIES"`

	// BackoffBase is the initial delay before a transiently failed action
	// becomes eligible again. Doubles per attempt, with jitter. Zero disables
	// the delay.
	// Env: QUEUE_BACKOFF_BASE
	BackoffBase time.Duration `env:"BACKOFF_BASE"`

	// BackoffCap bounds the per-action retry delay.
	// Env: QUEUE_BACKOFF_CAP
	BackoffCap time.Duration `env:"BACKOFF_CAP"`
}

// Cache holds settings for the durable offline cache.
type Cache struct {
	// DefaultTTL is applied when a caller caches data without an explicit
	// TTL. Zero means entries never expire on their own.
	// Env: CACHE_DEFAULT_TTL
	DefaultTTL time.Duration `env:"DEFAULT_TTL"`
}

// Workers holds configuration for background worker processes.
type Workers struct {
	// SyncInterval defines how often the connectivity monitor triggers a
	// safety-net sync run while online (e.g. "5m").
	// Env: WORKERS_SYNC_INTERVAL
	SyncInterval time.Duration `env:"SYNC_INTERVAL"`
}

// Server holds the local diagnostics listener settings.
type Server struct {
	// HTTPAddress is the TCP address the diagnostics endpoint listens on,
	// in "host:port" format (e.g. "127.0.0.1:8090"). Empty disables it.
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`
}

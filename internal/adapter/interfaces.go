// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TMS AS

// Package adapter provides the transport layer between the sync engine and
// the TMS REST API.
//
// The primary abstraction is [RemoteAdapter], which decouples the service
// layer from the underlying protocol. The package ships an HTTP/REST
// implementation ([NewHTTPRemoteAdapter]) built on resty.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling ([ErrPermanent] for 4xx, [ErrTransient] for network errors,
// timeouts and 5xx).
package adapter

import (
	"context"

	"github.com/khsolheim/tms-mobile-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/remote_adapter_mock.go -package=mock

// RemoteAdapter executes queued actions against the TMS API and probes its
// reachability. Implementations are responsible for serialisation,
// authentication header management, and mapping transport-level errors to the
// sentinel values defined in this package.
type RemoteAdapter interface {
	// SetToken stores the bearer token attached to all subsequent requests.
	SetToken(token string)

	// Token returns the bearer token currently stored in the adapter, or an
	// empty string if no token has been set yet.
	Token() string

	// Execute replays a single queued action: one HTTP request using the
	// action's method, endpoint and payload. A nil return means the remote
	// confirmed the action (2xx). Failures wrap [ErrTransient] or
	// [ErrPermanent] according to the package taxonomy.
	Execute(ctx context.Context, action models.QueuedAction) error

	// Ping performs a lightweight reachability probe against the API health
	// path. It returns nil when the remote answered at all, regardless of
	// status code.
	Ping(ctx context.Context) error
}

package workers

import (
	"context"

	"github.com/khsolheim/tms-mobile-sync/models"
)

// SyncRunner is the slice of the sync engine the monitor needs. Satisfied by
// [service.SyncEngine].
type SyncRunner interface {
	RunSync(ctx context.Context) (models.SyncRunResult, error)
}

// ReachabilityProbe actively checks whether the remote API answers at all.
// Satisfied by the remote adapter's Ping.
type ReachabilityProbe interface {
	Ping(ctx context.Context) error
}

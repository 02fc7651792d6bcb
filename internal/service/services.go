package service

import (
	"github.com/khsolheim/tms-mobile-sync/internal/adapter"
	"github.com/khsolheim/tms-mobile-sync/internal/config"
	"github.com/khsolheim/tms-mobile-sync/internal/crypto"
	"github.com/khsolheim/tms-mobile-sync/internal/logger"
	"github.com/khsolheim/tms-mobile-sync/internal/store"
)

// Services groups the offline core's service instances for injection into
// the workers, the diagnostics handler and the host shell. Each durable
// collection is owned by exactly one service instance; all mutations go
// through that instance's methods.
type Services struct {
	Cache      CacheService
	Queue      ActionQueue
	SyncEngine SyncEngine
	Biometric  BiometricService
}

// NewServices wires the full service layer over the given storage and
// transport boundaries. The biometric prober/challenger pair comes from the
// host platform; headless deployments pass [NewUnsupportedPlatform].
func NewServices(
	storages *store.Storages,
	remote adapter.RemoteAdapter,
	prober BiometricProber,
	challenger BiometricChallenger,
	cfg *config.AgentConfig,
	log *logger.Logger,
) *Services {
	queue := NewActionQueue(storages.KV, QueuePolicy{
		DefaultMaxRetries: cfg.Queue.MaxRetries,
		BackoffBase:       cfg.Queue.BackoffBase,
		BackoffCap:        cfg.Queue.BackoffCap,
	}, log.GetChildLogger())

	return &Services{
		Cache:      NewCacheService(storages.KV, cfg.Cache.DefaultTTL, log.GetChildLogger()),
		Queue:      queue,
		SyncEngine: NewSyncEngine(queue, remote, log.GetChildLogger()),
		Biometric: NewBiometricService(
			prober,
			challenger,
			storages.KV,
			crypto.NewKeyChainService(),
			cfg.App,
			log.GetChildLogger(),
		),
	}
}

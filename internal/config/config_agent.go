package config

import (
	"fmt"
	"time"
)

// AgentApp holds application-level settings derived from the shared
// structured config.
type AgentApp struct {
	// DeviceID identifies this installation.
	DeviceID string
	// DeviceSecret is the secret the session signing key is derived from.
	DeviceSecret string
	// TokenIssuer is the "iss" claim for issued session tokens.
	TokenIssuer string
	// TokenDuration is the session token lifetime.
	TokenDuration time.Duration
}

// AgentRemote holds network settings used by the outbound transport layer.
type AgentRemote struct {
	// BaseURL is the TMS API base address.
	BaseURL string
	// RequestTimeout is the default timeout for outbound requests.
	RequestTimeout time.Duration
	// HealthPath is the reachability probe path.
	HealthPath string
}

// AgentDB contains local database connection settings for the agent.
type AgentDB struct {
	// DSN is the sqlite file path used by the agent.
	DSN string
}

// AgentStorage groups agent storage backend settings.
type AgentStorage struct {
	// DB holds local database settings.
	DB AgentDB
}

// AgentQueue contains retry policy settings for the offline action queue.
type AgentQueue struct {
	// MaxRetries is the default retry bound for enqueued actions.
	MaxRetries int
	// BackoffBase is the initial retry delay for transient failures.
	BackoffBase time.Duration
	// BackoffCap bounds the per-action retry delay.
	BackoffCap time.Duration
}

// AgentCache contains durable cache settings.
type AgentCache struct {
	// DefaultTTL is applied when callers cache without an explicit TTL.
	DefaultTTL time.Duration
}

// AgentWorkers contains background worker settings.
type AgentWorkers struct {
	// SyncInterval defines how often safety-net sync runs fire while online.
	SyncInterval time.Duration
}

// AgentServer contains local diagnostics listener settings.
type AgentServer struct {
	// HTTPAddress is the diagnostics listen address; empty disables it.
	HTTPAddress string
}

// AgentConfig is the top-level agent configuration assembled from
// [StructuredConfig].
type AgentConfig struct {
	// App contains application-level agent settings.
	App AgentApp
	// Remote contains outbound transport settings.
	Remote AgentRemote
	// Storage contains local storage settings.
	Storage AgentStorage
	// Queue contains action queue retry settings.
	Queue AgentQueue
	// Cache contains durable cache settings.
	Cache AgentCache
	// Workers contains background job settings.
	Workers AgentWorkers
	// Server contains diagnostics listener settings.
	Server AgentServer
}

// GetAgentConfig builds and validates an agent-specific config view from the
// merged structured configuration.
//
// It loads the base config via [GetStructuredConfig], maps only the fields
// relevant to the agent runtime, applies defaults for optional values, and
// validates the resulting [AgentConfig].
func GetAgentConfig() (*AgentConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	agentCfg := &AgentConfig{
		App: AgentApp{
			DeviceID:      cfg.App.DeviceID,
			DeviceSecret:  cfg.App.DeviceSecret,
			TokenIssuer:   cfg.App.TokenIssuer,
			TokenDuration: cfg.App.TokenDuration,
		},
		Remote: AgentRemote{
			BaseURL:        cfg.Remote.BaseURL,
			RequestTimeout: cfg.Remote.RequestTimeout,
			HealthPath:     cfg.Remote.HealthPath,
		},
		Storage: AgentStorage{
			DB: AgentDB{
				DSN: cfg.Storage.DB.DSN,
			},
		},
		Queue: AgentQueue{
			MaxRetries:  cfg.Queue.MaxRetries,
			BackoffBase: cfg.Queue.BackoffBase,
			BackoffCap:  cfg.Queue.BackoffCap,
		},
		Cache:   AgentCache{DefaultTTL: cfg.Cache.DefaultTTL},
		Workers: AgentWorkers{SyncInterval: cfg.Workers.SyncInterval},
		Server:  AgentServer{HTTPAddress: cfg.Server.HTTPAddress},
	}
	agentCfg.applyDefaults()

	return agentCfg, agentCfg.validate()
}

func (cfg *AgentConfig) applyDefaults() {
	if cfg.App.TokenIssuer == "" {
		cfg.App.TokenIssuer = "tms-mobile-sync"
	}
	if cfg.App.TokenDuration <= 0 {
		cfg.App.TokenDuration = 12 * time.Hour
	}
	if cfg.Remote.RequestTimeout <= 0 {
		cfg.Remote.RequestTimeout = 15 * time.Second
	}
	if cfg.Remote.HealthPath == "" {
		cfg.Remote.HealthPath = "/health"
	}
	if cfg.Queue.MaxRetries <= 0 {
		cfg.Queue.MaxRetries = 3
	}
	if cfg.Queue.BackoffBase < 0 {
		cfg.Queue.BackoffBase = 0
	}
	if cfg.Queue.BackoffCap <= 0 {
		cfg.Queue.BackoffCap = 10 * time.Minute
	}
	if cfg.Workers.SyncInterval <= 0 {
		cfg.Workers.SyncInterval = 5 * time.Minute
	}
}

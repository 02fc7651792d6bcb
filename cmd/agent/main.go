package main

import (
	"fmt"

	"github.com/khsolheim/tms-mobile-sync/internal/adapter"
	"github.com/khsolheim/tms-mobile-sync/internal/agent"
	"github.com/khsolheim/tms-mobile-sync/internal/config"
	"github.com/khsolheim/tms-mobile-sync/internal/logger"
	"github.com/khsolheim/tms-mobile-sync/internal/service"
	"github.com/khsolheim/tms-mobile-sync/internal/store"
	"github.com/khsolheim/tms-mobile-sync/internal/workers"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewAgentLogger("tms-sync-agent")
	cfg, err := config.GetAgentConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	remote := adapter.NewHTTPRemoteAdapter(adapter.HTTPClientConfig{
		BaseURL:    cfg.Remote.BaseURL,
		HealthPath: cfg.Remote.HealthPath,
		Timeout:    cfg.Remote.RequestTimeout,
	})

	storages, err := store.NewStorages(cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create local storage")
	}

	prober, challenger := service.NewUnsupportedPlatform()
	services := service.NewServices(storages, remote, prober, challenger, cfg, log)

	monitor := workers.NewConnectivityMonitor(
		services.SyncEngine,
		remote,
		cfg.Workers.SyncInterval,
		log.GetChildLogger(),
	)

	app := agent.NewApp(services, monitor, cfg.Server, log)
	if err = app.Run(); err != nil {
		log.Fatal().Err(err).Msg("agent run error")
	}
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}

// Package agent wires the offline sync core into a runnable process: config,
// storage, services, the connectivity monitor and the optional diagnostics
// listener.
package agent

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/khsolheim/tms-mobile-sync/internal/config"
	handlerhttp "github.com/khsolheim/tms-mobile-sync/internal/handler/http"
	"github.com/khsolheim/tms-mobile-sync/internal/logger"
	"github.com/khsolheim/tms-mobile-sync/internal/server"
	"github.com/khsolheim/tms-mobile-sync/internal/service"
	"github.com/khsolheim/tms-mobile-sync/internal/workers"
)

type App struct {
	services   *service.Services
	monitor    *workers.ConnectivityMonitor
	httpServer *server.HTTPServer
	logger     *logger.Logger
}

func NewApp(
	services *service.Services,
	monitor *workers.ConnectivityMonitor,
	cfg config.AgentServer,
	log *logger.Logger,
) *App {
	handlers := handlerhttp.NewHandler(services, monitor, log.GetChildLogger())

	return &App{
		services:   services,
		monitor:    monitor,
		httpServer: server.NewHTTPServer(handlers.Init(), cfg, log.GetChildLogger()),
		logger:     log,
	}
}

// Run starts the monitor and the diagnostics listener, then blocks until a
// termination signal arrives and everything has shut down cleanly.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()

	a.monitor.Start(ctx)
	defer a.monitor.Stop()

	if a.httpServer != nil {
		a.logger.Info().Msg("launching diagnostics server")
		go a.httpServer.RunServer()
	}

	<-ctx.Done()

	if a.httpServer != nil {
		a.httpServer.Shutdown()
	}
	a.logger.Info().Msg("agent shutdown gracefully")

	return nil
}

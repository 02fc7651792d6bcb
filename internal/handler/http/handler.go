// Package http exposes the agent's local diagnostics endpoint: a small
// read-mostly surface the mobile shell and operators use to inspect the sync
// core and force a run. It is not the TMS API.
package http

import (
	"github.com/khsolheim/tms-mobile-sync/internal/logger"
	"github.com/khsolheim/tms-mobile-sync/internal/service"
	"github.com/khsolheim/tms-mobile-sync/internal/workers"
)

type Handler struct {
	services *service.Services
	monitor  *workers.ConnectivityMonitor

	logger *logger.Logger
}

func NewHandler(services *service.Services, monitor *workers.ConnectivityMonitor, logger *logger.Logger) *Handler {
	logger.Info().Msg("diagnostics handler created")
	return &Handler{
		services: services,
		monitor:  monitor,
		logger:   logger,
	}
}

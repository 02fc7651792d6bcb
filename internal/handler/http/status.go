package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/khsolheim/tms-mobile-sync/internal/service"
	"github.com/khsolheim/tms-mobile-sync/models"
)

// statusResponse is the diagnostics snapshot returned by GET /api/status.
type statusResponse struct {
	Connectivity models.ConnectivityState `json:"connectivity"`
	QueueDepth   int                      `json:"queue_depth"`
	LastRun      *models.SyncRunResult    `json:"last_run,omitempty"`
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Connectivity: h.monitor.State(),
		QueueDepth:   h.services.Queue.Len(),
	}
	if last, ok := h.services.SyncEngine.LastResult(); ok {
		resp.LastRun = &last
	}

	writeJSON(w, http.StatusOK, resp)
}

// forceSync triggers a sync run and returns its result. A run already in
// progress is reported as 409 so callers can simply retry later.
func (h *Handler) forceSync(w http.ResponseWriter, r *http.Request) {
	result, err := h.monitor.ForceSync(r.Context())
	if errors.Is(err, service.ErrSyncInProgress) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		h.logger.Err(err).Msg("force sync")
		http.Error(w, "sync run failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

package api

import (
	"context"
	"net/http"
	"time"
)

const healthCheckTimeout = 2 * time.Second

type healthResponse struct {
	Status string `json:"status"`
}

// getHealth probes storage with a short-deadline ping: /health is a
// storage-backed liveness check, not a process-only one.
func (api *RestApi) getHealth(rw http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if err := api.DB.PingContext(ctx); err != nil {
		writeJSON(rw, http.StatusServiceUnavailable, healthResponse{Status: "unhealthy"})
		return
	}
	writeJSON(rw, http.StatusOK, healthResponse{Status: "healthy"})
}

// getDebugHealth is an ambient process-liveness endpoint: it always returns
// 200 while the process is up, and carries per-kit collector counters for
// operators, distinct from /health, which reflects storage.
func (api *RestApi) getDebugHealth(rw http.ResponseWriter, r *http.Request) {
	stats := map[string]interface{}{}
	if api.Collector != nil {
		stats["kits"] = api.Collector.Stats()
	}
	writeJSON(rw, http.StatusOK, stats)
}

// Package api is the downstream HTTP surface: kit listing/admin, drone and
// signal queries, CSV export, and the five pattern-detection endpoints,
// mounted on a gorilla/mux router.
package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lukeswitz/wardragon-analytics/internal/collector"
	"github.com/lukeswitz/wardragon-analytics/internal/registry"
	"github.com/lukeswitz/wardragon-analytics/internal/repository"
	"github.com/lukeswitz/wardragon-analytics/pkg/lrucache"
)

// patternCacheMaxMemory bounds the in-memory response cache guarding the
// pattern-detection endpoints, whose union-find and windowed-aggregate
// queries are the most expensive reads this API serves and are routinely
// polled on a fixed interval by dashboards.
const patternCacheMaxMemory = 32 << 20 // 32 MiB

const patternCacheTTL = 5 * time.Second

// RestApi holds the dependencies every handler needs: storage for direct
// queries, the registry for kit admin, and the collector for health
// snapshots surfaced at /debug/health.
type RestApi struct {
	DB        *repository.DB
	Registry  *registry.Registry
	Collector *collector.Collector
}

// New returns a RestApi wired against the given storage, registry, and
// collector.
func New(db *repository.DB, reg *registry.Registry, coll *collector.Collector) *RestApi {
	return &RestApi{DB: db, Registry: reg, Collector: coll}
}

// MountRoutes registers every downstream endpoint on r.
func (api *RestApi) MountRoutes(r *mux.Router) {
	r.HandleFunc("/health", api.getHealth).Methods(http.MethodGet)
	r.HandleFunc("/debug/health", api.getDebugHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.StrictSlash(true)

	apiRouter.HandleFunc("/kits", api.getKits).Methods(http.MethodGet)
	apiRouter.HandleFunc("/drones", api.getDrones).Methods(http.MethodGet)
	apiRouter.HandleFunc("/signals", api.getSignals).Methods(http.MethodGet)
	apiRouter.HandleFunc("/export/csv", api.getExportCSV).Methods(http.MethodGet)

	patternsRouter := apiRouter.PathPrefix("/patterns").Subrouter()
	patternsRouter.Use(lrucache.NewMiddleware(patternCacheMaxMemory, patternCacheTTL))
	patternsRouter.HandleFunc("/repeated-drones", api.getRepeatedDrones).Methods(http.MethodGet)
	patternsRouter.HandleFunc("/coordinated", api.getCoordinated).Methods(http.MethodGet)
	patternsRouter.HandleFunc("/pilot-reuse", api.getPilotReuse).Methods(http.MethodGet)
	patternsRouter.HandleFunc("/anomalies", api.getAnomalies).Methods(http.MethodGet)
	patternsRouter.HandleFunc("/multi-kit", api.getMultiKit).Methods(http.MethodGet)

	apiRouter.HandleFunc("/admin/kits", api.postAdminKit).Methods(http.MethodPost)
	apiRouter.HandleFunc("/admin/kits/test", api.postAdminKitTest).Methods(http.MethodPost)
	apiRouter.HandleFunc("/admin/kits/{kit_id}", api.deleteAdminKit).Methods(http.MethodDelete)
}

// Handler builds the fully mounted, middleware-wrapped http.Handler for
// this RestApi, ready to hand to an http.Server.
func (api *RestApi) Handler(corsOrigins []string) http.Handler {
	r := mux.NewRouter()
	api.MountRoutes(r)
	return withMiddleware(r, corsOrigins)
}

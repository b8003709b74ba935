package api

import (
	"net/http"
	"time"

	"github.com/lukeswitz/wardragon-analytics/internal/metrics"
	"github.com/lukeswitz/wardragon-analytics/internal/patterns"
)

const (
	defaultTimeWindowHours   = 24
	defaultTimeWindowMinutes = 60
	defaultMinAppearances    = 2
	defaultDistanceThreshold = 100.0
	defaultProximityThresh   = 100.0
)

// getRepeatedDrones serves /api/patterns/repeated-drones.
func (api *RestApi) getRepeatedDrones(rw http.ResponseWriter, r *http.Request) {
	windowHours, err := queryIntRange(r, "time_window_hours", defaultTimeWindowHours, 1, 168)
	if err != nil {
		writeError(rw, err)
		return
	}
	minAppearances, err := queryIntMin(r, "min_appearances", defaultMinAppearances, 2)
	if err != nil {
		writeError(rw, err)
		return
	}

	defer observePatternQuery("repeated_drones")()
	findings, err := patterns.RepeatedDrones(r.Context(), api.DB, api.DB.Placeholder(), windowHours, minAppearances)
	if err != nil {
		writeError(rw, err)
		return
	}
	writeJSON(rw, http.StatusOK, map[string]interface{}{"findings": findings, "count": len(findings)})
}

// getCoordinated serves /api/patterns/coordinated.
func (api *RestApi) getCoordinated(rw http.ResponseWriter, r *http.Request) {
	windowMinutes, err := queryIntRange(r, "time_window_minutes", defaultTimeWindowMinutes, 1, 1440)
	if err != nil {
		writeError(rw, err)
		return
	}
	threshold, err := queryFloatMin(r, "distance_threshold_m", defaultDistanceThreshold, 10)
	if err != nil {
		writeError(rw, err)
		return
	}

	defer observePatternQuery("coordinated")()
	clusters, err := patterns.CoordinatedActivity(r.Context(), api.DB, api.DB.Placeholder(), windowMinutes, threshold)
	if err != nil {
		writeError(rw, err)
		return
	}
	writeJSON(rw, http.StatusOK, map[string]interface{}{"clusters": clusters, "count": len(clusters)})
}

// getPilotReuse serves /api/patterns/pilot-reuse.
func (api *RestApi) getPilotReuse(rw http.ResponseWriter, r *http.Request) {
	windowHours, err := queryIntRange(r, "time_window_hours", defaultTimeWindowHours, 1, 168)
	if err != nil {
		writeError(rw, err)
		return
	}
	proximity, err := queryFloat(r, "proximity_threshold_m")
	if err != nil {
		writeError(rw, err)
		return
	}
	threshold := defaultProximityThresh
	if proximity != nil {
		threshold = *proximity
	}

	defer observePatternQuery("pilot_reuse")()
	findings, err := patterns.PilotReuse(r.Context(), api.DB, api.DB.Placeholder(), windowHours, threshold)
	if err != nil {
		writeError(rw, err)
		return
	}
	writeJSON(rw, http.StatusOK, map[string]interface{}{"findings": findings, "count": len(findings)})
}

// getAnomalies serves /api/patterns/anomalies.
func (api *RestApi) getAnomalies(rw http.ResponseWriter, r *http.Request) {
	windowHours, err := queryIntRange(r, "time_window_hours", defaultTimeWindowHours, 1, 24)
	if err != nil {
		writeError(rw, err)
		return
	}

	defer observePatternQuery("anomalies")()
	findings, err := patterns.Anomalies(r.Context(), api.DB, api.DB.Placeholder(), windowHours)
	if err != nil {
		writeError(rw, err)
		return
	}
	writeJSON(rw, http.StatusOK, map[string]interface{}{"findings": findings, "count": len(findings)})
}

// getMultiKit serves /api/patterns/multi-kit.
func (api *RestApi) getMultiKit(rw http.ResponseWriter, r *http.Request) {
	windowMinutes, err := queryIntRange(r, "time_window_minutes", defaultTimeWindowMinutes, 1, 1440)
	if err != nil {
		writeError(rw, err)
		return
	}

	defer observePatternQuery("multi_kit")()
	findings, err := patterns.MultiKitDetections(r.Context(), api.DB, api.DB.Placeholder(), windowMinutes)
	if err != nil {
		writeError(rw, err)
		return
	}
	writeJSON(rw, http.StatusOK, map[string]interface{}{"findings": findings, "count": len(findings)})
}

func observePatternQuery(name string) func() {
	start := time.Now()
	return func() {
		metrics.PatternQueryDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}
}

package api

import (
	"net/http"
	"time"

	"github.com/lukeswitz/wardragon-analytics/internal/query"
	"github.com/lukeswitz/wardragon-analytics/pkg/schema"
)

type signalsResponse struct {
	Signals   []*schema.SignalObservation `json:"signals"`
	Count     int                         `json:"count"`
	TimeRange timeRangeResponse           `json:"time_range"`
}

// getSignals serves /api/signals: filtered, time-ranged RF detections.
func (api *RestApi) getSignals(rw http.ResponseWriter, r *http.Request) {
	tr, err := query.ParseTimeRange(r.URL.Query().Get("time_range"), time.Now().UTC())
	if err != nil {
		writeError(rw, err)
		return
	}
	limit, err := queryInt(r, "limit", query.DefaultLimit)
	if err != nil {
		writeError(rw, err)
		return
	}
	minFreq, err := queryFloat(r, "min_freq_mhz")
	if err != nil {
		writeError(rw, err)
		return
	}
	maxFreq, err := queryFloat(r, "max_freq_mhz")
	if err != nil {
		writeError(rw, err)
		return
	}

	f := query.SignalFilter{
		Range:         tr,
		KitIDs:        splitCSV(r.URL.Query().Get("kit_id")),
		DetectionType: r.URL.Query().Get("detection_type"),
		MinFreqMHz:    minFreq,
		MaxFreqMHz:    maxFreq,
		Limit:         limit,
	}

	rows, err := query.Signals(r.Context(), api.DB, api.DB.Placeholder(), f)
	if err != nil {
		writeError(rw, err)
		return
	}

	writeJSON(rw, http.StatusOK, signalsResponse{
		Signals:   rows,
		Count:     len(rows),
		TimeRange: timeRangeResponse{Start: f.Range.Start, End: f.Range.End},
	})
}

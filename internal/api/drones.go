package api

import (
	"net/http"
	"time"

	"github.com/lukeswitz/wardragon-analytics/internal/query"
	"github.com/lukeswitz/wardragon-analytics/pkg/schema"
)

type dronesResponse struct {
	Drones    []*schema.DroneObservation `json:"drones"`
	Count     int                        `json:"count"`
	TimeRange timeRangeResponse          `json:"time_range"`
}

type timeRangeResponse struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (api *RestApi) droneFilterFromRequest(r *http.Request) (query.DroneFilter, error) {
	tr, err := query.ParseTimeRange(r.URL.Query().Get("time_range"), time.Now().UTC())
	if err != nil {
		return query.DroneFilter{}, err
	}
	limit, err := queryInt(r, "limit", query.DefaultLimit)
	if err != nil {
		return query.DroneFilter{}, err
	}
	return query.DroneFilter{
		Range:     tr,
		KitIDs:    splitCSV(r.URL.Query().Get("kit_id")),
		RIDMake:   r.URL.Query().Get("rid_make"),
		TrackType: r.URL.Query().Get("track_type"),
		Limit:     limit,
	}, nil
}

// getDrones serves /api/drones: filtered, time-ranged drone observations.
func (api *RestApi) getDrones(rw http.ResponseWriter, r *http.Request) {
	f, err := api.droneFilterFromRequest(r)
	if err != nil {
		writeError(rw, err)
		return
	}

	rows, err := query.Drones(r.Context(), api.DB, api.DB.Placeholder(), f)
	if err != nil {
		writeError(rw, err)
		return
	}

	writeJSON(rw, http.StatusOK, dronesResponse{
		Drones:    rows,
		Count:     len(rows),
		TimeRange: timeRangeResponse{Start: f.Range.Start, End: f.Range.End},
	})
}

// getExportCSV serves /api/export/csv: the same filter surface as /api/drones,
// streamed as CSV with the fixed column order.
func (api *RestApi) getExportCSV(rw http.ResponseWriter, r *http.Request) {
	f, err := api.droneFilterFromRequest(r)
	if err != nil {
		writeError(rw, err)
		return
	}

	rw.Header().Set("Content-Type", "text/csv")
	rw.Header().Set("Content-Disposition", "attachment; filename="+query.ExportFilename(time.Now()))
	if err := query.WriteDronesCSV(r.Context(), api.DB, api.DB.Placeholder(), f, rw); err != nil {
		writeError(rw, err)
		return
	}
}

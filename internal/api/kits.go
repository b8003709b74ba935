package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/lukeswitz/wardragon-analytics/internal/apperr"
	"github.com/lukeswitz/wardragon-analytics/internal/registry"
	"github.com/lukeswitz/wardragon-analytics/pkg/schema"
)

type kitsResponse struct {
	Kits  []schema.KitWithStatus `json:"kits"`
	Count int                    `json:"count"`
}

// getKits lists registered kits, optionally filtered to one kit_id.
func (api *RestApi) getKits(rw http.ResponseWriter, r *http.Request) {
	kitID := r.URL.Query().Get("kit_id")
	kits := api.Registry.ListKits(kitID)
	writeJSON(rw, http.StatusOK, kitsResponse{Kits: kits, Count: len(kits)})
}

type addKitRequest struct {
	APIURL   string `json:"api_url"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Enabled  *bool  `json:"enabled"`
}

// postAdminKit registers a new kit: probes api_url, derives its kit_id, and
// adds it to the live registry. The collector picks it up within one fast
// tick via the registry's event bus.
func (api *RestApi) postAdminKit(rw http.ResponseWriter, r *http.Request) {
	var req addKitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(rw, apperr.Validation("malformed request body: "+err.Error()))
		return
	}
	if req.APIURL == "" {
		writeError(rw, apperr.Validation("api_url is required"))
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	k, err := api.Registry.AddKit(r.Context(), req.APIURL, req.Name, req.Location, enabled)
	if err != nil {
		if err == registry.ErrDuplicateKit {
			writeError(rw, apperr.Validation("kit already registered"))
			return
		}
		writeError(rw, apperr.New(apperr.KindInternal, "adding kit", err))
		return
	}
	writeJSON(rw, http.StatusOK, k)
}

// deleteAdminKit removes a kit from the live registry, preserving its
// historical observations.
func (api *RestApi) deleteAdminKit(rw http.ResponseWriter, r *http.Request) {
	kitID := mux.Vars(r)["kit_id"]
	if err := api.Registry.RemoveKit(r.Context(), kitID); err != nil {
		writeError(rw, apperr.New(apperr.KindInternal, "removing kit", err))
		return
	}
	writeJSON(rw, http.StatusOK, map[string]string{"kit_id": kitID, "status": "removed"})
}

type testKitRequest struct {
	APIURL string `json:"api_url"`
	KitID  string `json:"kit_id"`
}

type testKitResponse struct {
	Reachable     bool   `json:"reachable"`
	RoundTripMS   int64  `json:"round_trip_ms"`
	ReportedKitID string `json:"reported_kit_id,omitempty"`
}

// postAdminKitTest probes a kit by api_url or, if kit_id is given instead,
// by its currently-registered base URL. It never mutates the registry.
func (api *RestApi) postAdminKitTest(rw http.ResponseWriter, r *http.Request) {
	var req testKitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(rw, apperr.Validation("malformed request body: "+err.Error()))
		return
	}

	apiURL := req.APIURL
	if apiURL == "" && req.KitID != "" {
		for _, k := range api.Registry.ListKits(req.KitID) {
			apiURL = k.BaseURL
		}
	}
	if apiURL == "" {
		writeError(rw, apperr.Validation("api_url or kit_id is required"))
		return
	}

	result, err := api.Registry.ProbeURL(r.Context(), apiURL)
	if err != nil {
		writeJSON(rw, http.StatusOK, testKitResponse{Reachable: false})
		return
	}
	writeJSON(rw, http.StatusOK, testKitResponse{
		Reachable:     result.Reachable,
		RoundTripMS:   result.RoundTrip.Milliseconds(),
		ReportedKitID: result.ReportedKitID,
	})
}

package api

import (
	"encoding/json"
	"net/http"

	"github.com/lukeswitz/wardragon-analytics/internal/apperr"
	"github.com/lukeswitz/wardragon-analytics/pkg/log"
)

// errorDetail is the fixed shape every error response carries, per the
// downstream API contract.
type errorDetail struct {
	Detail string `json:"detail"`
}

func writeJSON(rw http.ResponseWriter, status int, body interface{}) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(rw).Encode(body); err != nil {
		log.Errorf("api: failed to encode response: %v", err)
	}
}

// writeError maps err to a status code via apperr.Kind, defaulting to 500
// for anything that isn't a classified *apperr.Error.
func writeError(rw http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if e := apperr.As(err); e != nil {
		status = e.Kind.HTTPStatus()
	}
	log.Warnf("api: request failed: %v", err)
	writeJSON(rw, status, errorDetail{Detail: err.Error()})
}

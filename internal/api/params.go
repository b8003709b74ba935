package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/lukeswitz/wardragon-analytics/internal/apperr"
)

func splitCSV(v string) []string {
	if v == "" {
		return nil
	}
	return strings.Split(v, ",")
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, apperr.Validation("invalid " + key + ": not an integer")
	}
	return n, nil
}

// queryIntRange parses key as queryInt does, then rejects a value outside
// [min, max] with a 422 rather than silently clamping it.
func queryIntRange(r *http.Request, key string, def, min, max int) (int, error) {
	n, err := queryInt(r, key, def)
	if err != nil {
		return 0, err
	}
	if n < min || n > max {
		return 0, apperr.Validation(fmt.Sprintf("invalid %s: must be between %d and %d", key, min, max))
	}
	return n, nil
}

// queryIntMin is queryIntRange without an upper bound.
func queryIntMin(r *http.Request, key string, def, min int) (int, error) {
	n, err := queryInt(r, key, def)
	if err != nil {
		return 0, err
	}
	if n < min {
		return 0, apperr.Validation(fmt.Sprintf("invalid %s: must be at least %d", key, min))
	}
	return n, nil
}

func queryFloat(r *http.Request, key string) (*float64, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, apperr.Validation("invalid " + key + ": not a number")
	}
	return &f, nil
}

// queryFloatMin resolves key against def when absent, then rejects a value
// below min with a 422.
func queryFloatMin(r *http.Request, key string, def, min float64) (float64, error) {
	f, err := queryFloat(r, key)
	if err != nil {
		return 0, err
	}
	v := def
	if f != nil {
		v = *f
	}
	if v < min {
		return 0, apperr.Validation(fmt.Sprintf("invalid %s: must be at least %v", key, min))
	}
	return v, nil
}

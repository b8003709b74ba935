// Package query implements the read-path HTTP surface over the storage
// layer: time-range parsing shared by every endpoint, the /drones and
// /signals observation queries, and streaming CSV export. All of it is
// read-only, assembling filtered, paged queries with squirrel.
package query

import (
	"strconv"
	"strings"
	"time"

	"github.com/lukeswitz/wardragon-analytics/internal/apperr"
)

// DefaultWindow is applied when no time_range parameter is given.
const DefaultWindow = time.Hour

// MaxWindow caps the absolute span of any time range, regardless of form.
const MaxWindow = 168 * time.Hour

// TimeRange is a resolved, UTC [Start, End) window.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ParseTimeRange accepts "1h", "24h", "7d", or "custom:<ISO-start>,<ISO-end>".
// An empty string resolves to the trailing DefaultWindow. Any other form is
// a validation error. The resolved window is clamped to MaxWindow.
func ParseTimeRange(raw string, now time.Time) (TimeRange, error) {
	now = now.UTC()

	if raw == "" {
		return TimeRange{Start: now.Add(-DefaultWindow), End: now}, nil
	}

	if strings.HasPrefix(raw, "custom:") {
		return parseCustomRange(raw[len("custom:"):], now)
	}

	switch raw {
	case "1h", "24h", "7d":
		if d, ok := parseRelativeDuration(raw); ok {
			return TimeRange{Start: now.Add(-d), End: now}, nil
		}
	}

	return TimeRange{}, apperr.Validation("time_range must be one of \"1h\", \"24h\", \"7d\", or \"custom:<ISO-start>,<ISO-end>\"")
}

// parseRelativeDuration accepts the fixed vocabulary "<N>h" / "<N>d"; it is
// deliberately not a generic time.ParseDuration passthrough so that
// unsupported units fail validation instead of silently misinterpreting.
func parseRelativeDuration(raw string) (time.Duration, bool) {
	if raw == "" {
		return 0, false
	}
	unit := raw[len(raw)-1]
	n, err := strconv.Atoi(raw[:len(raw)-1])
	if err != nil || n <= 0 {
		return 0, false
	}
	switch unit {
	case 'h':
		return time.Duration(n) * time.Hour, true
	case 'd':
		return time.Duration(n) * 24 * time.Hour, true
	default:
		return 0, false
	}
}

func parseCustomRange(spec string, now time.Time) (TimeRange, error) {
	parts := strings.SplitN(spec, ",", 2)
	if len(parts) != 2 {
		return TimeRange{}, apperr.Validation("custom time range must be \"custom:<ISO-start>,<ISO-end>\"")
	}

	start, err := time.Parse(time.RFC3339, strings.TrimSpace(parts[0]))
	if err != nil {
		return TimeRange{}, apperr.Validation("custom time range start is not a valid ISO-8601 timestamp")
	}
	end, err := time.Parse(time.RFC3339, strings.TrimSpace(parts[1]))
	if err != nil {
		return TimeRange{}, apperr.Validation("custom time range end is not a valid ISO-8601 timestamp")
	}
	start, end = start.UTC(), end.UTC()

	if !end.After(start) {
		return TimeRange{}, apperr.Validation("custom time range end must be after start")
	}
	if end.Sub(start) > MaxWindow {
		start = end.Add(-MaxWindow)
	}

	return TimeRange{Start: start, End: end}, nil
}

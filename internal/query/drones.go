package query

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/lukeswitz/wardragon-analytics/pkg/schema"
)

// MaxLimit is the hard cap on any single /drones or /signals result page.
const MaxLimit = 10000

// DefaultLimit is used when the caller supplies no limit or a non-positive one.
const DefaultLimit = 1000

// Queryer is the read-only surface the query engine needs from storage.
type Queryer interface {
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// DroneFilter narrows a /drones query; zero values mean "no filter".
type DroneFilter struct {
	Range     TimeRange
	KitIDs    []string
	RIDMake   string
	TrackType string
	Limit     int
}

// ClampLimit returns a Limit within (0, MaxLimit], defaulting to DefaultLimit.
func (f DroneFilter) ClampLimit() uint64 {
	return clampLimit(f.Limit)
}

func clampLimit(limit int) uint64 {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return uint64(limit)
}

var droneColumns = []string{
	"time", "kit_id", "drone_id", "lat", "lon", "alt_m", "speed_ms", "heading",
	"pilot_lat", "pilot_lon", "home_lat", "home_lon", "mac", "rssi", "freq_mhz",
	"ua_type", "operator_id", "caa_id", "rid_make", "rid_model", "rid_source", "track_type",
}

func droneWhere(sb sq.SelectBuilder, f DroneFilter) sq.SelectBuilder {
	sb = sb.Where(sq.And{sq.GtOrEq{"time": f.Range.Start}, sq.Lt{"time": f.Range.End}})
	if len(f.KitIDs) > 0 {
		sb = sb.Where(sq.Eq{"kit_id": f.KitIDs})
	}
	if f.RIDMake != "" {
		sb = sb.Where(sq.Eq{"rid_make": f.RIDMake})
	}
	if f.TrackType != "" {
		sb = sb.Where(sq.Eq{"track_type": f.TrackType})
	}
	return sb
}

// Drones selects observations over f.Range and optional (kit, rid_make,
// track_type) filters, newest first, capped at f.Limit (defaulting/clamping
// to [1, MaxLimit]).
func Drones(ctx context.Context, db Queryer, placeholder sq.PlaceholderFormat, f DroneFilter) ([]*schema.DroneObservation, error) {
	sb := droneWhere(
		sq.StatementBuilder.PlaceholderFormat(placeholder).Select(droneColumns...).From("drones"),
		f,
	).OrderBy("time DESC").Limit(f.ClampLimit())

	sql, args, err := sb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("query: building drones query: %w", err)
	}

	var rows []*schema.DroneObservation
	if err := db.SelectContext(ctx, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("query: running drones query: %w", err)
	}
	return rows, nil
}

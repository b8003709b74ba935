package query

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/lukeswitz/wardragon-analytics/internal/apperr"
	"github.com/lukeswitz/wardragon-analytics/internal/util"
	"github.com/lukeswitz/wardragon-analytics/pkg/schema"
)

var validDetectionTypes = []string{
	string(schema.DetectionAnalogFPV),
	string(schema.DetectionDJIFPV),
	string(schema.DetectionRCControl),
	string(schema.DetectionWiFi),
	string(schema.DetectionUnknown),
}

// SignalFilter narrows a /signals query; zero values mean "no filter".
type SignalFilter struct {
	Range         TimeRange
	KitIDs        []string
	DetectionType string
	MinFreqMHz    *float64
	MaxFreqMHz    *float64
	Limit         int
}

// ClampLimit returns a Limit within (0, MaxLimit], defaulting to DefaultLimit.
func (f SignalFilter) ClampLimit() uint64 {
	return clampLimit(f.Limit)
}

var signalColumns = []string{
	"time", "kit_id", "freq_mhz", "power_dbm", "bandwidth_mhz", "lat", "lon", "alt_m", "detection_type",
}

// Signals selects observations over f.Range and optional (kit, frequency
// range, detection_type) filters, newest first, capped at f.Limit.
func Signals(ctx context.Context, db Queryer, placeholder sq.PlaceholderFormat, f SignalFilter) ([]*schema.SignalObservation, error) {
	sb := sq.StatementBuilder.PlaceholderFormat(placeholder).Select(signalColumns...).From("signals").
		Where(sq.And{sq.GtOrEq{"time": f.Range.Start}, sq.Lt{"time": f.Range.End}})

	if len(f.KitIDs) > 0 {
		sb = sb.Where(sq.Eq{"kit_id": f.KitIDs})
	}
	if f.DetectionType != "" {
		if !util.Contains(validDetectionTypes, f.DetectionType) {
			return nil, apperr.Validation(fmt.Sprintf("query: unknown detection_type %q", f.DetectionType))
		}
		sb = sb.Where(sq.Eq{"detection_type": f.DetectionType})
	}
	if f.MinFreqMHz != nil {
		sb = sb.Where(sq.GtOrEq{"freq_mhz": *f.MinFreqMHz})
	}
	if f.MaxFreqMHz != nil {
		sb = sb.Where(sq.LtOrEq{"freq_mhz": *f.MaxFreqMHz})
	}

	sb = sb.OrderBy("time DESC").Limit(f.ClampLimit())

	sql, args, err := sb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("query: building signals query: %w", err)
	}

	var rows []*schema.SignalObservation
	if err := db.SelectContext(ctx, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("query: running signals query: %w", err)
	}
	return rows, nil
}

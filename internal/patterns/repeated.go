package patterns

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/lukeswitz/wardragon-analytics/pkg/schema"
)

// appearanceGap is the maximum silence between consecutive observations of
// the same drone_id before a new "appearance" begins.
const appearanceGap = 5 * time.Minute

// sampleLocationCap bounds how many sample locations a repeated-drone
// finding carries, independent of the overall result cap.
const sampleLocationCap = 20

type droneTimeRow struct {
	DroneID string    `db:"drone_id"`
	Time    time.Time `db:"time"`
	Lat     *float64  `db:"lat"`
	Lon     *float64  `db:"lon"`
}

// RepeatedDrones groups observations by drone_id over the trailing
// timeWindowHours and returns drone_ids whose number of appearances (runs
// separated by more than appearanceGap of silence) meets minAppearances.
func RepeatedDrones(ctx context.Context, db Queryer, placeholder sq.PlaceholderFormat, timeWindowHours int, minAppearances int) ([]schema.RepeatedDroneFinding, error) {
	since := time.Now().Add(-time.Duration(timeWindowHours) * time.Hour)

	query, args, err := sq.StatementBuilder.PlaceholderFormat(placeholder).
		Select("drone_id", "time", "lat", "lon").
		From("drones").
		Where(sq.GtOrEq{"time": since}).
		OrderBy("drone_id ASC", "time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("patterns: building repeated-drones query: %w", err)
	}

	var rows []droneTimeRow
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("patterns: querying repeated-drones: %w", err)
	}

	var findings []schema.RepeatedDroneFinding
	i := 0
	for i < len(rows) {
		j := i
		droneID := rows[i].DroneID
		for j < len(rows) && rows[j].DroneID == droneID {
			j++
		}
		findings = append(findings, summarizeDroneAppearances(droneID, rows[i:j], minAppearances)...)
		i = j
	}

	return capResults(findings), nil
}

// summarizeDroneAppearances splits one drone_id's time-ordered observations
// into appearances and returns at most one finding (the whole run count),
// or none if it falls short of minAppearances.
func summarizeDroneAppearances(droneID string, rows []droneTimeRow, minAppearances int) []schema.RepeatedDroneFinding {
	if len(rows) == 0 {
		return nil
	}

	appearances := 1
	for k := 1; k < len(rows); k++ {
		if rows[k].Time.Sub(rows[k-1].Time) > appearanceGap {
			appearances++
		}
	}
	if appearances < minAppearances {
		return nil
	}

	samples := make([]schema.LocationSample, 0, sampleLocationCap)
	stride := len(rows) / sampleLocationCap
	if stride < 1 {
		stride = 1
	}
	for k := 0; k < len(rows) && len(samples) < sampleLocationCap; k += stride {
		r := rows[k]
		if r.Lat == nil || r.Lon == nil {
			continue
		}
		samples = append(samples, schema.LocationSample{Time: r.Time, Lat: *r.Lat, Lon: *r.Lon})
	}

	return []schema.RepeatedDroneFinding{{
		DroneID:         droneID,
		FirstSeen:       rows[0].Time,
		LastSeen:        rows[len(rows)-1].Time,
		AppearanceCount: appearances,
		SampleLocations: samples,
	}}
}

package patterns

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/lukeswitz/wardragon-analytics/pkg/schema"
)

type kitDetectionRow struct {
	DroneID string    `db:"drone_id"`
	KitID   string    `db:"kit_id"`
	Time    time.Time `db:"time"`
	RSSI    *int      `db:"rssi"`
	Lat     *float64  `db:"lat"`
	Lon     *float64  `db:"lon"`
}

// MultiKitDetections buckets observations into 1-minute windows and, within
// each bucket, returns (drone_id, bucket) pairs seen by two or more distinct
// kits, flagging triangulation_possible when three or more kits saw it.
func MultiKitDetections(ctx context.Context, db Queryer, placeholder sq.PlaceholderFormat, timeWindowMinutes int) ([]schema.MultiKitFinding, error) {
	since := time.Now().Add(-time.Duration(timeWindowMinutes) * time.Minute)

	query, args, err := sq.StatementBuilder.PlaceholderFormat(placeholder).
		Select("drone_id", "kit_id", "time", "rssi", "lat", "lon").
		From("drones").
		Where(sq.GtOrEq{"time": since}).
		OrderBy("drone_id ASC", "time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("patterns: building multi-kit query: %w", err)
	}

	var rows []kitDetectionRow
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("patterns: querying multi-kit: %w", err)
	}

	type bucketKey struct {
		droneID string
		bucket  int64
	}
	byBucket := make(map[bucketKey][]kitDetectionRow)
	for _, r := range rows {
		key := bucketKey{droneID: r.DroneID, bucket: r.Time.Unix() / 60}
		byBucket[key] = append(byBucket[key], r)
	}

	var findings []schema.MultiKitFinding
	for key, detections := range byBucket {
		distinctKits := make(map[string]struct{})
		for _, d := range detections {
			distinctKits[d.KitID] = struct{}{}
		}
		if len(distinctKits) < 2 {
			continue
		}

		kits := make([]schema.KitDetection, 0, len(detections))
		for _, d := range detections {
			kits = append(kits, schema.KitDetection{KitID: d.KitID, RSSI: d.RSSI, Lat: d.Lat, Lon: d.Lon, Time: d.Time})
		}

		findings = append(findings, schema.MultiKitFinding{
			DroneID:               key.droneID,
			Bucket:                time.Unix(key.bucket*60, 0).UTC(),
			Kits:                  kits,
			TriangulationPossible: len(distinctKits) >= 3,
		})
	}

	return capResults(findings), nil
}

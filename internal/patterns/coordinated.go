package patterns

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/lukeswitz/wardragon-analytics/pkg/geo"
	"github.com/lukeswitz/wardragon-analytics/pkg/schema"
)

type positionedRow struct {
	DroneID string    `db:"drone_id"`
	Time    time.Time `db:"time"`
	Lat     float64   `db:"lat"`
	Lon     float64   `db:"lon"`
}

// CoordinatedActivity clusters observations that are close in both time
// (equal or adjacent 1-minute buckets) and space (within distanceThresholdM)
// and keeps clusters spanning at least two distinct drone_ids.
func CoordinatedActivity(ctx context.Context, db Queryer, placeholder sq.PlaceholderFormat, timeWindowMinutes int, distanceThresholdM float64) ([]schema.CoordinatedCluster, error) {
	since := time.Now().Add(-time.Duration(timeWindowMinutes) * time.Minute)

	query, args, err := sq.StatementBuilder.PlaceholderFormat(placeholder).
		Select("drone_id", "time", "lat", "lon").
		From("drones").
		Where(sq.And{sq.GtOrEq{"time": since}, sq.NotEq{"lat": nil}, sq.NotEq{"lon": nil}}).
		OrderBy("time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("patterns: building coordinated-activity query: %w", err)
	}

	var rows []positionedRow
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("patterns: querying coordinated-activity: %w", err)
	}

	buckets := make([]int64, len(rows))
	for i, r := range rows {
		buckets[i] = r.Time.Unix() / 60
	}

	uf := newUnionFind(len(rows))
	for i := 0; i < len(rows); i++ {
		for j := i + 1; j < len(rows); j++ {
			bucketDelta := buckets[j] - buckets[i]
			if bucketDelta > 1 {
				break // rows sorted by time: nothing further out can be adjacent either
			}
			if geo.DistanceMeters(rows[i].Lat, rows[i].Lon, rows[j].Lat, rows[j].Lon) <= distanceThresholdM {
				uf.union(i, j)
			}
		}
	}

	groups := make(map[int][]int)
	for i := range rows {
		root := uf.find(i)
		groups[root] = append(groups[root], i)
	}

	var clusters []schema.CoordinatedCluster
	for _, idxs := range groups {
		droneSet := make(map[string]struct{})
		for _, idx := range idxs {
			droneSet[rows[idx].DroneID] = struct{}{}
		}
		if len(droneSet) < 2 {
			continue
		}

		lats := make([]float64, len(idxs))
		lons := make([]float64, len(idxs))
		earliest := rows[idxs[0]].Time
		for k, idx := range idxs {
			lats[k], lons[k] = rows[idx].Lat, rows[idx].Lon
			if rows[idx].Time.Before(earliest) {
				earliest = rows[idx].Time
			}
		}
		centroidLat, centroidLon := geo.Centroid(lats, lons)

		droneIDs := make([]string, 0, len(droneSet))
		for id := range droneSet {
			droneIDs = append(droneIDs, id)
		}

		clusters = append(clusters, schema.CoordinatedCluster{
			ClusterTime: earliest,
			CentroidLat: centroidLat,
			CentroidLon: centroidLon,
			DroneIDs:    droneIDs,
			Severity:    coordinatedSeverity(len(droneSet)),
		})
	}

	sortCoordinatedClusters(clusters)
	return capResults(clusters), nil
}

func coordinatedSeverity(droneCount int) schema.Severity {
	switch {
	case droneCount >= 5:
		return schema.SeverityHigh
	case droneCount >= 3:
		return schema.SeverityMedium
	default:
		return schema.SeverityLow
	}
}

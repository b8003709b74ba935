package patterns

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/lukeswitz/wardragon-analytics/pkg/geo"
	"github.com/lukeswitz/wardragon-analytics/pkg/schema"
)

type operatorRow struct {
	DroneID    string    `db:"drone_id"`
	OperatorID string    `db:"operator_id"`
	Time       time.Time `db:"time"`
}

type pilotPositionRow struct {
	DroneID  string    `db:"drone_id"`
	Time     time.Time `db:"time"`
	PilotLat float64   `db:"pilot_lat"`
	PilotLon float64   `db:"pilot_lon"`
}

// PilotReuse unions two correlation methods: a shared, non-empty
// operator_id across distinct drone_ids, and pilot-position clustering
// within proximityThresholdM across distinct drone_ids.
func PilotReuse(ctx context.Context, db Queryer, placeholder sq.PlaceholderFormat, timeWindowHours int, proximityThresholdM float64) ([]schema.PilotReuseFinding, error) {
	since := time.Now().Add(-time.Duration(timeWindowHours) * time.Hour)

	byOperator, err := pilotReuseByOperatorID(ctx, db, placeholder, since)
	if err != nil {
		return nil, err
	}

	byProximity, err := pilotReuseByProximity(ctx, db, placeholder, since, proximityThresholdM)
	if err != nil {
		return nil, err
	}

	findings := append(byOperator, byProximity...)
	return capResults(findings), nil
}

func pilotReuseByOperatorID(ctx context.Context, db Queryer, placeholder sq.PlaceholderFormat, since time.Time) ([]schema.PilotReuseFinding, error) {
	query, args, err := sq.StatementBuilder.PlaceholderFormat(placeholder).
		Select("drone_id", "operator_id", "time").
		From("drones").
		Where(sq.And{sq.GtOrEq{"time": since}, sq.NotEq{"operator_id": nil}}).
		OrderBy("operator_id ASC", "time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("patterns: building pilot-reuse operator query: %w", err)
	}

	var rows []operatorRow
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("patterns: querying pilot-reuse operator: %w", err)
	}

	var findings []schema.PilotReuseFinding
	i := 0
	for i < len(rows) {
		j := i
		operatorID := rows[i].OperatorID
		ranges := make(map[string]*schema.DroneSeenRange)
		for j < len(rows) && rows[j].OperatorID == operatorID {
			dr, ok := ranges[rows[j].DroneID]
			if !ok {
				ranges[rows[j].DroneID] = &schema.DroneSeenRange{DroneID: rows[j].DroneID, FirstSeen: rows[j].Time, LastSeen: rows[j].Time}
			} else {
				if rows[j].Time.Before(dr.FirstSeen) {
					dr.FirstSeen = rows[j].Time
				}
				if rows[j].Time.After(dr.LastSeen) {
					dr.LastSeen = rows[j].Time
				}
			}
			j++
		}
		if len(ranges) >= 2 {
			drones := make([]schema.DroneSeenRange, 0, len(ranges))
			for _, dr := range ranges {
				drones = append(drones, *dr)
			}
			op := operatorID
			findings = append(findings, schema.PilotReuseFinding{
				Method:     schema.PilotReuseByOperatorID,
				OperatorID: &op,
				Drones:     drones,
			})
		}
		i = j
	}
	return findings, nil
}

func pilotReuseByProximity(ctx context.Context, db Queryer, placeholder sq.PlaceholderFormat, since time.Time, proximityThresholdM float64) ([]schema.PilotReuseFinding, error) {
	query, args, err := sq.StatementBuilder.PlaceholderFormat(placeholder).
		Select("drone_id", "time", "pilot_lat", "pilot_lon").
		From("drones").
		Where(sq.And{sq.GtOrEq{"time": since}, sq.NotEq{"pilot_lat": nil}, sq.NotEq{"pilot_lon": nil}}).
		OrderBy("time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("patterns: building pilot-reuse proximity query: %w", err)
	}

	var rows []pilotPositionRow
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("patterns: querying pilot-reuse proximity: %w", err)
	}

	uf := newUnionFind(len(rows))
	for i := 0; i < len(rows); i++ {
		for j := i + 1; j < len(rows); j++ {
			if geo.DistanceMeters(rows[i].PilotLat, rows[i].PilotLon, rows[j].PilotLat, rows[j].PilotLon) <= proximityThresholdM {
				uf.union(i, j)
			}
		}
	}

	groups := make(map[int][]int)
	for i := range rows {
		groups[uf.find(i)] = append(groups[uf.find(i)], i)
	}

	var findings []schema.PilotReuseFinding
	for _, idxs := range groups {
		ranges := make(map[string]*schema.DroneSeenRange)
		lats := make([]float64, 0, len(idxs))
		lons := make([]float64, 0, len(idxs))
		for _, idx := range idxs {
			r := rows[idx]
			lats = append(lats, r.PilotLat)
			lons = append(lons, r.PilotLon)
			dr, ok := ranges[r.DroneID]
			if !ok {
				ranges[r.DroneID] = &schema.DroneSeenRange{DroneID: r.DroneID, FirstSeen: r.Time, LastSeen: r.Time}
			} else {
				if r.Time.Before(dr.FirstSeen) {
					dr.FirstSeen = r.Time
				}
				if r.Time.After(dr.LastSeen) {
					dr.LastSeen = r.Time
				}
			}
		}
		if len(ranges) < 2 {
			continue
		}

		centroidLat, centroidLon := geo.Centroid(lats, lons)
		drones := make([]schema.DroneSeenRange, 0, len(ranges))
		for _, dr := range ranges {
			drones = append(drones, *dr)
		}

		findings = append(findings, schema.PilotReuseFinding{
			Method:      schema.PilotReuseByPilotProximity,
			CentroidLat: &centroidLat,
			CentroidLon: &centroidLon,
			Drones:      drones,
		})
	}
	return findings, nil
}

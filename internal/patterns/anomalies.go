package patterns

import (
	"context"
	"fmt"
	"math"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/lukeswitz/wardragon-analytics/pkg/schema"
)

const (
	speedCriticalMS = 50.0
	speedHighMS     = 40.0
	speedMediumMS   = 30.0

	altCriticalM = 500.0
	altHighM     = 450.0
	altMediumM   = 400.0

	rapidAltCriticalM = 100.0
	rapidAltHighM     = 75.0
	rapidAltMediumM   = 50.0

	rapidAltWindow  = 10 * time.Second
	continuityBreak = 30 * time.Second
)

type anomalySourceRow struct {
	DroneID string    `db:"drone_id"`
	KitID   string    `db:"kit_id"`
	Time    time.Time `db:"time"`
	SpeedMS *float64  `db:"speed_ms"`
	AltM    *float64  `db:"alt_m"`
}

// Anomalies evaluates three rules over the trailing timeWindowHours:
// excessive speed, excessive altitude, and rapid altitude change across a
// sliding 10-second window per drone_id (continuity breaks after a 30s gap).
func Anomalies(ctx context.Context, db Queryer, placeholder sq.PlaceholderFormat, timeWindowHours int) ([]schema.AnomalyFinding, error) {
	since := time.Now().Add(-time.Duration(timeWindowHours) * time.Hour)

	query, args, err := sq.StatementBuilder.PlaceholderFormat(placeholder).
		Select("drone_id", "kit_id", "time", "speed_ms", "alt_m").
		From("drones").
		Where(sq.GtOrEq{"time": since}).
		OrderBy("drone_id ASC", "time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("patterns: building anomalies query: %w", err)
	}

	var rows []anomalySourceRow
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("patterns: querying anomalies: %w", err)
	}

	var findings []schema.AnomalyFinding
	for _, r := range rows {
		if r.SpeedMS != nil {
			if sev, threshold, ok := speedSeverity(*r.SpeedMS); ok {
				findings = append(findings, schema.AnomalyFinding{
					Kind: schema.AnomalySpeed, Severity: sev, DroneID: r.DroneID, KitID: r.KitID,
					Time: r.Time, Value: *r.SpeedMS, Threshold: threshold,
				})
			}
		}
		if r.AltM != nil {
			if sev, threshold, ok := altitudeSeverity(*r.AltM); ok {
				findings = append(findings, schema.AnomalyFinding{
					Kind: schema.AnomalyAltitude, Severity: sev, DroneID: r.DroneID, KitID: r.KitID,
					Time: r.Time, Value: *r.AltM, Threshold: threshold,
				})
			}
		}
	}

	findings = append(findings, rapidAltitudeChanges(rows)...)

	sortAnomalies(findings)
	return capResults(findings), nil
}

func speedSeverity(speedMS float64) (schema.Severity, float64, bool) {
	switch {
	case speedMS >= speedCriticalMS:
		return schema.SeverityCritical, speedCriticalMS, true
	case speedMS >= speedHighMS:
		return schema.SeverityHigh, speedHighMS, true
	case speedMS >= speedMediumMS:
		return schema.SeverityMedium, speedMediumMS, true
	default:
		return "", 0, false
	}
}

func altitudeSeverity(altM float64) (schema.Severity, float64, bool) {
	switch {
	case altM >= altCriticalM:
		return schema.SeverityCritical, altCriticalM, true
	case altM >= altHighM:
		return schema.SeverityHigh, altHighM, true
	case altM >= altMediumM:
		return schema.SeverityMedium, altMediumM, true
	default:
		return "", 0, false
	}
}

func rapidAltitudeSeverity(deltaM float64) (schema.Severity, float64, bool) {
	abs := math.Abs(deltaM)
	switch {
	case abs >= rapidAltCriticalM:
		return schema.SeverityCritical, rapidAltCriticalM, true
	case abs >= rapidAltHighM:
		return schema.SeverityHigh, rapidAltHighM, true
	case abs >= rapidAltMediumM:
		return schema.SeverityMedium, rapidAltMediumM, true
	default:
		return "", 0, false
	}
}

// rapidAltitudeChanges walks each drone_id's time-ordered, altitude-bearing
// rows and flags any pair within rapidAltWindow of each other whose delta
// reaches a severity threshold. A gap larger than continuityBreak starts a fresh run.
func rapidAltitudeChanges(rows []anomalySourceRow) []schema.AnomalyFinding {
	var findings []schema.AnomalyFinding

	i := 0
	for i < len(rows) {
		j := i
		droneID := rows[i].DroneID
		for j < len(rows) && rows[j].DroneID == droneID {
			j++
		}

		run := rows[i:j]
		runStart := 0
		for k := 1; k < len(run); k++ {
			if run[k].Time.Sub(run[k-1].Time) > continuityBreak {
				runStart = k
				continue
			}
			for m := runStart; m < k; m++ {
				if run[m].AltM == nil || run[k].AltM == nil {
					continue
				}
				if run[k].Time.Sub(run[m].Time) > rapidAltWindow {
					continue
				}
				delta := *run[k].AltM - *run[m].AltM
				if sev, threshold, ok := rapidAltitudeSeverity(delta); ok {
					findings = append(findings, schema.AnomalyFinding{
						Kind: schema.AnomalyRapidAltitudeChange, Severity: sev,
						DroneID: droneID, KitID: run[k].KitID, Time: run[k].Time,
						Value: delta, Threshold: threshold,
					})
				}
			}
		}

		i = j
	}

	return findings
}

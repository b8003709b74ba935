package repository

import (
	"context"
	"fmt"

	"github.com/lukeswitz/wardragon-analytics/internal/apperr"
	"github.com/lukeswitz/wardragon-analytics/pkg/schema"
)

var healthUpsertColumns = []string{
	"time", "kit_id", "gps_lat", "gps_lon", "gps_alt", "cpu_percent",
	"memory_percent", "disk_percent", "uptime_hours", "temp_cpu", "temp_gpu",
}

var healthUpdateColumns = healthUpsertColumns[2:]

// UpsertHealth writes a batch of kit-health samples under the same
// upsert/idempotence contract as UpsertDrones.
func (db *DB) UpsertHealth(ctx context.Context, batch []*schema.KitHealthSample) (committed int, err error) {
	if len(batch) == 0 {
		return 0, nil
	}

	for _, h := range batch {
		q := db.StatementBuilder().Insert("system_health").Columns(healthUpsertColumns...).
			Values(h.Time, h.KitID, h.GPSLat, h.GPSLon, h.GPSAlt, h.CPUPercent,
				h.MemoryPercent, h.DiskPercent, h.UptimeHours, h.TempCPU, h.TempGPU).
			Suffix(onConflictSuffix([]string{"time", "kit_id"}, healthUpdateColumns))

		if _, execErr := q.ExecContext(ctx); execErr != nil {
			err = apperr.New(apperr.KindStorageRow, fmt.Sprintf("upserting health sample for %s", h.KitID), execErr)
			continue
		}
		committed++
	}
	return committed, err
}

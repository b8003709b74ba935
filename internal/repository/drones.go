package repository

import (
	"context"
	"fmt"

	"github.com/lukeswitz/wardragon-analytics/internal/apperr"
	"github.com/lukeswitz/wardragon-analytics/pkg/schema"
)

var droneUpsertColumns = []string{
	"time", "kit_id", "drone_id", "lat", "lon", "alt_m", "speed_ms", "heading",
	"pilot_lat", "pilot_lon", "home_lat", "home_lon", "mac", "rssi", "freq_mhz",
	"ua_type", "operator_id", "caa_id", "rid_make", "rid_model", "rid_source", "track_type",
}

var droneUpdateColumns = droneUpsertColumns[3:]

// UpsertDrones writes a batch of drone observations under the idempotence
// contract: on a (time, kit_id, drone_id) conflict, non-key columns are
// overwritten with the incoming row. A row that fails to bind is skipped
// and counted rather than aborting the batch (KindStorageRow); the caller
// gets back how many rows actually committed.
func (db *DB) UpsertDrones(ctx context.Context, batch []*schema.DroneObservation) (committed int, err error) {
	if len(batch) == 0 {
		return 0, nil
	}

	for _, d := range batch {
		q := db.StatementBuilder().Insert("drones").Columns(droneUpsertColumns...).
			Values(d.Time, d.KitID, d.DroneID, d.Lat, d.Lon, d.AltM, d.SpeedMS, d.Heading,
				d.PilotLat, d.PilotLon, d.HomeLat, d.HomeLon, d.MAC, d.RSSI, d.FreqMHz,
				d.UAType, d.OperatorID, d.CAAID, d.RIDMake, d.RIDModel, d.RIDSource, d.TrackType).
			Suffix(onConflictSuffix([]string{"time", "kit_id", "drone_id"}, droneUpdateColumns))

		if _, execErr := q.ExecContext(ctx); execErr != nil {
			err = apperr.New(apperr.KindStorageRow, fmt.Sprintf("upserting drone %s/%s", d.KitID, d.DroneID), execErr)
			continue
		}
		committed++
	}
	return committed, err
}

package query

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lukeswitz/wardragon-analytics/internal/repository"
	"github.com/lukeswitz/wardragon-analytics/pkg/schema"
)

func openTestDB(t *testing.T) *repository.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "query_test.db")
	db, err := repository.Connect("sqlite3", path)
	require.NoError(t, err)
	require.NoError(t, db.MigrateUp())
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDronesFiltersByTimeRangeAndKit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	lat, lon := 1.0, 2.0
	obs := []*schema.DroneObservation{
		{Time: now, KitID: "kit-1", DroneID: "drone-a", Lat: &lat, Lon: &lon, TrackType: schema.TrackTypeDrone},
		{Time: now.Add(-2 * time.Hour), KitID: "kit-1", DroneID: "drone-b", Lat: &lat, Lon: &lon, TrackType: schema.TrackTypeDrone},
		{Time: now, KitID: "kit-2", DroneID: "drone-c", Lat: &lat, Lon: &lon, TrackType: schema.TrackTypeDrone},
	}
	_, err := db.UpsertDrones(ctx, obs)
	require.NoError(t, err)

	tr, err := ParseTimeRange("1h", now)
	require.NoError(t, err)

	rows, err := Drones(ctx, db, db.Placeholder(), DroneFilter{Range: tr, KitIDs: []string{"kit-1"}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "drone-a", rows[0].DroneID)
}

func TestDronesLimitClampsToMax(t *testing.T) {
	f := DroneFilter{Limit: 999999}
	require.Equal(t, uint64(MaxLimit), f.ClampLimit())
}

func TestDronesLimitDefaultsWhenNonPositive(t *testing.T) {
	f := DroneFilter{Limit: 0}
	require.Equal(t, uint64(DefaultLimit), f.ClampLimit())
}

func TestWriteDronesCSVFixedColumnOrder(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	lat, lon := 1.0, 2.0
	obs := []*schema.DroneObservation{
		{Time: now, KitID: "kit-1", DroneID: "drone-a", Lat: &lat, Lon: &lon, TrackType: schema.TrackTypeDrone},
	}
	_, err := db.UpsertDrones(ctx, obs)
	require.NoError(t, err)

	tr, err := ParseTimeRange("1h", now)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteDronesCSV(ctx, db, db.Placeholder(), DroneFilter{Range: tr}, &buf))

	require.Contains(t, buf.String(), "time,kit_id,drone_id,lat,lon,alt,speed,heading")
	require.Contains(t, buf.String(), "drone-a")
}

package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lukeswitz/wardragon-analytics/pkg/schema"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Connect("sqlite3", path)
	require.NoError(t, err)
	require.NoError(t, db.MigrateUp())
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInsertAndListKit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	k := &schema.Kit{KitID: "kit-1", Name: "North Fence", BaseURL: "http://10.0.0.5:8088", Enabled: true, CreatedAt: time.Now()}
	require.NoError(t, db.InsertKit(ctx, k))

	kits, err := db.ListKits(ctx, "")
	require.NoError(t, err)
	require.Len(t, kits, 1)
	require.Equal(t, "kit-1", kits[0].KitID)
}

func TestRemoveKitNotFound(t *testing.T) {
	db := openTestDB(t)
	err := db.RemoveKit(context.Background(), "does-not-exist")
	require.ErrorIs(t, err, ErrKitNotFound)
}

func TestUpsertDronesIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	lat := 37.0
	lon := -122.0

	obs := &schema.DroneObservation{
		Time: now, KitID: "kit-1", DroneID: "drone-a",
		Lat: &lat, Lon: &lon, TrackType: schema.TrackTypeDrone,
	}

	committed, err := db.UpsertDrones(ctx, []*schema.DroneObservation{obs})
	require.NoError(t, err)
	require.Equal(t, 1, committed)

	// Re-inserting the identical key with a different lon must overwrite,
	// not duplicate.
	newLon := -123.0
	obs2 := *obs
	obs2.Lon = &newLon
	committed, err = db.UpsertDrones(ctx, []*schema.DroneObservation{&obs2})
	require.NoError(t, err)
	require.Equal(t, 1, committed)

	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM drones WHERE kit_id = ? AND drone_id = ?", "kit-1", "drone-a"))
	require.Equal(t, 1, count)

	var gotLon float64
	require.NoError(t, db.Get(&gotLon, "SELECT lon FROM drones WHERE kit_id = ? AND drone_id = ?", "kit-1", "drone-a"))
	require.Equal(t, -123.0, gotLon)
}

func TestUpsertSignalsAndHealth(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	sig := &schema.SignalObservation{Time: now, KitID: "kit-1", FreqMHz: 915.0}
	committed, err := db.UpsertSignals(ctx, []*schema.SignalObservation{sig})
	require.NoError(t, err)
	require.Equal(t, 1, committed)

	health := &schema.KitHealthSample{Time: now, KitID: "kit-1"}
	committed, err = db.UpsertHealth(ctx, []*schema.KitHealthSample{health})
	require.NoError(t, err)
	require.Equal(t, 1, committed)
}

func TestRunRetentionSqliteDeletesOldRows(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	old := time.Now().Add(-48 * time.Hour)
	lat := 1.0
	lon := 2.0
	obs := &schema.DroneObservation{Time: old, KitID: "kit-1", DroneID: "drone-old", Lat: &lat, Lon: &lon, TrackType: schema.TrackTypeDrone}
	_, err := db.UpsertDrones(ctx, []*schema.DroneObservation{obs})
	require.NoError(t, err)

	require.NoError(t, db.RunRetention(ctx, "drones", 24*time.Hour, nil))

	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM drones"))
	require.Equal(t, 0, count)
}

package patterns

import (
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
	path := filepath.Join(t.TempDir(), "patterns_test.db")
	db, err := repository.Connect("sqlite3", path)
	require.NoError(t, err)
	require.NoError(t, db.MigrateUp())
	t.Cleanup(func() { db.Close() })
	return db
}

func ptr(f float64) *float64 { return &f }

func TestRepeatedDronesCountsAppearances(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	obs := []*schema.DroneObservation{
		{Time: now.Add(-3 * time.Hour), KitID: "kit-1", DroneID: "drone-a", Lat: ptr(1), Lon: ptr(1), TrackType: schema.TrackTypeDrone},
		{Time: now.Add(-2*time.Hour - 10*time.Minute), KitID: "kit-1", DroneID: "drone-a", Lat: ptr(1), Lon: ptr(1), TrackType: schema.TrackTypeDrone},
		{Time: now.Add(-1 * time.Hour), KitID: "kit-1", DroneID: "drone-a", Lat: ptr(1), Lon: ptr(1), TrackType: schema.TrackTypeDrone},
	}
	_, err := db.UpsertDrones(ctx, obs)
	require.NoError(t, err)

	findings, err := RepeatedDrones(ctx, db, db.Placeholder(), 24, 2)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	require.Equal(t, "drone-a", findings[0].DroneID)
	require.Equal(t, 3, findings[0].AppearanceCount)
}

func TestRepeatedDronesBelowThresholdExcluded(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	obs := []*schema.DroneObservation{
		{Time: now, KitID: "kit-1", DroneID: "drone-a", Lat: ptr(1), Lon: ptr(1), TrackType: schema.TrackTypeDrone},
	}
	_, err := db.UpsertDrones(ctx, obs)
	require.NoError(t, err)

	findings, err := RepeatedDrones(ctx, db, db.Placeholder(), 24, 2)
	require.NoError(t, err)
	require.Empty(t, findings)
}

func TestCoordinatedActivityRequiresTwoDistinctDrones(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	obs := []*schema.DroneObservation{
		{Time: now, KitID: "kit-1", DroneID: "drone-a", Lat: ptr(37.0), Lon: ptr(-122.0), TrackType: schema.TrackTypeDrone},
		{Time: now, KitID: "kit-1", DroneID: "drone-b", Lat: ptr(37.0001), Lon: ptr(-122.0001), TrackType: schema.TrackTypeDrone},
	}
	_, err := db.UpsertDrones(ctx, obs)
	require.NoError(t, err)

	clusters, err := CoordinatedActivity(ctx, db, db.Placeholder(), 60, 50)
	require.NoError(t, err)
	require.Len(t, clusters, 1)
	require.ElementsMatch(t, []string{"drone-a", "drone-b"}, clusters[0].DroneIDs)
	require.Equal(t, schema.SeverityLow, clusters[0].Severity)
}

func TestCoordinatedActivitySingleDroneExcluded(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	obs := []*schema.DroneObservation{
		{Time: now, KitID: "kit-1", DroneID: "drone-a", Lat: ptr(37.0), Lon: ptr(-122.0), TrackType: schema.TrackTypeDrone},
	}
	_, err := db.UpsertDrones(ctx, obs)
	require.NoError(t, err)

	clusters, err := CoordinatedActivity(ctx, db, db.Placeholder(), 60, 50)
	require.NoError(t, err)
	require.Empty(t, clusters)
}

func TestPilotReuseByOperatorID(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)
	operator := "op-1"

	obs := []*schema.DroneObservation{
		{Time: now, KitID: "kit-1", DroneID: "drone-a", OperatorID: &operator, TrackType: schema.TrackTypeDrone},
		{Time: now, KitID: "kit-1", DroneID: "drone-b", OperatorID: &operator, TrackType: schema.TrackTypeDrone},
	}
	_, err := db.UpsertDrones(ctx, obs)
	require.NoError(t, err)

	findings, err := PilotReuse(ctx, db, db.Placeholder(), 24, 50)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	require.Equal(t, schema.PilotReuseByOperatorID, findings[0].Method)
	require.Len(t, findings[0].Drones, 2)
}

func TestAnomaliesFlagsExcessiveSpeed(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	obs := []*schema.DroneObservation{
		{Time: now, KitID: "kit-1", DroneID: "drone-a", SpeedMS: ptr(55.0), TrackType: schema.TrackTypeDrone},
	}
	_, err := db.UpsertDrones(ctx, obs)
	require.NoError(t, err)

	findings, err := Anomalies(ctx, db, db.Placeholder(), 24)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	require.Equal(t, schema.AnomalySpeed, findings[0].Kind)
	require.Equal(t, schema.SeverityCritical, findings[0].Severity)
}

func TestAnomaliesRapidAltitudeChange(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	obs := []*schema.DroneObservation{
		{Time: now, KitID: "kit-1", DroneID: "drone-a", AltM: ptr(100.0), TrackType: schema.TrackTypeDrone},
		{Time: now.Add(5 * time.Second), KitID: "kit-1", DroneID: "drone-a", AltM: ptr(210.0), TrackType: schema.TrackTypeDrone},
	}
	_, err := db.UpsertDrones(ctx, obs)
	require.NoError(t, err)

	findings, err := Anomalies(ctx, db, db.Placeholder(), 24)
	require.NoError(t, err)

	var foundRapid bool
	for _, f := range findings {
		if f.Kind == schema.AnomalyRapidAltitudeChange {
			foundRapid = true
			require.Equal(t, schema.SeverityCritical, f.Severity)
		}
	}
	require.True(t, foundRapid, "expected a rapid altitude change finding")
}

func TestMultiKitDetectionsRequiresTwoDistinctKits(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	obs := []*schema.DroneObservation{
		{Time: now, KitID: "kit-1", DroneID: "drone-a", RSSI: intPtr(-50), TrackType: schema.TrackTypeDrone},
		{Time: now, KitID: "kit-2", DroneID: "drone-a", RSSI: intPtr(-60), TrackType: schema.TrackTypeDrone},
		{Time: now, KitID: "kit-3", DroneID: "drone-a", RSSI: intPtr(-70), TrackType: schema.TrackTypeDrone},
	}
	_, err := db.UpsertDrones(ctx, obs)
	require.NoError(t, err)

	findings, err := MultiKitDetections(ctx, db, db.Placeholder(), 60)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	require.True(t, findings[0].TriangulationPossible)
	require.Len(t, findings[0].Kits, 3)
}

func intPtr(i int) *int { return &i }

func TestSpeedSeverityBoundaries(t *testing.T) {
	_, _, ok := speedSeverity(29.99)
	require.False(t, ok)

	sev, _, ok := speedSeverity(30.00)
	require.True(t, ok)
	require.Equal(t, schema.SeverityMedium, sev)

	sev, _, ok = speedSeverity(40.00)
	require.True(t, ok)
	require.Equal(t, schema.SeverityHigh, sev)

	sev, _, ok = speedSeverity(50.01)
	require.True(t, ok)
	require.Equal(t, schema.SeverityCritical, sev)
}

func TestAltitudeSeverityBoundaries(t *testing.T) {
	sev, _, ok := altitudeSeverity(400.00)
	require.True(t, ok)
	require.Equal(t, schema.SeverityMedium, sev)

	sev, _, ok = altitudeSeverity(450.00)
	require.True(t, ok)
	require.Equal(t, schema.SeverityHigh, sev)

	sev, _, ok = altitudeSeverity(500.01)
	require.True(t, ok)
	require.Equal(t, schema.SeverityCritical, sev)
}

func TestRapidAltitudeSeverityBoundaries(t *testing.T) {
	_, _, ok := rapidAltitudeSeverity(49.99)
	require.False(t, ok)

	sev, _, ok := rapidAltitudeSeverity(50.00)
	require.True(t, ok)
	require.Equal(t, schema.SeverityMedium, sev)

	sev, _, ok = rapidAltitudeSeverity(75.01)
	require.True(t, ok)
	require.Equal(t, schema.SeverityHigh, sev)

	sev, _, ok = rapidAltitudeSeverity(100.01)
	require.True(t, ok)
	require.Equal(t, schema.SeverityCritical, sev)
}

package query

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lukeswitz/wardragon-analytics/pkg/schema"
)

func TestExportFilenameFormat(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 5, 1, 0, time.UTC)
	require.Equal(t, "wardragon_analytics_20260314_090501.csv", ExportFilename(at))
}

func TestWriteDronesCSVRoundTripsAllColumns(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	lat, lon, alt, speed := 1.5, 2.5, 100.0, 12.0
	mac := "AA:BB:CC:DD:EE:FF"
	rssi := -42
	ridMake := "DJI"
	rid := schema.RIDSourceWiFi
	obs := []*schema.DroneObservation{
		{
			Time: now, KitID: "kit-1", DroneID: "drone-a",
			Lat: &lat, Lon: &lon, AltM: &alt, SpeedMS: &speed,
			MAC: &mac, RSSI: &rssi, RIDMake: &ridMake, RIDSource: &rid,
			TrackType: schema.TrackTypeDrone,
		},
	}
	_, err := db.UpsertDrones(ctx, obs)
	require.NoError(t, err)

	tr, err := ParseTimeRange("1h", now)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteDronesCSV(ctx, db, db.Placeholder(), DroneFilter{Range: tr}, &buf))

	r := csv.NewReader(&buf)
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, CSVColumns, records[0])

	row := records[1]
	require.Equal(t, "kit-1", row[1])
	require.Equal(t, "drone-a", row[2])
	require.Equal(t, "-42", row[13])
	require.Equal(t, "DJI", row[18])
	require.Equal(t, "WiFi", row[20])
}

func TestWriteDronesCSVEmptyResultStillWritesHeader(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	tr, err := ParseTimeRange("1h", now)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteDronesCSV(ctx, db, db.Placeholder(), DroneFilter{Range: tr}, &buf))

	r := csv.NewReader(&buf)
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, CSVColumns, records[0])
}

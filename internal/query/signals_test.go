package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lukeswitz/wardragon-analytics/pkg/schema"
)

func TestSignalsFiltersByFrequencyRange(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	analog, wifi, rc := schema.DetectionAnalogFPV, schema.DetectionWiFi, schema.DetectionRCControl
	obs := []*schema.SignalObservation{
		{Time: now, KitID: "kit-1", FreqMHz: 5800, DetectionType: &analog},
		{Time: now, KitID: "kit-1", FreqMHz: 2440, DetectionType: &wifi},
		{Time: now, KitID: "kit-1", FreqMHz: 915, DetectionType: &rc},
	}
	_, err := db.UpsertSignals(ctx, obs)
	require.NoError(t, err)

	tr, err := ParseTimeRange("1h", now)
	require.NoError(t, err)

	min, max := 2000.0, 6000.0
	rows, err := Signals(ctx, db, db.Placeholder(), SignalFilter{Range: tr, MinFreqMHz: &min, MaxFreqMHz: &max})
	require.NoError(t, err)
	require.Len(t, rows, 2)
}

func TestSignalsFiltersByDetectionType(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	analog, wifi := schema.DetectionAnalogFPV, schema.DetectionWiFi
	obs := []*schema.SignalObservation{
		{Time: now, KitID: "kit-1", FreqMHz: 5800, DetectionType: &analog},
		{Time: now, KitID: "kit-1", FreqMHz: 2440, DetectionType: &wifi},
	}
	_, err := db.UpsertSignals(ctx, obs)
	require.NoError(t, err)

	tr, err := ParseTimeRange("1h", now)
	require.NoError(t, err)

	rows, err := Signals(ctx, db, db.Placeholder(), SignalFilter{Range: tr, DetectionType: string(schema.DetectionWiFi)})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, schema.DetectionWiFi, *rows[0].DetectionType)
}

func TestSignalsLimitClampsToMax(t *testing.T) {
	f := SignalFilter{Limit: 999999}
	require.Equal(t, uint64(MaxLimit), f.ClampLimit())
}

func TestSignalsRejectsUnknownDetectionType(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	tr, err := ParseTimeRange("1h", now)
	require.NoError(t, err)

	_, err = Signals(ctx, db, db.Placeholder(), SignalFilter{Range: tr, DetectionType: "bluetooth"})
	require.Error(t, err)
}

package repository

import (
	"context"
	"fmt"

	"github.com/lukeswitz/wardragon-analytics/internal/apperr"
	"github.com/lukeswitz/wardragon-analytics/pkg/schema"
)

var signalUpsertColumns = []string{
	"time", "kit_id", "freq_mhz", "power_dbm", "bandwidth_mhz", "lat", "lon", "alt_m", "detection_type",
}

var signalUpdateColumns = signalUpsertColumns[3:]

// UpsertSignals writes a batch of signal observations under the same
// upsert/idempotence contract as UpsertDrones.
func (db *DB) UpsertSignals(ctx context.Context, batch []*schema.SignalObservation) (committed int, err error) {
	if len(batch) == 0 {
		return 0, nil
	}

	for _, s := range batch {
		q := db.StatementBuilder().Insert("signals").Columns(signalUpsertColumns...).
			Values(s.Time, s.KitID, s.FreqMHz, s.PowerDBm, s.BandwidthMHz, s.Lat, s.Lon, s.AltM, s.DetectionType).
			Suffix(onConflictSuffix([]string{"time", "kit_id", "freq_mhz"}, signalUpdateColumns))

		if _, execErr := q.ExecContext(ctx); execErr != nil {
			err = apperr.New(apperr.KindStorageRow, fmt.Sprintf("upserting signal %s/%g", s.KitID, s.FreqMHz), execErr)
			continue
		}
		committed++
	}
	return committed, err
}

// onConflictSuffix builds a generic "ON CONFLICT (...) DO UPDATE SET ..."
// clause given the conflict key columns and the columns to overwrite.
func onConflictSuffix(keyCols, updateCols []string) string {
	keys := ""
	for i, c := range keyCols {
		if i > 0 {
			keys += ", "
		}
		keys += c
	}
	set := ""
	for i, c := range updateCols {
		if i > 0 {
			set += ", "
		}
		set += fmt.Sprintf("%s = excluded.%s", c, c)
	}
	return fmt.Sprintf("ON CONFLICT (%s) DO UPDATE SET %s", keys, set)
}

package query

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/lukeswitz/wardragon-analytics/pkg/schema"
)

// CSVColumns is the fixed column order every export uses, regardless of
// which optional fields a given observation carries.
var CSVColumns = []string{
	"time", "kit_id", "drone_id", "lat", "lon", "alt", "speed", "heading",
	"pilot_lat", "pilot_lon", "home_lat", "home_lon", "mac", "rssi", "freq",
	"ua_type", "operator_id", "caa_id", "rid_make", "rid_model", "rid_source", "track_type",
}

// ExportFilename builds the fixed "wardragon_analytics_YYYYMMDD_HHMMSS.csv"
// pattern from the instant the export started.
func ExportFilename(at time.Time) string {
	return fmt.Sprintf("wardragon_analytics_%s.csv", at.UTC().Format("20060102_150405"))
}

// WriteDronesCSV streams the same query surface as Drones as CSV with the
// fixed CSVColumns header and column order.
func WriteDronesCSV(ctx context.Context, db Queryer, placeholder sq.PlaceholderFormat, f DroneFilter, w io.Writer) error {
	rows, err := Drones(ctx, db, placeholder, f)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(CSVColumns); err != nil {
		return fmt.Errorf("query: writing csv header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(droneCSVRow(r)); err != nil {
			return fmt.Errorf("query: writing csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func droneCSVRow(d *schema.DroneObservation) []string {
	ridSource := ""
	if d.RIDSource != nil {
		ridSource = string(*d.RIDSource)
	}
	return []string{
		d.Time.UTC().Format(time.RFC3339),
		d.KitID,
		d.DroneID,
		floatOrEmpty(d.Lat),
		floatOrEmpty(d.Lon),
		floatOrEmpty(d.AltM),
		floatOrEmpty(d.SpeedMS),
		floatOrEmpty(d.Heading),
		floatOrEmpty(d.PilotLat),
		floatOrEmpty(d.PilotLon),
		floatOrEmpty(d.HomeLat),
		floatOrEmpty(d.HomeLon),
		stringOrEmpty(d.MAC),
		intOrEmpty(d.RSSI),
		floatOrEmpty(d.FreqMHz),
		stringOrEmpty(d.UAType),
		stringOrEmpty(d.OperatorID),
		stringOrEmpty(d.CAAID),
		stringOrEmpty(d.RIDMake),
		stringOrEmpty(d.RIDModel),
		ridSource,
		string(d.TrackType),
	}
}

func floatOrEmpty(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func intOrEmpty(i *int) string {
	if i == nil {
		return ""
	}
	return strconv.Itoa(*i)
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

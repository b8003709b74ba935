package collector

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/lukeswitz/wardragon-analytics/pkg/schema"
)

var fixedReceived = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestParseTimeISO8601(t *testing.T) {
	got := parseTime("2026-01-01T12:30:00Z", fixedReceived)
	want := time.Date(2026, 1, 1, 12, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestParseTimeEpochSeconds(t *testing.T) {
	got := parseTime(json.Number("1735689600"), fixedReceived)
	want := time.Unix(1735689600, 0).UTC()
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestParseTimeEpochMillis(t *testing.T) {
	got := parseTime(json.Number("1735689600000"), fixedReceived)
	want := time.Unix(1735689600, 0).UTC()
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestParseTimeMissingFallsBackToReceived(t *testing.T) {
	got := parseTime(nil, fixedReceived)
	if !got.Equal(fixedReceived) {
		t.Fatalf("got %v, want %v", got, fixedReceived)
	}
}

func TestParseTimeUnparseableFallsBackToReceived(t *testing.T) {
	got := parseTime("not-a-time", fixedReceived)
	if !got.Equal(fixedReceived) {
		t.Fatalf("got %v, want %v", got, fixedReceived)
	}
}

func TestCoerceFloatHandlesStringDrift(t *testing.T) {
	f := coerceFloat("12.5")
	if f == nil || *f != 12.5 {
		t.Fatalf("got %v, want 12.5", f)
	}
}

func TestCoerceFloatUnparseableIsAbsent(t *testing.T) {
	if f := coerceFloat("not-a-number"); f != nil {
		t.Fatalf("got %v, want nil", *f)
	}
	if f := coerceFloat(true); f != nil {
		t.Fatalf("got %v, want nil", *f)
	}
}

func TestNormalizeCoordPairZeroZeroIsAbsent(t *testing.T) {
	zero := 0.0
	lat, lon := normalizeCoordPair(&zero, &zero)
	if lat != nil || lon != nil {
		t.Fatal("expected (0,0) to normalize to absent")
	}
}

func TestNormalizeCoordPairRealValuesPreserved(t *testing.T) {
	lat, lon := 37.0, -122.0
	gotLat, gotLon := normalizeCoordPair(&lat, &lon)
	if gotLat == nil || gotLon == nil || *gotLat != 37.0 || *gotLon != -122.0 {
		t.Fatalf("expected coordinates preserved, got %v %v", gotLat, gotLon)
	}
}

func TestNormalizeDroneMissingDroneIDDropped(t *testing.T) {
	_, ok := normalizeDrone(rawDroneRecord{}, "kit-1", fixedReceived)
	if ok {
		t.Fatal("expected record with no drone_id to be dropped")
	}
}

func TestNormalizeDroneTrackTypeDefaultsToDrone(t *testing.T) {
	raw := rawDroneRecord{DroneID: "drone-a"}
	obs, ok := normalizeDrone(raw, "kit-1", fixedReceived)
	if !ok {
		t.Fatal("expected record to normalize")
	}
	if obs.TrackType != schema.TrackTypeDrone {
		t.Fatalf("got %v, want drone", obs.TrackType)
	}
}

func TestNormalizeDroneADSBSourceIsAircraft(t *testing.T) {
	raw := rawDroneRecord{DroneID: "n12345", RIDSource: "ADSB"}
	obs, ok := normalizeDrone(raw, "kit-1", fixedReceived)
	if !ok {
		t.Fatal("expected record to normalize")
	}
	if obs.TrackType != schema.TrackTypeAircraft {
		t.Fatalf("got %v, want aircraft", obs.TrackType)
	}
}

func TestNormalizeDronePilotZeroZeroAbsent(t *testing.T) {
	raw := rawDroneRecord{DroneID: "drone-a", PilotLat: 0.0, PilotLon: 0.0}
	obs, ok := normalizeDrone(raw, "kit-1", fixedReceived)
	if !ok {
		t.Fatal("expected record to normalize")
	}
	if obs.HasPilotPosition() {
		t.Fatal("expected (0,0) pilot position to be absent")
	}
}

func TestNormalizeSignalMissingFreqDropped(t *testing.T) {
	_, ok := normalizeSignal(rawSignalRecord{}, "kit-1", fixedReceived)
	if ok {
		t.Fatal("expected record with no freq_mhz to be dropped")
	}
}

func TestNormalizeSignalBandInference(t *testing.T) {
	raw := rawSignalRecord{FreqMHz: 5800.0}
	obs, ok := normalizeSignal(raw, "kit-1", fixedReceived)
	if !ok {
		t.Fatal("expected record to normalize")
	}
	if obs.DetectionType == nil || *obs.DetectionType != schema.DetectionAnalogFPV {
		t.Fatalf("got %v, want analog_fpv", obs.DetectionType)
	}
}

func TestNormalizeSignalExplicitHintWins(t *testing.T) {
	raw := rawSignalRecord{FreqMHz: 5800.0, DetectionType: "dji_fpv"}
	obs, ok := normalizeSignal(raw, "kit-1", fixedReceived)
	if !ok {
		t.Fatal("expected record to normalize")
	}
	if obs.DetectionType == nil || *obs.DetectionType != schema.DetectionDJIFPV {
		t.Fatalf("got %v, want dji_fpv", obs.DetectionType)
	}
}

func TestNormalizeHealthGPSNested(t *testing.T) {
	raw := rawStatusRecord{GPS: &rawGPS{Lat: 1.0, Lon: 2.0, Alt: 3.0}}
	sample := normalizeHealth(raw, "kit-1", fixedReceived)
	if sample.GPSLat == nil || *sample.GPSLat != 1.0 {
		t.Fatalf("got %v, want 1.0", sample.GPSLat)
	}
}

package collector

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/lukeswitz/wardragon-analytics/pkg/schema"
)

// epochMillisThreshold distinguishes epoch seconds from epoch milliseconds:
// a seconds value this large would land centuries in the future, so any
// timestamp at or above it is assumed to already be in milliseconds.
const epochMillisThreshold = 1e12

// parseTime accepts ISO-8601, epoch seconds, or epoch milliseconds and
// returns a UTC instant. A missing or unparseable value falls back to
// receivedAt, the instant the poll response was read.
func parseTime(v interface{}, receivedAt time.Time) time.Time {
	switch t := v.(type) {
	case nil:
		return receivedAt
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return receivedAt
		}
		return timeFromEpoch(f)
	case float64:
		return timeFromEpoch(t)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return receivedAt
		}
		if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return parsed.UTC()
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return timeFromEpoch(f)
		}
		return receivedAt
	default:
		return receivedAt
	}
}

func timeFromEpoch(f float64) time.Time {
	if f >= epochMillisThreshold {
		return time.UnixMilli(int64(f)).UTC()
	}
	return time.Unix(int64(f), 0).UTC()
}

// coerceFloat defensively converts a decoded JSON value to a float64
// pointer. Anything that cannot be interpreted as a number comes back nil
// rather than failing the whole record.
func coerceFloat(v interface{}) *float64 {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil
		}
		return &f
	case float64:
		return &t
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

func coerceInt(v interface{}) *int {
	f := coerceFloat(v)
	if f == nil {
		return nil
	}
	i := int(*f)
	return &i
}

func coerceString(v interface{}) *string {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		return &s
	case json.Number:
		s := t.String()
		return &s
	default:
		return nil
	}
}

// normalizeCoordPair treats an exact (0, 0) pair as "not reported", a
// common sentinel from GPS-less or not-yet-fixed kits, and returns nil,nil
// in that case so it never looks like a real position at the equator.
func normalizeCoordPair(lat, lon *float64) (*float64, *float64) {
	if lat != nil && lon != nil && *lat == 0 && *lon == 0 {
		return nil, nil
	}
	return lat, lon
}

func isADSBSource(v interface{}) bool {
	s := coerceString(v)
	if s == nil {
		return false
	}
	return strings.EqualFold(*s, string(schema.RIDSourceADSB)) || strings.EqualFold(*s, "adsb")
}

func normalizeRIDSource(v interface{}) *schema.RemoteIDSource {
	s := coerceString(v)
	if s == nil {
		return nil
	}
	switch strings.ToUpper(*s) {
	case string(schema.RIDSourceBLE):
		src := schema.RIDSourceBLE
		return &src
	case string(schema.RIDSourceWiFi), "WIFI":
		src := schema.RIDSourceWiFi
		return &src
	case string(schema.RIDSourceDJI):
		src := schema.RIDSourceDJI
		return &src
	case string(schema.RIDSourceADSB):
		src := schema.RIDSourceADSB
		return &src
	default:
		return nil
	}
}

// normalizeDrone converts one raw /drones record into a storable
// DroneObservation. Records missing a usable drone_id are dropped; the
// caller skips them rather than writing a row with no track identity.
func normalizeDrone(raw rawDroneRecord, kitID string, receivedAt time.Time) (*schema.DroneObservation, bool) {
	droneID := coerceString(raw.DroneID)
	if droneID == nil {
		return nil, false
	}

	lat, lon := normalizeCoordPair(coerceFloat(raw.Lat), coerceFloat(raw.Lon))
	pilotLat, pilotLon := normalizeCoordPair(coerceFloat(raw.PilotLat), coerceFloat(raw.PilotLon))
	homeLat, homeLon := normalizeCoordPair(coerceFloat(raw.HomeLat), coerceFloat(raw.HomeLon))

	trackType := schema.TrackTypeDrone
	if isADSBSource(raw.RIDSource) {
		trackType = schema.TrackTypeAircraft
	}

	obs := &schema.DroneObservation{
		Time:       parseTime(raw.Time, receivedAt),
		KitID:      kitID,
		DroneID:    *droneID,
		Lat:        lat,
		Lon:        lon,
		AltM:       coerceFloat(raw.Alt),
		SpeedMS:    coerceFloat(raw.Speed),
		Heading:    coerceFloat(raw.Heading),
		PilotLat:   pilotLat,
		PilotLon:   pilotLon,
		HomeLat:    homeLat,
		HomeLon:    homeLon,
		MAC:        coerceString(raw.MAC),
		RSSI:       coerceInt(raw.RSSI),
		FreqMHz:    coerceFloat(raw.Freq),
		UAType:     coerceString(raw.UAType),
		OperatorID: coerceString(raw.OperatorID),
		CAAID:      coerceString(raw.CAAID),
		RIDMake:    coerceString(raw.RIDMake),
		RIDModel:   coerceString(raw.RIDModel),
		RIDSource:  normalizeRIDSource(raw.RIDSource),
		TrackType:  trackType,
	}
	return obs, true
}

// inferDetectionType prefers an explicit, recognized hint from the source
// record and otherwise falls back to common band assignments.
func inferDetectionType(freqMHz float64, hint *string) schema.DetectionType {
	if hint != nil {
		switch schema.DetectionType(strings.ToLower(*hint)) {
		case schema.DetectionAnalogFPV, schema.DetectionDJIFPV, schema.DetectionRCControl, schema.DetectionWiFi:
			return schema.DetectionType(strings.ToLower(*hint))
		}
	}
	switch {
	case freqMHz >= 5725 && freqMHz <= 5875:
		return schema.DetectionAnalogFPV
	case freqMHz >= 2400 && freqMHz <= 2483:
		return schema.DetectionWiFi
	case freqMHz >= 900 && freqMHz <= 930:
		return schema.DetectionRCControl
	default:
		return schema.DetectionUnknown
	}
}

// normalizeSignal converts one raw /signals record. Records missing a
// usable freq_mhz are dropped: frequency is part of the row's primary key.
func normalizeSignal(raw rawSignalRecord, kitID string, receivedAt time.Time) (*schema.SignalObservation, bool) {
	freq := coerceFloat(raw.FreqMHz)
	if freq == nil {
		return nil, false
	}

	lat, lon := normalizeCoordPair(coerceFloat(raw.Lat), coerceFloat(raw.Lon))

	detection := inferDetectionType(*freq, coerceString(raw.DetectionType))

	return &schema.SignalObservation{
		Time:          parseTime(raw.Time, receivedAt),
		KitID:         kitID,
		FreqMHz:       *freq,
		PowerDBm:      coerceFloat(raw.PowerDBm),
		BandwidthMHz:  coerceFloat(raw.BandwidthMHz),
		Lat:           lat,
		Lon:           lon,
		AltM:          coerceFloat(raw.Alt),
		DetectionType: &detection,
	}, true
}

// normalizeHealth converts one raw /status record into a KitHealthSample.
func normalizeHealth(raw rawStatusRecord, kitID string, receivedAt time.Time) *schema.KitHealthSample {
	sample := &schema.KitHealthSample{
		Time:          parseTime(raw.Time, receivedAt),
		KitID:         kitID,
		CPUPercent:    coerceFloat(raw.CPUPercent),
		MemoryPercent: coerceFloat(raw.MemoryPercent),
		DiskPercent:   coerceFloat(raw.DiskPercent),
		UptimeHours:   coerceFloat(raw.UptimeHours),
		TempCPU:       coerceFloat(raw.TempCPU),
		TempGPU:       coerceFloat(raw.TempGPU),
	}
	if raw.GPS != nil {
		sample.GPSLat = coerceFloat(raw.GPS.Lat)
		sample.GPSLon = coerceFloat(raw.GPS.Lon)
		sample.GPSAlt = coerceFloat(raw.GPS.Alt)
	}
	return sample
}

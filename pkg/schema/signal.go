package schema

import "time"

// DetectionType classifies the kind of RF emission a signal observation
// represents, inferred from frequency band and source-supplied hints.
type DetectionType string

const (
	DetectionAnalogFPV DetectionType = "analog_fpv"
	DetectionDJIFPV    DetectionType = "dji_fpv"
	DetectionRCControl DetectionType = "rc_control"
	DetectionWiFi      DetectionType = "wifi"
	DetectionUnknown   DetectionType = "unknown"
)

// SignalObservation is one RF detection reported by a kit's spectrum sensor.
// The primary identity tuple is (Time, KitID, FreqMHz); re-inserting the
// same tuple overwrites the non-key columns in place.
type SignalObservation struct {
	Time    time.Time `db:"time" json:"time"`
	KitID   string    `db:"kit_id" json:"kit_id"`
	FreqMHz float64   `db:"freq_mhz" json:"freq_mhz"`

	PowerDBm      *float64       `db:"power_dbm" json:"power_dbm,omitempty"`
	BandwidthMHz  *float64       `db:"bandwidth_mhz" json:"bandwidth_mhz,omitempty"`
	Lat           *float64       `db:"lat" json:"lat,omitempty"`
	Lon           *float64       `db:"lon" json:"lon,omitempty"`
	AltM          *float64       `db:"alt_m" json:"alt_m,omitempty"`
	DetectionType *DetectionType `db:"detection_type" json:"detection_type,omitempty"`
}

// HasPosition reports whether the observation carries a usable lat/lon pair.
func (s *SignalObservation) HasPosition() bool {
	return s.Lat != nil && s.Lon != nil
}

package schema

import "time"

// RemoteIDSource enumerates the transport a drone's Remote ID broadcast was
// observed over.
type RemoteIDSource string

const (
	RIDSourceBLE  RemoteIDSource = "BLE"
	RIDSourceWiFi RemoteIDSource = "WiFi"
	RIDSourceDJI  RemoteIDSource = "DJI"
	RIDSourceADSB RemoteIDSource = "ADSB"
)

// TrackType distinguishes Remote-ID drone tracks from ADS-B manned aircraft
// that happen to appear in the same feed.
type TrackType string

const (
	TrackTypeDrone    TrackType = "drone"
	TrackTypeAircraft TrackType = "aircraft"
)

// DroneObservation is one positional sample from one kit about one track.
// The primary identity tuple is (Time, KitID, DroneID); re-inserting the
// same tuple overwrites the non-key columns in place (upsert semantics).
//
// All optional fields are pointers so that "not reported by the sensor"
// round-trips as null rather than as a zero value. A pilot/home coordinate
// pair of exactly (0, 0) is normalized to absent (nil) before it ever
// reaches storage; see internal/collector/normalize.go.
type DroneObservation struct {
	Time    time.Time `db:"time" json:"time"`
	KitID   string    `db:"kit_id" json:"kit_id"`
	DroneID string    `db:"drone_id" json:"drone_id"`

	Lat     *float64 `db:"lat" json:"lat,omitempty"`
	Lon     *float64 `db:"lon" json:"lon,omitempty"`
	AltM    *float64 `db:"alt_m" json:"alt_m,omitempty"`
	SpeedMS *float64 `db:"speed_ms" json:"speed_ms,omitempty"`
	Heading *float64 `db:"heading" json:"heading,omitempty"`

	PilotLat *float64 `db:"pilot_lat" json:"pilot_lat,omitempty"`
	PilotLon *float64 `db:"pilot_lon" json:"pilot_lon,omitempty"`
	HomeLat  *float64 `db:"home_lat" json:"home_lat,omitempty"`
	HomeLon  *float64 `db:"home_lon" json:"home_lon,omitempty"`

	MAC        *string         `db:"mac" json:"mac,omitempty"`
	RSSI       *int            `db:"rssi" json:"rssi,omitempty"`
	FreqMHz    *float64        `db:"freq_mhz" json:"freq_mhz,omitempty"`
	UAType     *string         `db:"ua_type" json:"ua_type,omitempty"`
	OperatorID *string         `db:"operator_id" json:"operator_id,omitempty"`
	CAAID      *string         `db:"caa_id" json:"caa_id,omitempty"`
	RIDMake    *string         `db:"rid_make" json:"rid_make,omitempty"`
	RIDModel   *string         `db:"rid_model" json:"rid_model,omitempty"`
	RIDSource  *RemoteIDSource `db:"rid_source" json:"rid_source,omitempty"`
	TrackType  TrackType       `db:"track_type" json:"track_type"`
}

// HasPosition reports whether the observation carries a usable lat/lon pair.
func (d *DroneObservation) HasPosition() bool {
	return d.Lat != nil && d.Lon != nil
}

// HasPilotPosition reports whether the observation carries a usable
// pilot lat/lon pair (already normalized: (0,0) is never stored as present).
func (d *DroneObservation) HasPilotPosition() bool {
	return d.PilotLat != nil && d.PilotLon != nil
}

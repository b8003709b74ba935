package schema

import "time"

// DroneHourlyBucket is one row of the drones_hourly continuous aggregate:
// per (hour bucket, kit) counts and averages, refreshed up to now-5m.
type DroneHourlyBucket struct {
	Bucket       time.Time `db:"bucket" json:"bucket"`
	KitID        string    `db:"kit_id" json:"kit_id"`
	UniqueDrones int64     `db:"unique_drones" json:"unique_drones"`
	AvgAltitude  *float64  `db:"avg_altitude" json:"avg_altitude,omitempty"`
	AvgSpeed     *float64  `db:"avg_speed" json:"avg_speed,omitempty"`
	Detections   int64     `db:"detections" json:"detections"`
}

// Severity is the common severity scale used by anomaly findings and
// coordinated-activity clusters.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// LocationSample is a single (time, lat, lon) point, used to carry sample
// locations in pattern-query findings without pulling in the full
// observation row.
type LocationSample struct {
	Time time.Time `json:"time"`
	Lat  float64   `json:"lat"`
	Lon  float64   `json:"lon"`
}

// RepeatedDroneFinding is one result of the repeated-drones pattern query:
// a drone_id whose appearances (runs separated by no more than 5 minutes of
// silence) meet or exceed the caller's min_appearances threshold.
type RepeatedDroneFinding struct {
	DroneID         string           `json:"drone_id"`
	FirstSeen       time.Time        `json:"first_seen"`
	LastSeen        time.Time        `json:"last_seen"`
	AppearanceCount int              `json:"appearance_count"`
	SampleLocations []LocationSample `json:"sample_locations"`
}

// CoordinatedCluster is one result of the coordinated-activity pattern
// query: a set of distinct drones whose observations are close in both
// time (adjacent 1-minute buckets) and space (within distance_threshold_m).
type CoordinatedCluster struct {
	ClusterTime time.Time `json:"cluster_time"`
	CentroidLat float64   `json:"centroid_lat"`
	CentroidLon float64   `json:"centroid_lon"`
	DroneIDs    []string  `json:"drone_ids"`
	Severity    Severity  `json:"severity"`
}

// PilotReuseMethod identifies which of the two pilot-reuse correlation
// methods produced a given finding.
type PilotReuseMethod string

const (
	PilotReuseByOperatorID     PilotReuseMethod = "operator_id"
	PilotReuseByPilotProximity PilotReuseMethod = "pilot_proximity"
)

// DroneSeenRange records the first/last-seen window of one drone_id
// participating in a pilot-reuse finding.
type DroneSeenRange struct {
	DroneID   string    `json:"drone_id"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
}

// PilotReuseFinding is one result of the pilot-reuse pattern query: either a
// shared operator_id or a pilot-position cluster spanning ≥2 distinct drones.
type PilotReuseFinding struct {
	Method      PilotReuseMethod `json:"method"`
	OperatorID  *string          `json:"operator_id,omitempty"`
	CentroidLat *float64         `json:"centroid_lat,omitempty"`
	CentroidLon *float64         `json:"centroid_lon,omitempty"`
	Drones      []DroneSeenRange `json:"drones"`
}

// AnomalyKind enumerates the three anomaly rules evaluated over a window.
type AnomalyKind string

const (
	AnomalySpeed               AnomalyKind = "speed"
	AnomalyAltitude            AnomalyKind = "altitude"
	AnomalyRapidAltitudeChange AnomalyKind = "rapid_altitude_change"
)

// AnomalyFinding is one tagged anomaly: a rule violation by a single drone
// at a single instant (or, for rapid altitude change, across a 10s window).
type AnomalyFinding struct {
	Kind      AnomalyKind `json:"kind"`
	Severity  Severity    `json:"severity"`
	DroneID   string      `json:"drone_id"`
	KitID     string      `json:"kit_id"`
	Time      time.Time   `json:"time"`
	Value     float64     `json:"value"`
	Threshold float64     `json:"threshold"`
}

// KitDetection is one kit's observation of a drone within a multi-kit bucket.
type KitDetection struct {
	KitID string    `json:"kit_id"`
	RSSI  *int      `json:"rssi,omitempty"`
	Lat   *float64  `json:"lat,omitempty"`
	Lon   *float64  `json:"lon,omitempty"`
	Time  time.Time `json:"time"`
}

// MultiKitFinding is one (drone_id, 1-minute bucket) observed by two or
// more distinct kits.
type MultiKitFinding struct {
	DroneID               string         `json:"drone_id"`
	Bucket                time.Time      `json:"bucket"`
	Kits                  []KitDetection `json:"kits"`
	TriangulationPossible bool           `json:"triangulation_possible"`
}

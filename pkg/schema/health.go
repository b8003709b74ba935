package schema

import "time"

// KitHealthSample is one /status sample from a kit: its own GPS fix and
// system vitals. Primary identity tuple is (Time, KitID).
type KitHealthSample struct {
	Time  time.Time `db:"time" json:"time"`
	KitID string    `db:"kit_id" json:"kit_id"`

	GPSLat *float64 `db:"gps_lat" json:"gps_lat,omitempty"`
	GPSLon *float64 `db:"gps_lon" json:"gps_lon,omitempty"`
	GPSAlt *float64 `db:"gps_alt" json:"gps_alt,omitempty"`

	CPUPercent    *float64 `db:"cpu_percent" json:"cpu_percent,omitempty"`
	MemoryPercent *float64 `db:"memory_percent" json:"memory_percent,omitempty"`
	DiskPercent   *float64 `db:"disk_percent" json:"disk_percent,omitempty"`
	UptimeHours   *float64 `db:"uptime_hours" json:"uptime_hours,omitempty"`
	TempCPU       *float64 `db:"temp_cpu" json:"temp_cpu,omitempty"`
	TempGPU       *float64 `db:"temp_gpu" json:"temp_gpu,omitempty"`
}

// KitStats are the in-memory, per-kit collector counters surfaced via
// Collector.Stats and the /debug/health endpoint. They are not persisted.
type KitStats struct {
	KitID               string        `json:"kit_id"`
	TotalPolls          uint64        `json:"total_polls"`
	SuccessfulPolls     uint64        `json:"successful_polls"`
	FailedPolls         uint64        `json:"failed_polls"`
	ConsecutiveFailures int           `json:"consecutive_failures"`
	LastError           string        `json:"last_error,omitempty"`
	CurrentBackoff      time.Duration `json:"current_backoff_ns"`
	SuccessRate         float64       `json:"success_rate"`
}

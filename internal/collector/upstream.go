package collector

// Raw upstream payload shapes. Every optional field is decoded as
// interface{} so arbitrary value-type drift (a kit reporting "12" instead
// of 12, or omitting a field outright) never fails the decode; coercion to
// the typed, normalized form happens in normalize.go.

type rawDroneRecord struct {
	Time       interface{} `json:"time"`
	DroneID    interface{} `json:"drone_id"`
	Lat        interface{} `json:"lat"`
	Lon        interface{} `json:"lon"`
	Alt        interface{} `json:"alt"`
	Speed      interface{} `json:"speed"`
	Heading    interface{} `json:"heading"`
	PilotLat   interface{} `json:"pilot_lat"`
	PilotLon   interface{} `json:"pilot_lon"`
	HomeLat    interface{} `json:"home_lat"`
	HomeLon    interface{} `json:"home_lon"`
	MAC        interface{} `json:"mac"`
	RSSI       interface{} `json:"rssi"`
	Freq       interface{} `json:"freq"`
	UAType     interface{} `json:"ua_type"`
	OperatorID interface{} `json:"operator_id"`
	CAAID      interface{} `json:"caa_id"`
	RIDMake    interface{} `json:"rid_make"`
	RIDModel   interface{} `json:"rid_model"`
	RIDSource  interface{} `json:"rid_source"`
}

type rawSignalRecord struct {
	Time          interface{} `json:"time"`
	FreqMHz       interface{} `json:"freq_mhz"`
	PowerDBm      interface{} `json:"power_dbm"`
	BandwidthMHz  interface{} `json:"bandwidth_mhz"`
	Lat           interface{} `json:"lat"`
	Lon           interface{} `json:"lon"`
	Alt           interface{} `json:"alt"`
	DetectionType interface{} `json:"detection_type"`
}

type rawGPS struct {
	Lat interface{} `json:"lat"`
	Lon interface{} `json:"lon"`
	Alt interface{} `json:"alt"`
}

type rawStatusRecord struct {
	Time          interface{} `json:"time"`
	GPS           *rawGPS     `json:"gps"`
	CPUPercent    interface{} `json:"cpu_percent"`
	MemoryPercent interface{} `json:"memory_percent"`
	DiskPercent   interface{} `json:"disk_percent"`
	UptimeHours   interface{} `json:"uptime_hours"`
	TempCPU       interface{} `json:"temp_cpu"`
	TempGPU       interface{} `json:"temp_gpu"`
}

package metrics

import (
	"time"
)

// Snapshot holds the state of every sampler at one point in time.
// All slices are private copies; a Snapshot is never mutated after it is published.
type Snapshot struct {
	Sequence   uint64        `json:"sequence"`
	Timestamp  time.Time     `json:"timestamp"`
	Interval   time.Duration `json:"interval"`
	Uptime     uint64        `json:"uptime"` // Host uptime in seconds
	CPU        CPUState      `json:"cpu"`
	Memory     MemoryState   `json:"memory"`
	Network    NetworkState  `json:"network"`
	Disk       DiskState     `json:"disk"`
	Battery    BatteryState  `json:"battery"`
	Sensors    SensorState   `json:"sensors"`
	Visibility Visibility    `json:"visibility"`
}

// CPUState holds CPU usage percentages derived from tick deltas.
type CPUState struct {
	Usage       float64   `json:"usage"` // user + system + nice
	UserUsage   float64   `json:"user"`
	SystemUsage float64   `json:"system"`
	IdleUsage   float64   `json:"idle"`
	NiceUsage   float64   `json:"nice"`
	History     []float64 `json:"history"`
}

// MemoryState holds physical memory usage in bytes.
type MemoryState struct {
	Total        uint64    `json:"total"`
	Used         uint64    `json:"used"` // active + wired + compressed
	Free         uint64    `json:"free"`
	Active       uint64    `json:"active"`
	Inactive     uint64    `json:"inactive"`
	Wired        uint64    `json:"wired"`
	Compressed   uint64    `json:"compressed"`
	UsagePercent float64   `json:"usage_percent"`
	History      []float64 `json:"history"`
}

// NetworkState holds throughput in bytes per second and cumulative byte totals.
type NetworkState struct {
	DownloadSpeed      float64   `json:"download_speed"`
	UploadSpeed        float64   `json:"upload_speed"`
	TotalDownloadBytes uint64    `json:"total_download_bytes"`
	TotalUploadBytes   uint64    `json:"total_upload_bytes"`
	DownloadHistory    []float64 `json:"download_history"`
	UploadHistory      []float64 `json:"upload_history"`
}

// DiskInfo describes one mounted volume.
type DiskInfo struct {
	Name         string  `json:"name"`
	MountPoint   string  `json:"mount_point"`
	TotalBytes   uint64  `json:"total_bytes"`
	FreeBytes    uint64  `json:"free_bytes"`
	UsedBytes    uint64  `json:"used_bytes"`
	UsagePercent float64 `json:"usage_percent"`
}

// DiskState holds the volume list and block-level throughput.
// ReadSpeed and WriteSpeed stay 0 unless a ThroughputSource is attached.
type DiskState struct {
	Volumes    []DiskInfo `json:"volumes"`
	ReadSpeed  float64    `json:"read_speed"`  // Bytes per second
	WriteSpeed float64    `json:"write_speed"` // Bytes per second
}

// BatteryState holds power-source information.
// Consumers must not render any battery field when IsPresent is false.
type BatteryState struct {
	IsPresent              bool    `json:"is_present"`
	IsCharging             bool    `json:"is_charging"`
	CurrentCapacityPercent int     `json:"current_capacity_percent"`
	MaxCapacity            int     `json:"max_capacity"`
	DesignCapacity         int     `json:"design_capacity"`
	Health                 float64 `json:"health"` // max/design * 100
	CycleCount             int     `json:"cycle_count"`
	TimeRemainingMinutes   int     `json:"time_remaining_minutes"` // -1 while still calculating
	PowerSource            string  `json:"power_source"`
}

// SensorState holds hardware controller readings. A zero value means
// the reading is unavailable, not that the part is cold or stopped.
type SensorState struct {
	Available          bool      `json:"available"`
	CPUTemperatureC    float64   `json:"cpu_temperature_c"`
	GPUTemperatureC    float64   `json:"gpu_temperature_c"`
	BatteryTemperature float64   `json:"battery_temperature_c"`
	SSDTemperature     float64   `json:"ssd_temperature_c"`
	Fans               []FanInfo `json:"fans"`
}

// FanInfo is one fan reading. MinRPM and MaxRPM are 0 when unknown.
type FanInfo struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	RPM    int    `json:"rpm"`
	MinRPM int    `json:"min_rpm"`
	MaxRPM int    `json:"max_rpm"`
}

// Visibility is the per-domain display toggle set. It does not affect sampling.
type Visibility struct {
	CPU     bool `json:"cpu"`
	Memory  bool `json:"memory"`
	Network bool `json:"network"`
	Disk    bool `json:"disk"`
	Battery bool `json:"battery"`
	Sensors bool `json:"sensors"`
}

// AllVisible returns a Visibility with every domain shown.
func AllVisible() Visibility {
	return Visibility{CPU: true, Memory: true, Network: true, Disk: true, Battery: true, Sensors: true}
}

// Power source descriptions.
const (
	PowerSourceAC      = "AC Power"
	PowerSourceBattery = "Battery Power"
	PowerSourceUnknown = "Unknown"
)

package metrics

// CPUTicks are cumulative CPU time counters in clock ticks.
type CPUTicks struct {
	User   uint64
	System uint64
	Idle   uint64
	Nice   uint64
}

// CPUSource reads the aggregate tick counters.
type CPUSource interface {
	Ticks() (CPUTicks, error)
}

// VMStatistics is one virtual-memory snapshot in pages.
type VMStatistics struct {
	PageSize        uint64
	ActivePages     uint64
	InactivePages   uint64
	WiredPages      uint64
	CompressedPages uint64
	FreePages       uint64
}

// MemorySource reads physical memory size and VM page counts.
type MemorySource interface {
	TotalMemory() (uint64, error)
	VMStatistics() (VMStatistics, error)
}

// InterfaceCounters are the cumulative byte counters of one network interface.
type InterfaceCounters struct {
	Name      string
	BytesRecv uint64
	BytesSent uint64
}

// NetworkSource lists counters for interfaces that are up.
type NetworkSource interface {
	Counters() ([]InterfaceCounters, error)
}

// Volume is one mounted filesystem as listed by a VolumeSource.
type Volume struct {
	Name       string
	MountPoint string
	Hidden     bool
}

// VolumeCapacity is the total and available space of a volume in bytes.
type VolumeCapacity struct {
	Total     uint64
	Available uint64
}

// VolumeSource enumerates mounted volumes and reads their capacity.
type VolumeSource interface {
	Volumes() ([]Volume, error)
	Capacity(mountPoint string) (VolumeCapacity, error)
}

// ThroughputSource supplies block-level read/write rates in bytes per second.
type ThroughputSource interface {
	Throughput() (read, write float64, err error)
}

// PowerSourceDescriptor describes one battery as reported by the OS.
// Capacities are in the unit the OS uses (mAh or µWh); only ratios are derived.
type PowerSourceDescriptor struct {
	Name             string
	IsCharging       bool
	CurrentCapacity  int // percent
	MaxCapacity      int
	DesignCapacity   int
	CycleCount       int
	TimeToEmpty      int // minutes, -1 when unknown
	TimeToFull       int // minutes, -1 when unknown
	PowerSourceState string
}

// PowerSource lists the power-source descriptors. An empty list means no battery.
type PowerSource interface {
	PowerSources() ([]PowerSourceDescriptor, error)
}

// Sources bundles everything the samplers read from.
type Sources struct {
	CPU        CPUSource
	Memory     MemorySource
	Network    NetworkSource
	Volumes    VolumeSource
	Throughput ThroughputSource // optional
	Power      PowerSource
	Controller RegisterController
	Uptime     func() (uint64, error) // optional
}

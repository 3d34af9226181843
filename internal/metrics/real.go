package metrics

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
)

// ticksPerSecond converts gopsutil's CPU seconds back into clock ticks (USER_HZ).
const ticksPerSecond = 100

// HostSources returns sources backed by the running host.
func HostSources() Sources {
	return Sources{
		CPU:        HostCPUSource{},
		Memory:     HostMemorySource{PageSize: uint64(os.Getpagesize())},
		Network:    HostNetworkSource{},
		Volumes:    HostVolumeSource{},
		Power:      NewSysfsPowerSource(DefaultPowerSupplyDir),
		Controller: NewHostController(),
		Uptime:     host.Uptime,
	}
}

// HostCPUSource reads aggregate CPU times.
type HostCPUSource struct{}

func (HostCPUSource) Ticks() (CPUTicks, error) {
	times, err := cpu.Times(false)
	if err != nil {
		return CPUTicks{}, fmt.Errorf("reading cpu times: %w", err)
	}
	if len(times) == 0 {
		return CPUTicks{}, fmt.Errorf("reading cpu times: no data")
	}
	t := times[0]
	// iowait is idle time; irq, softirq and steal are time the system spent.
	return CPUTicks{
		User:   toTicks(t.User),
		System: toTicks(t.System + t.Irq + t.Softirq + t.Steal),
		Idle:   toTicks(t.Idle + t.Iowait),
		Nice:   toTicks(t.Nice),
	}, nil
}

func toTicks(seconds float64) uint64 {
	if seconds <= 0 {
		return 0
	}
	return uint64(math.Round(seconds * ticksPerSecond))
}

// HostMemorySource reads virtual memory statistics and reports them in pages.
type HostMemorySource struct {
	PageSize uint64
}

func (s HostMemorySource) TotalMemory() (uint64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, fmt.Errorf("reading memory: %w", err)
	}
	return vm.Total, nil
}

func (s HostMemorySource) VMStatistics() (VMStatistics, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return VMStatistics{}, fmt.Errorf("reading vm statistics: %w", err)
	}
	page := s.PageSize
	if page == 0 {
		page = 4096
	}

	// Wired is only reported on BSD-like kernels; on Linux the closest
	// equivalent is unreclaimable slab plus page tables.
	wired := vm.Wired
	if wired == 0 {
		wired = vm.Sunreclaim + vm.PageTables
	}

	return VMStatistics{
		PageSize:      page,
		ActivePages:   vm.Active / page,
		InactivePages: vm.Inactive / page,
		WiredPages:    wired / page,
		FreePages:     vm.Free / page,
	}, nil
}

// HostNetworkSource reads per-interface counters for interfaces that are up.
type HostNetworkSource struct{}

func (HostNetworkSource) Counters() ([]InterfaceCounters, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("listing interfaces: %w", err)
	}
	up := make(map[string]bool, len(ifaces))
	for _, i := range ifaces {
		for _, f := range i.Flags {
			if f == "up" {
				up[i.Name] = true
				break
			}
		}
	}

	counters, err := net.IOCounters(true)
	if err != nil {
		return nil, fmt.Errorf("reading interface counters: %w", err)
	}
	out := make([]InterfaceCounters, 0, len(counters))
	for _, c := range counters {
		if !up[c.Name] {
			continue
		}
		out = append(out, InterfaceCounters{Name: c.Name, BytesRecv: c.BytesRecv, BytesSent: c.BytesSent})
	}
	return out, nil
}

// hiddenFilesystems are mounted but never shown as volumes.
var hiddenFilesystems = map[string]bool{
	"squashfs": true, "overlay": true, "tmpfs": true, "devtmpfs": true,
	"autofs": true, "nullfs": true, "devfs": true,
}

// HostVolumeSource lists physical mounts.
type HostVolumeSource struct{}

func (HostVolumeSource) Volumes() ([]Volume, error) {
	parts, err := disk.Partitions(false)
	if err != nil {
		return nil, fmt.Errorf("listing partitions: %w", err)
	}
	seen := make(map[string]bool, len(parts))
	out := make([]Volume, 0, len(parts))
	for _, p := range parts {
		if seen[p.Mountpoint] {
			continue
		}
		seen[p.Mountpoint] = true
		out = append(out, Volume{
			Name:       volumeName(p.Device, p.Mountpoint),
			MountPoint: p.Mountpoint,
			Hidden:     hiddenFilesystems[p.Fstype] || isHiddenPath(p.Mountpoint),
		})
	}
	return out, nil
}

func (HostVolumeSource) Capacity(mountPoint string) (VolumeCapacity, error) {
	u, err := disk.Usage(mountPoint)
	if err != nil {
		return VolumeCapacity{}, fmt.Errorf("reading usage of %s: %w", mountPoint, err)
	}
	return VolumeCapacity{Total: u.Total, Available: u.Free}, nil
}

func volumeName(device, mountPoint string) string {
	if mountPoint == "/" {
		if device != "" {
			return filepath.Base(device)
		}
		return "root"
	}
	return filepath.Base(mountPoint)
}

// isHiddenPath reports mount points the OS does not surface to users:
// dot-directories, boot/EFI partitions and system-private volumes.
func isHiddenPath(mountPoint string) bool {
	for _, seg := range strings.Split(mountPoint, "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	for _, prefix := range []string{"/boot", "/snap/", "/System/Volumes/", "/private/var/vm"} {
		if strings.HasPrefix(mountPoint, prefix) {
			return true
		}
	}
	return false
}

// DiskIOThroughput derives block-level read/write rates from disk.IOCounters.
// It is not part of the default sources; attach it with Sources.Throughput.
type DiskIOThroughput struct {
	lastRead  uint64
	lastWrite uint64
	lastTime  time.Time
}

func (d *DiskIOThroughput) Throughput() (float64, float64, error) {
	counters, err := disk.IOCounters()
	if err != nil {
		return 0, 0, fmt.Errorf("reading disk io counters: %w", err)
	}
	var read, write uint64
	for name, c := range counters {
		if strings.HasPrefix(name, "loop") {
			continue
		}
		read += c.ReadBytes
		write += c.WriteBytes
	}

	now := time.Now()
	var readSpeed, writeSpeed float64
	if !d.lastTime.IsZero() {
		duration := now.Sub(d.lastTime).Seconds()
		if duration > 0 {
			if read >= d.lastRead {
				readSpeed = float64(read-d.lastRead) / duration
			}
			if write >= d.lastWrite {
				writeSpeed = float64(write-d.lastWrite) / duration
			}
		}
	}
	d.lastRead, d.lastWrite, d.lastTime = read, write, now
	return readSpeed, writeSpeed, nil
}

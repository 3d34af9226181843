package metrics

import (
	"github.com/labstack/gommon/log"
)

// DiskSampler enumerates visible volumes and their capacity.
type DiskSampler struct {
	src        VolumeSource
	throughput ThroughputSource
	state      DiskState
}

// NewDiskSampler returns a disk sampler. throughput may be nil, in which
// case read and write speeds are reported as 0.
func NewDiskSampler(src VolumeSource, throughput ThroughputSource) *DiskSampler {
	return &DiskSampler{src: src, throughput: throughput}
}

// Update rebuilds the volume list from scratch. Volumes whose capacity
// cannot be read are left out; a failed enumeration keeps the previous list.
func (s *DiskSampler) Update() DiskState {
	volumes, err := s.src.Volumes()
	if err != nil {
		log.Debugf("disk: volume enumeration failed: %v", err)
	} else {
		disks := make([]DiskInfo, 0, len(volumes))
		for _, v := range volumes {
			if v.Hidden {
				continue
			}
			c, err := s.src.Capacity(v.MountPoint)
			if err != nil {
				log.Debugf("disk: skipping %s: %v", v.MountPoint, err)
				continue
			}
			disks = append(disks, NewDiskInfo(v.Name, v.MountPoint, c.Total, c.Available))
		}
		s.state.Volumes = disks
	}

	if s.throughput != nil {
		if r, w, err := s.throughput.Throughput(); err == nil {
			s.state.ReadSpeed, s.state.WriteSpeed = r, w
		}
	}

	return s.State()
}

// State returns a copy of the current state.
func (s *DiskSampler) State() DiskState {
	st := s.state
	st.Volumes = append([]DiskInfo(nil), s.state.Volumes...)
	return st
}

// NewDiskInfo derives used space and usage percentage from total and free bytes.
func NewDiskInfo(name, mountPoint string, total, free uint64) DiskInfo {
	d := DiskInfo{
		Name:       name,
		MountPoint: mountPoint,
		TotalBytes: total,
		FreeBytes:  free,
	}
	if free < total {
		d.UsedBytes = total - free
	}
	if total > 0 {
		d.UsagePercent = float64(d.UsedBytes) / float64(total) * 100
	}
	return d
}

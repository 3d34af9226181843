package metrics

import (
	"errors"
	"testing"
)

type fakeVolumes struct {
	volumes []Volume
	caps    map[string]VolumeCapacity
	listErr error
}

func (f *fakeVolumes) Volumes() ([]Volume, error) { return f.volumes, f.listErr }

func (f *fakeVolumes) Capacity(mp string) (VolumeCapacity, error) {
	c, ok := f.caps[mp]
	if !ok {
		return VolumeCapacity{}, errors.New("permission denied")
	}
	return c, nil
}

type fakeThroughput struct{ read, write float64 }

func (f fakeThroughput) Throughput() (float64, float64, error) { return f.read, f.write, nil }

func TestNewDiskInfo(t *testing.T) {
	d := NewDiskInfo("Data", "/data", 1_000_000_000, 250_000_000)
	if d.UsedBytes != 750_000_000 {
		t.Errorf("expected used 750000000, got %d", d.UsedBytes)
	}
	if d.UsagePercent != 75.0 {
		t.Errorf("expected 75%%, got %f", d.UsagePercent)
	}

	empty := NewDiskInfo("Empty", "/empty", 0, 0)
	if empty.UsagePercent != 0 || empty.UsedBytes != 0 {
		t.Errorf("zero-size volume: %+v", empty)
	}
}

func TestDiskUpdate(t *testing.T) {
	src := &fakeVolumes{
		volumes: []Volume{
			{Name: "root", MountPoint: "/"},
			{Name: "efi", MountPoint: "/boot/efi", Hidden: true},
			{Name: "locked", MountPoint: "/locked"},
			{Name: "data", MountPoint: "/data"},
		},
		caps: map[string]VolumeCapacity{
			"/":         {Total: 100, Available: 40},
			"/boot/efi": {Total: 10, Available: 5},
			"/data":     {Total: 200, Available: 200},
		},
	}
	s := NewDiskSampler(src, nil)
	st := s.Update()

	if len(st.Volumes) != 2 {
		t.Fatalf("expected 2 volumes, got %d: %+v", len(st.Volumes), st.Volumes)
	}
	if st.Volumes[0].MountPoint != "/" || st.Volumes[1].MountPoint != "/data" {
		t.Errorf("unexpected volumes: %+v", st.Volumes)
	}
	if st.ReadSpeed != 0 || st.WriteSpeed != 0 {
		t.Errorf("throughput without a source should be 0, got %f/%f", st.ReadSpeed, st.WriteSpeed)
	}

	// The set is rebuilt every cycle.
	src.volumes = src.volumes[:1]
	st = s.Update()
	if len(st.Volumes) != 1 {
		t.Errorf("expected volume list to shrink to 1, got %d", len(st.Volumes))
	}

	// Enumeration failure keeps the previous list.
	src.listErr = errors.New("busy")
	st = s.Update()
	if len(st.Volumes) != 1 {
		t.Errorf("failed enumeration changed the list: %+v", st.Volumes)
	}
}

func TestDiskThroughputSource(t *testing.T) {
	s := NewDiskSampler(&fakeVolumes{}, fakeThroughput{read: 10, write: 20})
	st := s.Update()
	if st.ReadSpeed != 10 || st.WriteSpeed != 20 {
		t.Errorf("expected 10/20, got %f/%f", st.ReadSpeed, st.WriteSpeed)
	}
}

func TestIsHiddenPath(t *testing.T) {
	tests := []struct {
		path   string
		hidden bool
	}{
		{"/", false},
		{"/home", false},
		{"/Volumes/Backup", false},
		{"/boot/efi", true},
		{"/home/me/.cache/mnt", true},
		{"/System/Volumes/Data", true},
		{"/snap/core/123", true},
	}
	for _, tt := range tests {
		if got := isHiddenPath(tt.path); got != tt.hidden {
			t.Errorf("isHiddenPath(%q): expected %v, got %v", tt.path, tt.hidden, got)
		}
	}
}

package metrics

import (
	"testing"
	"time"
)

func TestMockSources(t *testing.T) {
	src := MockSources()

	cpu := NewCPUSampler(src.CPU)
	mem := NewMemorySampler(src.Memory)
	net := NewNetworkSampler(src.Network, nil)
	disk := NewDiskSampler(src.Volumes, nil)
	batt := NewBatterySampler(src.Power)
	sens := NewSensorSampler(src.Controller, nil)
	defer sens.Close()

	cpu.Update()
	net.Update()
	time.Sleep(10 * time.Millisecond)

	c := cpu.Update()
	if c.Usage <= 0 || c.Usage > 100 {
		t.Errorf("Invalid CPU usage: %f", c.Usage)
	}

	m := mem.Update()
	if m.UsagePercent <= 0 || m.UsagePercent > 100 {
		t.Errorf("Invalid memory usage: %f", m.UsagePercent)
	}

	n := net.Update()
	if n.DownloadSpeed <= 0 {
		t.Errorf("expected positive download speed, got %f", n.DownloadSpeed)
	}

	d := disk.Update()
	if len(d.Volumes) != 2 {
		t.Errorf("expected 2 visible volumes, got %d", len(d.Volumes))
	}

	b := batt.Update()
	if !b.IsPresent || b.Health <= 0 {
		t.Errorf("battery should be present with health, got %+v", b)
	}

	s := sens.Update()
	if !s.Available || s.CPUTemperatureC <= 0 || len(s.Fans) != 2 {
		t.Errorf("sensors should be available in mock mode, got %+v", s)
	}

	if up, err := src.Uptime(); err != nil || up == 0 {
		t.Errorf("uptime: %d, %v", up, err)
	}
}

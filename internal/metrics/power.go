package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// DefaultPowerSupplyDir is where Linux exposes power-source descriptors.
const DefaultPowerSupplyDir = "/sys/class/power_supply"

// SysfsPowerSource reads battery descriptors from the power_supply class.
// On hosts without that directory it reports no sources.
type SysfsPowerSource struct {
	dir string
}

func NewSysfsPowerSource(dir string) *SysfsPowerSource {
	return &SysfsPowerSource{dir: dir}
}

func (s *SysfsPowerSource) PowerSources() ([]PowerSourceDescriptor, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing power supplies: %w", err)
	}

	var names []string
	onAC := false
	for _, e := range entries {
		base := filepath.Join(s.dir, e.Name())
		switch readString(filepath.Join(base, "type")) {
		case "Battery":
			// Peripheral batteries (mice, keyboards) report scope=Device.
			if readString(filepath.Join(base, "scope")) == "Device" {
				continue
			}
			names = append(names, e.Name())
		case "Mains", "USB":
			if readInt(filepath.Join(base, "online"), 0) == 1 {
				onAC = true
			}
		}
	}
	sort.Strings(names)

	out := make([]PowerSourceDescriptor, 0, len(names))
	for _, name := range names {
		out = append(out, s.describe(name, onAC))
	}
	return out, nil
}

func (s *SysfsPowerSource) describe(name string, onAC bool) PowerSourceDescriptor {
	base := filepath.Join(s.dir, name)
	get := func(f string) int { return readInt(filepath.Join(base, f), -1) }

	status := readString(filepath.Join(base, "status"))
	d := PowerSourceDescriptor{
		Name:            name,
		IsCharging:      status == "Charging",
		CurrentCapacity: get("capacity"),
		CycleCount:      get("cycle_count"),
		TimeToEmpty:     -1,
		TimeToFull:      -1,
	}

	// Batteries report either energy (µWh, µW) or charge (µAh, µA) files.
	now, full, design, draw := get("energy_now"), get("energy_full"), get("energy_full_design"), get("power_now")
	if full < 0 {
		now, full, design, draw = get("charge_now"), get("charge_full"), get("charge_full_design"), get("current_now")
	}
	d.MaxCapacity = max(full, 0)
	d.DesignCapacity = max(design, 0)
	if d.CurrentCapacity < 0 && now >= 0 && full > 0 {
		d.CurrentCapacity = now * 100 / full
	}
	d.CurrentCapacity = max(d.CurrentCapacity, 0)

	if draw > 0 && now >= 0 {
		switch status {
		case "Discharging":
			d.TimeToEmpty = now * 60 / draw
		case "Charging":
			if full > now {
				d.TimeToFull = (full - now) * 60 / draw
			}
		}
	}

	switch {
	case onAC || status == "Charging" || status == "Full":
		d.PowerSourceState = PowerSourceAC
	case status == "Discharging":
		d.PowerSourceState = PowerSourceBattery
	default:
		d.PowerSourceState = PowerSourceUnknown
	}
	return d
}

func readString(path string) string {
	b, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func readInt(path string, fallback int) int {
	v, err := strconv.Atoi(readString(path))
	if err != nil {
		return fallback
	}
	return v
}

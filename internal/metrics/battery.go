package metrics

import (
	"github.com/labstack/gommon/log"
)

// BatterySampler reads power-source descriptors. When several batteries
// are reported the last one wins; values are not aggregated.
type BatterySampler struct {
	src   PowerSource
	state BatteryState
}

func NewBatterySampler(src PowerSource) *BatterySampler {
	return &BatterySampler{
		src:   src,
		state: BatteryState{TimeRemainingMinutes: -1, PowerSource: PowerSourceUnknown},
	}
}

// Update queries the power-source list. With no sources, IsPresent becomes
// false and every other field keeps its last value.
func (s *BatterySampler) Update() BatteryState {
	sources, err := s.src.PowerSources()
	if err != nil {
		log.Debugf("battery: power source read failed: %v", err)
		return s.state
	}
	if len(sources) == 0 {
		s.state.IsPresent = false
		return s.state
	}

	for _, src := range sources {
		s.apply(src)
	}
	return s.state
}

// State returns the current state.
func (s *BatterySampler) State() BatteryState {
	return s.state
}

func (s *BatterySampler) apply(d PowerSourceDescriptor) {
	s.state.IsPresent = true
	s.state.IsCharging = d.IsCharging
	s.state.CurrentCapacityPercent = d.CurrentCapacity

	if d.MaxCapacity > 0 {
		s.state.MaxCapacity = d.MaxCapacity
	}
	if d.DesignCapacity > 0 {
		s.state.DesignCapacity = d.DesignCapacity
	}
	if d.DesignCapacity > 0 && d.MaxCapacity > 0 {
		s.state.Health = float64(d.MaxCapacity) / float64(d.DesignCapacity) * 100
	}
	if d.CycleCount > 0 {
		s.state.CycleCount = d.CycleCount
	}

	switch {
	case d.IsCharging && d.TimeToFull > 0:
		s.state.TimeRemainingMinutes = d.TimeToFull
	case !d.IsCharging && d.TimeToEmpty > 0:
		s.state.TimeRemainingMinutes = d.TimeToEmpty
	case d.TimeToEmpty > 0:
		s.state.TimeRemainingMinutes = d.TimeToEmpty
	case d.TimeToFull > 0:
		s.state.TimeRemainingMinutes = d.TimeToFull
	default:
		s.state.TimeRemainingMinutes = -1
	}

	switch d.PowerSourceState {
	case PowerSourceAC, PowerSourceBattery:
		s.state.PowerSource = d.PowerSourceState
	}
}

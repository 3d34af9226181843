package metrics

import (
	"github.com/google/hoststat/internal/history"
	"github.com/labstack/gommon/log"
)

// CPUSampler converts cumulative tick counters into usage percentages.
type CPUSampler struct {
	src     CPUSource
	prev    CPUTicks
	seeded  bool
	state   CPUState
	history *history.Buffer
}

func NewCPUSampler(src CPUSource) *CPUSampler {
	return &CPUSampler{
		src:     src,
		history: history.New(history.DefaultLength),
	}
}

// Update reads the counters once and returns the resulting state.
// The first reading, and the first reading after any bucket went
// backwards, only seeds the baseline.
func (s *CPUSampler) Update() CPUState {
	cur, err := s.src.Ticks()
	if err != nil {
		log.Debugf("cpu: tick read failed: %v", err)
		return s.State()
	}

	if !s.seeded {
		s.prev, s.seeded = cur, true
		return s.State()
	}

	prev := s.prev
	s.prev = cur
	if cur.User < prev.User || cur.System < prev.System || cur.Idle < prev.Idle || cur.Nice < prev.Nice {
		log.Debugf("cpu: tick counters went backwards, re-baselining")
		return s.State()
	}

	userDiff := float64(cur.User - prev.User)
	systemDiff := float64(cur.System - prev.System)
	idleDiff := float64(cur.Idle - prev.Idle)
	niceDiff := float64(cur.Nice - prev.Nice)

	total := userDiff + systemDiff + idleDiff + niceDiff
	if total <= 0 {
		return s.State()
	}

	s.state.UserUsage = userDiff / total * 100
	s.state.SystemUsage = systemDiff / total * 100
	s.state.IdleUsage = idleDiff / total * 100
	s.state.NiceUsage = niceDiff / total * 100
	s.state.Usage = (userDiff + systemDiff + niceDiff) / total * 100
	s.history.Push(s.state.Usage)

	return s.State()
}

// State returns a copy of the current state.
func (s *CPUSampler) State() CPUState {
	st := s.state
	st.History = s.history.Values()
	return st
}

package metrics

import (
	"github.com/google/hoststat/internal/history"
	"github.com/labstack/gommon/log"
)

// MemorySampler converts VM page counts into byte counts and a usage percentage.
type MemorySampler struct {
	src     MemorySource
	state   MemoryState
	history *history.Buffer
}

func NewMemorySampler(src MemorySource) *MemorySampler {
	return &MemorySampler{
		src:     src,
		history: history.New(history.DefaultLength),
	}
}

// Update reads total memory and one VM snapshot. On any read failure the
// previous state is returned unchanged and history does not advance.
func (s *MemorySampler) Update() MemoryState {
	total, err := s.src.TotalMemory()
	if err != nil || total == 0 {
		log.Debugf("memory: total read failed: %v", err)
		return s.State()
	}
	vm, err := s.src.VMStatistics()
	if err != nil {
		log.Debugf("memory: vm statistics read failed: %v", err)
		return s.State()
	}

	page := vm.PageSize
	active := vm.ActivePages * page
	wired := vm.WiredPages * page
	compressed := vm.CompressedPages * page
	used := active + wired + compressed

	s.state.Total = total
	s.state.Active = active
	s.state.Inactive = vm.InactivePages * page
	s.state.Wired = wired
	s.state.Compressed = compressed
	s.state.Free = vm.FreePages * page
	s.state.Used = used
	s.state.UsagePercent = float64(used) / float64(total) * 100
	s.history.Push(s.state.UsagePercent)

	return s.State()
}

// State returns a copy of the current state.
func (s *MemorySampler) State() MemoryState {
	st := s.state
	st.History = s.history.Values()
	return st
}

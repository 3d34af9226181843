package metrics

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/hoststat/internal/history"
)

var errRead = errors.New("read failed")

type fakeCPU struct {
	readings []CPUTicks
	errAt    map[int]bool
	calls    int
}

func (f *fakeCPU) Ticks() (CPUTicks, error) {
	i := f.calls
	f.calls++
	if f.errAt[i] {
		return CPUTicks{}, errRead
	}
	return f.readings[i], nil
}

type fakeMemory struct {
	total uint64
	vm    VMStatistics
	err   error
}

func (f *fakeMemory) TotalMemory() (uint64, error) { return f.total, nil }
func (f *fakeMemory) VMStatistics() (VMStatistics, error) { return f.vm, f.err }

type fakeNetwork struct {
	counters []InterfaceCounters
	err      error
}

func (f *fakeNetwork) Counters() ([]InterfaceCounters, error) { return f.counters, f.err }

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newNetworkSampler(src NetworkSource, c *fakeClock) *NetworkSampler {
	s := NewNetworkSampler(src, nil)
	s.now = c.Now
	s.lastUpdate = c.Now()
	return s
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCPUFirstCallSeedsOnly(t *testing.T) {
	src := &fakeCPU{readings: []CPUTicks{{User: 100, System: 50, Idle: 800, Nice: 10}}}
	s := NewCPUSampler(src)

	st := s.Update()
	if st.Usage != 0 || st.UserUsage != 0 || st.IdleUsage != 0 {
		t.Errorf("first call should report zeros, got %+v", st)
	}
	for _, v := range st.History {
		if v != 0 {
			t.Fatalf("first call appended to history: %v", st.History)
		}
	}
}

func TestCPUPercentages(t *testing.T) {
	src := &fakeCPU{readings: []CPUTicks{
		{User: 100, System: 50, Idle: 800, Nice: 10},
		{User: 130, System: 60, Idle: 855, Nice: 15}, // diffs 30,10,55,5 => total 100
	}}
	s := NewCPUSampler(src)
	s.Update()
	st := s.Update()

	if !almostEqual(st.UserUsage, 30) || !almostEqual(st.SystemUsage, 10) ||
		!almostEqual(st.IdleUsage, 55) || !almostEqual(st.NiceUsage, 5) {
		t.Errorf("unexpected percentages: %+v", st)
	}
	if !almostEqual(st.Usage, st.UserUsage+st.SystemUsage+st.NiceUsage) {
		t.Errorf("usage %f != user+system+nice", st.Usage)
	}
	if sum := st.UserUsage + st.SystemUsage + st.IdleUsage; sum > 100.0001 {
		t.Errorf("user+system+idle = %f exceeds 100", sum)
	}
	if len(st.History) != history.DefaultLength || st.History[len(st.History)-1] != st.Usage {
		t.Errorf("history not advanced with usage: last=%f", st.History[len(st.History)-1])
	}
}

func TestCPUCounterResetRebaselines(t *testing.T) {
	src := &fakeCPU{readings: []CPUTicks{
		{User: 1000, System: 500, Idle: 8000, Nice: 100},
		{User: 1050, System: 520, Idle: 8030, Nice: 100}, // diffs 50,20,30,0
		{User: 10, System: 5, Idle: 80, Nice: 0},          // reset
		{User: 60, System: 25, Idle: 100, Nice: 0},         // diffs 50,20,20,0 => 90
	}}
	s := NewCPUSampler(src)
	s.Update()
	before := s.Update()

	after := s.Update()
	if after.Usage != before.Usage {
		t.Errorf("reset cycle changed usage: %f -> %f", before.Usage, after.Usage)
	}
	if after.Usage < 0 || after.UserUsage < 0 {
		t.Errorf("negative rate after reset: %+v", after)
	}
	if after.History[len(after.History)-1] != before.History[len(before.History)-1] {
		t.Errorf("reset cycle appended to history")
	}

	next := s.Update()
	if !almostEqual(next.Usage, 70.0/90*100) {
		t.Errorf("expected %f after re-baseline, got %f", 70.0/90*100, next.Usage)
	}
}

func TestCPUZeroDeltaIsNoop(t *testing.T) {
	r := CPUTicks{User: 10, System: 10, Idle: 10, Nice: 10}
	src := &fakeCPU{readings: []CPUTicks{r, {User: 20, System: 10, Idle: 10, Nice: 10}, {User: 20, System: 10, Idle: 10, Nice: 10}}}
	s := NewCPUSampler(src)
	s.Update()
	prev := s.Update()
	st := s.Update()
	if st.Usage != prev.Usage {
		t.Errorf("zero delta changed usage: %f -> %f", prev.Usage, st.Usage)
	}
	if math.IsNaN(st.Usage) {
		t.Error("usage is NaN")
	}
}

func TestCPUReadFailureKeepsState(t *testing.T) {
	src := &fakeCPU{
		readings: []CPUTicks{{User: 0}, {User: 50, Idle: 50}, {}},
		errAt:    map[int]bool{2: true},
	}
	s := NewCPUSampler(src)
	s.Update()
	prev := s.Update()
	st := s.Update()
	if st.Usage != prev.Usage || len(st.History) != history.DefaultLength {
		t.Errorf("failed read changed state: %+v", st)
	}
}

func TestMemoryConversion(t *testing.T) {
	src := &fakeMemory{
		total: 16 << 30,
		vm: VMStatistics{
			PageSize:        4096,
			ActivePages:     262144, // 1 GiB
			InactivePages:   131072,
			WiredPages:      262144,
			CompressedPages: 524288, // 2 GiB
			FreePages:       1024,
		},
	}
	s := NewMemorySampler(src)
	st := s.Update()

	if st.Active != 1<<30 || st.Wired != 1<<30 || st.Compressed != 2<<30 {
		t.Errorf("unexpected page conversion: %+v", st)
	}
	if st.Used != st.Active+st.Wired+st.Compressed {
		t.Errorf("used %d != active+wired+compressed", st.Used)
	}
	if !almostEqual(st.UsagePercent, 25) {
		t.Errorf("expected 25%% usage, got %f", st.UsagePercent)
	}
	if st.History[len(st.History)-1] != st.UsagePercent {
		t.Error("history not advanced")
	}
}

func TestMemoryFailureIsStale(t *testing.T) {
	src := &fakeMemory{total: 8 << 30, vm: VMStatistics{PageSize: 4096, ActivePages: 1000}}
	s := NewMemorySampler(src)
	prev := s.Update()

	src.err = errRead
	src.vm.ActivePages = 999999
	st := s.Update()
	if st.Used != prev.Used || st.UsagePercent != prev.UsagePercent {
		t.Errorf("failed read changed fields: %+v", st)
	}
	if st.History[len(st.History)-2] == prev.UsagePercent && st.History[len(st.History)-1] == prev.UsagePercent {
		t.Error("failed read appended to history")
	}
}

func TestNetworkSpeed(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	src := &fakeNetwork{counters: []InterfaceCounters{{Name: "en0", BytesRecv: 1000, BytesSent: 500}}}
	s := newNetworkSampler(src, clock)

	st := s.Update()
	if st.DownloadSpeed != 0 || st.UploadSpeed != 0 {
		t.Errorf("baseline cycle should report 0, got %+v", st)
	}

	clock.Advance(time.Second)
	src.counters[0].BytesRecv = 2024
	src.counters[0].BytesSent = 1012
	st = s.Update()
	if st.DownloadSpeed != 1024.0 {
		t.Errorf("expected download 1024.0, got %f", st.DownloadSpeed)
	}
	if st.UploadSpeed != 512.0 {
		t.Errorf("expected upload 512.0, got %f", st.UploadSpeed)
	}
	if st.TotalDownloadBytes != 2024 || st.TotalUploadBytes != 1012 {
		t.Errorf("unexpected totals: %+v", st)
	}
}

func TestNetworkCounterReset(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	src := &fakeNetwork{counters: []InterfaceCounters{{Name: "en0", BytesRecv: 5000}}}
	s := newNetworkSampler(src, clock)
	s.Update()

	clock.Advance(time.Second)
	src.counters[0].BytesRecv = 100
	st := s.Update()
	if st.DownloadSpeed != 0 {
		t.Errorf("expected 0 after reset, got %f", st.DownloadSpeed)
	}
	if st.TotalDownloadBytes != 100 {
		t.Errorf("expected new baseline 100, got %d", st.TotalDownloadBytes)
	}

	clock.Advance(time.Second)
	src.counters[0].BytesRecv = 300
	st = s.Update()
	if st.DownloadSpeed != 200 {
		t.Errorf("expected 200 from new baseline, got %f", st.DownloadSpeed)
	}
}

func TestNetworkHistoryAlwaysAdvances(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	src := &fakeNetwork{counters: []InterfaceCounters{{Name: "en0", BytesRecv: 1000}}}
	s := newNetworkSampler(src, clock)

	s.Update() // baseline: pushes 0
	clock.Advance(time.Second)
	src.counters[0].BytesRecv = 3000
	st := s.Update()
	h := st.DownloadHistory
	if h[len(h)-1] != 2000 || h[len(h)-2] != 0 {
		t.Errorf("unexpected history tail: %v", h[len(h)-3:])
	}

	// Zero interval still pushes a zero.
	st = s.Update()
	h = st.DownloadHistory
	if h[len(h)-1] != 0 || h[len(h)-2] != 2000 {
		t.Errorf("zero-interval cycle did not push 0: %v", h[len(h)-3:])
	}
	if len(h) != history.DefaultLength || len(st.UploadHistory) != history.DefaultLength {
		t.Errorf("history lengths changed: %d/%d", len(h), len(st.UploadHistory))
	}
}

func TestNetworkInterfaceFilter(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	src := &fakeNetwork{counters: []InterfaceCounters{
		{Name: "en0", BytesRecv: 100},
		{Name: "lo0", BytesRecv: 10},
		{Name: "utun2", BytesRecv: 1 << 40},
		{Name: "docker0", BytesRecv: 1 << 30},
	}}
	s := newNetworkSampler(src, clock)
	st := s.Update()
	if st.TotalDownloadBytes != 110 {
		t.Errorf("expected only en0+lo0 summed (110), got %d", st.TotalDownloadBytes)
	}
}

func TestHistoryLengthInvariant(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	cpuSrc := &fakeCPU{errAt: map[int]bool{}}
	for i := 0; i < 150; i++ {
		cpuSrc.readings = append(cpuSrc.readings, CPUTicks{User: uint64(i * 10), Idle: uint64(i * 30)})
		if i%7 == 0 {
			cpuSrc.errAt[i] = true
		}
	}
	memSrc := &fakeMemory{total: 1 << 30, vm: VMStatistics{PageSize: 4096, ActivePages: 100}}
	netSrc := &fakeNetwork{counters: []InterfaceCounters{{Name: "en0"}}}

	cpu := NewCPUSampler(cpuSrc)
	mem := NewMemorySampler(memSrc)
	net := newNetworkSampler(netSrc, clock)

	for i := 0; i < 150; i++ {
		if i%5 == 0 {
			memSrc.err = errRead
		} else {
			memSrc.err = nil
		}
		clock.Advance(time.Second)
		netSrc.counters[0].BytesRecv += uint64(i * 100)

		c, m, n := cpu.Update(), mem.Update(), net.Update()
		for name, l := range map[string]int{
			"cpu": len(c.History), "memory": len(m.History),
			"download": len(n.DownloadHistory), "upload": len(n.UploadHistory),
		} {
			if l != history.DefaultLength {
				t.Fatalf("cycle %d: %s history length %d", i, name, l)
			}
		}
	}
}

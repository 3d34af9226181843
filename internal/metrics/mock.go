package metrics

import (
	"math/rand"
	"sync"
	"time"
)

// MockSources returns sources that simulate a busy laptop with two fans,
// a battery and a couple of volumes.
func MockSources() Sources {
	m := &mockHost{rng: rand.New(rand.NewSource(time.Now().UnixNano())), start: time.Now()}
	return Sources{
		CPU:        m,
		Memory:     m,
		Network:    m,
		Volumes:    m,
		Power:      m,
		Controller: &MockController{Values: m.registers},
		Uptime: func() (uint64, error) {
			return uint64(time.Since(m.start).Seconds()) + 86400, nil
		},
	}
}

type mockHost struct {
	mu    sync.Mutex
	rng   *rand.Rand
	start time.Time

	ticks CPUTicks
	recv  uint64
	sent  uint64
	level float64
}

func (m *mockHost) Ticks() (CPUTicks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Simulate 8 cores at 100 ticks/s for one second.
	busy := uint64(200 + m.rng.Intn(100))
	m.ticks.User += busy / 2
	m.ticks.System += busy / 3
	m.ticks.Nice += busy / 10
	m.ticks.Idle += 800 - busy/2 - busy/3 - busy/10
	return m.ticks, nil
}

func (m *mockHost) TotalMemory() (uint64, error) {
	return 32 << 30, nil
}

func (m *mockHost) VMStatistics() (VMStatistics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	const page = 16384
	return VMStatistics{
		PageSize:        page,
		ActivePages:     uint64(8<<30+m.rng.Intn(1<<30)) / page,
		InactivePages:   (6 << 30) / page,
		WiredPages:      (3 << 30) / page,
		CompressedPages: uint64(1<<30+m.rng.Intn(1<<29)) / page,
		FreePages:       (10 << 30) / page,
	}, nil
}

func (m *mockHost) Counters() ([]InterfaceCounters, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.recv += uint64(50_000 + m.rng.Intn(2_000_000))
	m.sent += uint64(10_000 + m.rng.Intn(300_000))
	return []InterfaceCounters{
		{Name: "en0", BytesRecv: m.recv, BytesSent: m.sent},
		{Name: "lo0", BytesRecv: 4096, BytesSent: 4096},
		{Name: "utun3", BytesRecv: 1 << 40, BytesSent: 1 << 40},
	}, nil
}

func (m *mockHost) Volumes() ([]Volume, error) {
	return []Volume{
		{Name: "Macintosh HD", MountPoint: "/"},
		{Name: "Data", MountPoint: "/System/Volumes/Data", Hidden: true},
		{Name: "Backup", MountPoint: "/Volumes/Backup"},
	}, nil
}

func (m *mockHost) Capacity(mountPoint string) (VolumeCapacity, error) {
	switch mountPoint {
	case "/":
		return VolumeCapacity{Total: 994_662_584_320, Available: 412_000_000_000}, nil
	default:
		return VolumeCapacity{Total: 2_000_000_000_000, Available: 1_500_000_000_000}, nil
	}
}

func (m *mockHost) PowerSources() ([]PowerSourceDescriptor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.level == 0 {
		m.level = 80
	}
	m.level -= 0.05
	if m.level < 5 {
		m.level = 100
	}
	return []PowerSourceDescriptor{{
		Name:             "InternalBattery-0",
		CurrentCapacity:  int(m.level),
		MaxCapacity:      4382,
		DesignCapacity:   4790,
		CycleCount:       212,
		TimeToEmpty:      int(m.level * 5),
		TimeToFull:       -1,
		PowerSourceState: PowerSourceBattery,
	}}, nil
}

func (m *mockHost) registers() map[string]Payload {
	m.mu.Lock()
	defer m.mu.Unlock()

	return map[string]Payload{
		KeyCPUProximity: {KeyCPUProximity, TypeSP78, EncodeSP78(40 + m.rng.Float64()*30)},
		KeyGPUProximity: {KeyGPUProximity, TypeSP78, EncodeSP78(35 + m.rng.Float64()*30)},
		KeyBatteryTemp:  {KeyBatteryTemp, TypeSP78, EncodeSP78(31)},
		KeyFanCount:     {KeyFanCount, TypeUI8, []byte{2}},
		FanSpeedKey(0):  {FanSpeedKey(0), TypeFPE2, EncodeFPE2(float64(1800 + m.rng.Intn(1200)))},
		FanSpeedKey(1):  {FanSpeedKey(1), TypeFPE2, EncodeFPE2(float64(1800 + m.rng.Intn(1200)))},
		FanMinKey(0):    {FanMinKey(0), TypeFPE2, EncodeFPE2(1800)},
		FanMaxKey(0):    {FanMaxKey(0), TypeFPE2, EncodeFPE2(6000)},
		FanMinKey(1):    {FanMinKey(1), TypeFPE2, EncodeFPE2(1800)},
		FanMaxKey(1):    {FanMaxKey(1), TypeFPE2, EncodeFPE2(6000)},
	}
}

// MockController is an in-memory RegisterController. Values is consulted
// on every read; OpenErr makes Open fail.
type MockController struct {
	Values  func() map[string]Payload
	OpenErr error

	mu     sync.Mutex
	open   bool
	Opens  int
	Closes int
}

func (c *MockController) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Opens++
	if c.OpenErr != nil {
		return c.OpenErr
	}
	c.open = true
	return nil
}

func (c *MockController) ReadKey(key string) (Payload, error) {
	c.mu.Lock()
	open := c.open
	c.mu.Unlock()

	if !open {
		return Payload{}, ErrControllerClosed
	}
	if c.Values == nil {
		return Payload{}, ErrKeyNotFound
	}
	p, ok := c.Values()[key]
	if !ok {
		return Payload{}, ErrKeyNotFound
	}
	return p, nil
}

func (c *MockController) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Closes++
	c.open = false
	return nil
}

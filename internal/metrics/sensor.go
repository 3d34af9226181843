package metrics

import (
	"errors"
	"fmt"
	"sync"

	"github.com/labstack/gommon/log"
)

// ConnState is the sensor connection state.
type ConnState int

const (
	ConnClosed ConnState = iota
	ConnOpen
	ConnFailed
)

func (s ConnState) String() string {
	switch s {
	case ConnOpen:
		return "open"
	case ConnFailed:
		return "failed"
	default:
		return "closed"
	}
}

// Physical ranges outside which a reading is treated as absent.
const (
	minTemperatureC = 0
	maxTemperatureC = 150
	maxFanRPM       = 20000
)

var (
	cpuTemperatureKeys = []string{KeyCPUProximity, KeyCPUDie, KeyCPUHeatsink}
	gpuTemperatureKeys = []string{KeyGPUProximity, KeyGPUDie}
)

// SensorSampler reads temperatures and fan speeds from a RegisterController.
// The connection is opened lazily on the first Update. A failed open is
// permanent for the session, and once Close has run every Update reports
// unavailable without touching the controller again.
type SensorSampler struct {
	mu       sync.Mutex
	ctrl     RegisterController
	decode   Decoder
	conn     ConnState
	released bool
	opens    int
	state    SensorState
}

// NewSensorSampler returns a sampler over ctrl. A nil decoder selects DecodePayload.
func NewSensorSampler(ctrl RegisterController, decode Decoder) *SensorSampler {
	if decode == nil {
		decode = DecodePayload
	}
	return &SensorSampler{ctrl: ctrl, decode: decode}
}

// Update performs one read transaction per key.
func (s *SensorSampler) Update() SensorState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released || s.ctrl == nil {
		return SensorState{}
	}
	if s.conn == ConnFailed {
		return SensorState{}
	}
	if s.conn != ConnOpen {
		s.opens++
		if err := s.ctrl.Open(); err != nil {
			s.conn = ConnFailed
			log.Warnf("sensors: controller unavailable, disabling for this session: %v", err)
			return SensorState{}
		}
		s.conn = ConnOpen
		log.Debugf("sensors: controller opened")
	}

	st := SensorState{
		CPUTemperatureC:    s.firstTemperature(cpuTemperatureKeys),
		GPUTemperatureC:    s.firstTemperature(gpuTemperatureKeys),
		BatteryTemperature: s.firstTemperature([]string{KeyBatteryTemp}),
		SSDTemperature:     s.firstTemperature([]string{KeySSDTemp}),
		Fans:               s.fans(),
	}
	st.Available = st.CPUTemperatureC > 0 || st.GPUTemperatureC > 0 || len(st.Fans) > 0
	s.state = st
	return s.State()
}

// State returns a copy of the last readings.
func (s *SensorSampler) State() SensorState {
	st := s.state
	st.Fans = append([]FanInfo(nil), s.state.Fans...)
	return st
}

// ConnState reports the connection state.
func (s *SensorSampler) ConnState() ConnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

// OpenAttempts reports how many times Open was called on the controller.
func (s *SensorSampler) OpenAttempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opens
}

// Close releases the controller. It is safe to call more than once and
// concurrently with Update.
func (s *SensorSampler) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return nil
	}
	s.released = true
	s.state = SensorState{}
	if s.conn != ConnOpen {
		return nil
	}
	s.conn = ConnClosed
	if err := s.ctrl.Close(); err != nil {
		return fmt.Errorf("closing sensor controller: %w", err)
	}
	return nil
}

// firstTemperature walks the fallback chain and returns the first reading
// inside the physical range, or 0.
func (s *SensorSampler) firstTemperature(keys []string) float64 {
	for _, k := range keys {
		v, ok := s.read(k)
		if ok && v > minTemperatureC && v < maxTemperatureC {
			return v
		}
	}
	return 0
}

func (s *SensorSampler) fans() []FanInfo {
	count := MaxFans
	if n, ok := s.read(KeyFanCount); ok && n >= 0 && n <= MaxFans {
		count = int(n)
	}

	var fans []FanInfo
	for i := 0; i < count; i++ {
		rpm, ok := s.read(FanSpeedKey(i))
		if !ok || rpm <= 0 || rpm > maxFanRPM {
			continue
		}
		f := FanInfo{ID: i, Name: fmt.Sprintf("Fan %d", i+1), RPM: int(rpm)}
		if v, ok := s.read(FanMinKey(i)); ok && v > 0 && v <= maxFanRPM {
			f.MinRPM = int(v)
		}
		if v, ok := s.read(FanMaxKey(i)); ok && v > 0 && v <= maxFanRPM {
			f.MaxRPM = int(v)
		}
		fans = append(fans, f)
	}
	return fans
}

func (s *SensorSampler) read(key string) (float64, bool) {
	p, err := s.ctrl.ReadKey(key)
	if err != nil {
		if errors.Is(err, ErrControllerClosed) {
			s.conn = ConnClosed
		}
		return 0, false
	}
	v, err := s.decode(p)
	if err != nil {
		log.Debugf("sensors: %v", err)
		return 0, false
	}
	return v, true
}

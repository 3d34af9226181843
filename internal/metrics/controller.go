package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/labstack/gommon/log"
	"github.com/mindprince/gonvml"
	"github.com/shirou/gopsutil/v3/host"
)

// DefaultHwmonDir is where Linux exposes fan tachometers.
const DefaultHwmonDir = "/sys/class/hwmon"

// Sensor key prefixes, in preference order, for each temperature key.
var hostTemperatureSensors = map[string][]string{
	KeyCPUProximity: {"coretemp_package_id_0", "k10temp_tctl", "zenpower_tdie", "cpu_thermal"},
	KeyCPUDie:       {"coretemp_core_0", "k10temp_tdie", "k10temp_tccd1"},
	KeyCPUHeatsink:  {"acpitz"},
	KeyGPUProximity: {"amdgpu_edge", "nouveau"},
	KeyGPUDie:       {"amdgpu_junction"},
	KeyBatteryTemp:  {"battery", "bat0"},
	KeySSDTemp:      {"nvme_composite", "drivetemp"},
}

// HostController exposes the host's temperature sensors, NVIDIA GPU and
// hwmon fans through the keyed register interface, encoding every reading
// the same way a hardware management controller would.
type HostController struct {
	hwmonDir string

	mu      sync.Mutex
	open    bool
	hasNVML bool
	fans    []hwmonFan
}

type hwmonFan struct {
	input, min, max string
}

func NewHostController() *HostController {
	return &HostController{hwmonDir: DefaultHwmonDir}
}

// Open probes the available backends and fails with ErrControllerUnavailable
// when none of them answers.
func (c *HostController) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.open {
		return nil
	}

	if err := gonvml.Initialize(); err != nil {
		log.Debugf("sensors: NVML initialization failed (GPU temperature unavailable): %v", err)
		c.hasNVML = false
	} else {
		c.hasNVML = true
	}

	c.fans = scanFans(c.hwmonDir)
	temps, _ := host.SensorsTemperatures()

	if !c.hasNVML && len(c.fans) == 0 && len(temps) == 0 {
		return ErrControllerUnavailable
	}
	c.open = true
	return nil
}

func (c *HostController) ReadKey(key string) (Payload, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return Payload{}, ErrControllerClosed
	}

	switch {
	case key == KeyFanCount:
		return Payload{Key: key, DataType: TypeUI8, Data: []byte{byte(len(c.fans))}}, nil
	case strings.HasPrefix(key, "F") && len(key) == 4:
		return c.readFan(key)
	case key == KeyGPUProximity && c.hasNVML:
		if v, ok := nvmlTemperature(); ok {
			return Payload{Key: key, DataType: TypeSP78, Data: EncodeSP78(v)}, nil
		}
	}

	prefixes, ok := hostTemperatureSensors[key]
	if !ok {
		return Payload{}, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	temps, err := host.SensorsTemperatures()
	if len(temps) == 0 {
		if err != nil {
			return Payload{}, fmt.Errorf("reading temperatures: %w", err)
		}
		return Payload{}, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	for _, p := range prefixes {
		for _, t := range temps {
			if strings.HasPrefix(strings.ToLower(t.SensorKey), p) {
				return Payload{Key: key, DataType: TypeSP78, Data: EncodeSP78(t.Temperature)}, nil
			}
		}
	}
	return Payload{}, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
}

func (c *HostController) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return nil
	}
	c.open = false
	if c.hasNVML {
		c.hasNVML = false
		if err := gonvml.Shutdown(); err != nil {
			return fmt.Errorf("shutting down NVML: %w", err)
		}
	}
	return nil
}

func (c *HostController) readFan(key string) (Payload, error) {
	var idx int
	var kind string
	if _, err := fmt.Sscanf(key, "F%d%2s", &idx, &kind); err != nil || idx < 0 || idx >= len(c.fans) {
		return Payload{}, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}

	var path string
	switch kind {
	case "Ac":
		path = c.fans[idx].input
	case "Mn":
		path = c.fans[idx].min
	case "Mx":
		path = c.fans[idx].max
	}
	rpm := readInt(path, -1)
	if rpm < 0 {
		return Payload{}, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return Payload{Key: key, DataType: TypeFPE2, Data: EncodeFPE2(float64(rpm))}, nil
}

func nvmlTemperature() (float64, bool) {
	count, err := gonvml.DeviceCount()
	if err != nil || count == 0 {
		return 0, false
	}
	dev, err := gonvml.DeviceHandleByIndex(0)
	if err != nil {
		return 0, false
	}
	temp, err := dev.Temperature()
	if err != nil {
		return 0, false
	}
	return float64(temp), true
}

// scanFans lists fan tachometers in hwmon order.
func scanFans(dir string) []hwmonFan {
	inputs, _ := filepath.Glob(filepath.Join(dir, "hwmon*", "fan*_input"))
	sort.Strings(inputs)
	fans := make([]hwmonFan, 0, len(inputs))
	for _, in := range inputs {
		if _, err := os.Stat(in); err != nil {
			continue
		}
		prefix := strings.TrimSuffix(in, "_input")
		fans = append(fans, hwmonFan{input: in, min: prefix + "_min", max: prefix + "_max"})
	}
	return fans
}

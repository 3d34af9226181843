package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/hoststat/internal/metrics"
	"github.com/labstack/gommon/log"
)

// Module names accepted in EnabledModules.
const (
	ModuleCPU     = "cpu"
	ModuleMemory  = "memory"
	ModuleNetwork = "net"
	ModuleDisk    = "disk"
	ModuleBattery = "battery"
	ModuleSensors = "sensors"
)

// Modules lists every module in display order.
var Modules = []string{ModuleCPU, ModuleMemory, ModuleNetwork, ModuleDisk, ModuleBattery, ModuleSensors}

// ProfileConfiguration defines the user-configurable settings for hoststat.
type ProfileConfiguration struct {
	Theme                    string             `json:"theme"`
	ColumnWidths             map[string]float64 `json:"column_widths"`
	RefreshInterval          int                `json:"refresh_interval"` // In milliseconds
	ShowTooltips             bool               `json:"show_tooltips"`
	EnabledModules           []string           `json:"enabled_modules"`
	NetworkInterfacePrefixes []string           `json:"network_interface_prefixes"`
	LogLevel                 string             `json:"log_level"`
}

// DefaultConfig returns the hardcoded default configuration.
func DefaultConfig() *ProfileConfiguration {
	return &ProfileConfiguration{
		Theme: "lich-king",
		ColumnWidths: map[string]float64{
			"system":  0.40,
			"network": 0.30,
			"power":   0.30,
		},
		RefreshInterval:          1000,
		ShowTooltips:             true,
		EnabledModules:           slices.Clone(Modules),
		NetworkInterfacePrefixes: slices.Clone(metrics.DefaultInterfacePrefixes),
		LogLevel:                 "info",
	}
}

// Validate checks the configuration and fills in defaults for zero values.
func (c *ProfileConfiguration) Validate() error {
	def := DefaultConfig()

	if c.Theme == "" {
		c.Theme = def.Theme
	}
	if c.RefreshInterval == 0 {
		c.RefreshInterval = def.RefreshInterval
	}
	if c.RefreshInterval < 0 {
		return fmt.Errorf("refresh_interval must be positive, got %d", c.RefreshInterval)
	}
	if c.EnabledModules == nil {
		c.EnabledModules = def.EnabledModules
	}
	for _, m := range c.EnabledModules {
		if !slices.Contains(Modules, m) {
			return fmt.Errorf("unknown module %q", m)
		}
	}
	if len(c.NetworkInterfacePrefixes) == 0 {
		c.NetworkInterfacePrefixes = def.NetworkInterfacePrefixes
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}

	if c.ColumnWidths == nil {
		c.ColumnWidths = def.ColumnWidths
	}
	var total float64
	for name, w := range c.ColumnWidths {
		if w < 0 {
			return fmt.Errorf("column width %q is negative", name)
		}
		total += w
	}
	if total <= 0 {
		return errors.New("column widths must not all be zero")
	}
	return nil
}

// Interval returns the refresh interval as a duration.
func (c *ProfileConfiguration) Interval() time.Duration {
	return time.Duration(c.RefreshInterval) * time.Millisecond
}

// SetInterval stores d, truncated to whole milliseconds.
func (c *ProfileConfiguration) SetInterval(d time.Duration) {
	c.RefreshInterval = int(d / time.Millisecond)
}

// Visibility maps EnabledModules onto the engine's display toggles.
func (c *ProfileConfiguration) Visibility() metrics.Visibility {
	on := func(m string) bool { return slices.Contains(c.EnabledModules, m) }
	return metrics.Visibility{
		CPU:     on(ModuleCPU),
		Memory:  on(ModuleMemory),
		Network: on(ModuleNetwork),
		Disk:    on(ModuleDisk),
		Battery: on(ModuleBattery),
		Sensors: on(ModuleSensors),
	}
}

// SetVisibility rewrites EnabledModules from v, keeping display order.
func (c *ProfileConfiguration) SetVisibility(v metrics.Visibility) {
	flags := []bool{v.CPU, v.Memory, v.Network, v.Disk, v.Battery, v.Sensors}
	c.EnabledModules = make([]string, 0, len(Modules))
	for i, m := range Modules {
		if flags[i] {
			c.EnabledModules = append(c.EnabledModules, m)
		}
	}
}

// ParseLogLevel maps a level name onto a gommon level.
func ParseLogLevel(s string) (log.Lvl, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DEBUG, nil
	case "info", "":
		return log.INFO, nil
	case "warn", "warning":
		return log.WARN, nil
	case "error":
		return log.ERROR, nil
	case "off":
		return log.OFF, nil
	}
	return log.INFO, fmt.Errorf("unknown log level %q", s)
}

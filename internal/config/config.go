// internal/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Environment variables consulted by ApplyEnv.
const (
	EnvInterval = "HOSTSTAT_INTERVAL"
	EnvLogLevel = "HOSTSTAT_LOG_LEVEL"
)

// DefaultFileName is the profile looked up by LoadDefaultConfig.
const DefaultFileName = "profiles.json"

// LoadConfig loads and validates configuration from the specified JSON file.
// A missing file yields the default configuration. On a read or parse
// error the defaults are returned alongside the error.
func LoadConfig(path string) (*ProfileConfiguration, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultConfig(), fmt.Errorf("reading %s: %w", path, err)
	}

	var config ProfileConfiguration
	if err := json.Unmarshal(data, &config); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return DefaultConfig(), fmt.Errorf("validating %s: %w", path, err)
	}

	return &config, nil
}

// LoadDefaultConfig loads profiles.json from the working directory, then
// from the executable's directory. It also returns the path it used, or
// the working-directory path when no file exists yet.
func LoadDefaultConfig() (*ProfileConfiguration, string, error) {
	if _, err := os.Stat(DefaultFileName); err == nil {
		cfg, err := LoadConfig(DefaultFileName)
		return cfg, DefaultFileName, err
	}

	if exePath, err := os.Executable(); err == nil {
		configPath := filepath.Join(filepath.Dir(exePath), DefaultFileName)
		if _, err := os.Stat(configPath); err == nil {
			cfg, err := LoadConfig(configPath)
			return cfg, configPath, err
		}
	}

	return DefaultConfig(), DefaultFileName, nil
}

// SaveConfig writes configuration to the specified JSON file.
func SaveConfig(config *ProfileConfiguration, path string) error {
	if err := config.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overrides fields from the environment. HOSTSTAT_INTERVAL takes
// a Go duration ("750ms") or bare seconds ("2").
func (c *ProfileConfiguration) ApplyEnv(getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := getenv(EnvInterval); v != "" {
		d, err := parseInterval(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvInterval, err)
		}
		c.SetInterval(d)
	}
	if v := getenv(EnvLogLevel); v != "" {
		if _, err := ParseLogLevel(v); err != nil {
			return fmt.Errorf("%s: %w", EnvLogLevel, err)
		}
		c.LogLevel = v
	}
	return nil
}

func parseInterval(v string) (time.Duration, error) {
	d, err := time.ParseDuration(v)
	if err != nil {
		secs, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil {
			return 0, fmt.Errorf("invalid interval %q", v)
		}
		d = time.Duration(secs * float64(time.Second))
	}
	if d < time.Millisecond {
		return 0, fmt.Errorf("interval %q must be at least 1ms", v)
	}
	return d, nil
}

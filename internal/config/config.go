// Package config loads the daemon configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	ListenAddr string       `yaml:"listen_addr"`
	LogLevel   string       `yaml:"log_level"`
	BLE        BLEConfig    `yaml:"ble"`
	Bridge     BridgeConfig `yaml:"bridge"`
}

// BLEConfig holds transport timing settings.
type BLEConfig struct {
	// ScanWindowSeconds is how long a discovery scan collects results.
	ScanWindowSeconds int `yaml:"scan_window_seconds"`
	// NotifyWaitSeconds is how long a volume query waits for the
	// device to push a status notification.
	NotifyWaitSeconds int `yaml:"notify_wait_seconds"`
}

// BridgeConfig holds dispatcher settings.
type BridgeConfig struct {
	QueueSize int `yaml:"queue_size"`
}

// Default returns a Config with the values the XY-AP100H is known to
// work with.
func Default() *Config {
	return &Config{
		ListenAddr: ":8000",
		LogLevel:   "info",
		BLE: BLEConfig{
			ScanWindowSeconds: 5,
			NotifyWaitSeconds: 2,
		},
		Bridge: BridgeConfig{
			QueueSize: 16,
		},
	}
}

// Load reads and parses a YAML config file. Missing fields are filled
// with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr must not be empty")
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn, or error, got %q", c.LogLevel)
	}

	if c.BLE.ScanWindowSeconds <= 0 {
		return fmt.Errorf("ble.scan_window_seconds must be > 0")
	}
	if c.BLE.NotifyWaitSeconds <= 0 {
		return fmt.Errorf("ble.notify_wait_seconds must be > 0")
	}
	if c.Bridge.QueueSize <= 0 {
		return fmt.Errorf("bridge.queue_size must be > 0")
	}
	return nil
}

// ScanWindow returns the discovery window as a duration.
func (c *Config) ScanWindow() time.Duration {
	return time.Duration(c.BLE.ScanWindowSeconds) * time.Second
}

// NotifyWait returns the notification wait as a duration.
func (c *Config) NotifyWait() time.Duration {
	return time.Duration(c.BLE.NotifyWaitSeconds) * time.Second
}

// Package config holds the launch configuration for the ElectronBot
// host driver.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// USBConfig selects the device and claim target.
type USBConfig struct {
	VendorID          uint16 `yaml:"vid"`
	ProductID         uint16 `yaml:"pid"`
	Interface         int    `yaml:"interface"`
	EndpointOut       int    `yaml:"ep_out"`
	TimeoutMS         int    `yaml:"timeout_ms"`
	InterRoundDelayUS int    `yaml:"inter_round_delay_us"`
}

// Timeout returns the per-transfer bound.
func (c USBConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// InterRoundDelay returns the spacing between rounds.
func (c USBConfig) InterRoundDelay() time.Duration {
	return time.Duration(c.InterRoundDelayUS) * time.Microsecond
}

// SerialConfig selects the CDC fallback transport.
type SerialConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    string `yaml:"port"` // "/dev/ttyACM0", "COM5"
	Baud    int    `yaml:"baud"`
}

// DisplayConfig selects the frame producer.
type DisplayConfig struct {
	Mode  string `yaml:"mode"`  // "eyes", "stripes", "gradient", "solid", "image"
	Image string `yaml:"image"` // path when mode = "image"
	Color string `yaml:"color"` // "#RRGGBB" when mode = "solid"
}

// ServoConfig holds the launch joint state.
type ServoConfig struct {
	Enabled bool      `yaml:"enabled"`
	Angles  []float32 `yaml:"angles"` // degrees, wire order; missing entries stay 0
}

// StreamConfig bounds the send loop.
type StreamConfig struct {
	FPS     int    `yaml:"fps"`     // target frame rate; 0 = send a single frame
	Frames  int    `yaml:"frames"`  // stop after N frames; 0 = until interrupted
	Retries uint64 `yaml:"retries"` // per-frame retry budget on transfer failure
}

// Config is the full launch configuration.
type Config struct {
	USB     USBConfig     `yaml:"usb"`
	Serial  SerialConfig  `yaml:"serial"`
	Display DisplayConfig `yaml:"display"`
	Servos  ServoConfig   `yaml:"servos"`
	Stream  StreamConfig  `yaml:"stream"`
}

// Defaults returns the stock ElectronBot configuration.
func Defaults() *Config {
	return &Config{
		USB: USBConfig{
			VendorID:          0x1001,
			ProductID:         0x8023,
			Interface:         0,
			EndpointOut:       0x01,
			TimeoutMS:         1000,
			InterRoundDelayUS: 1000,
		},
		Serial: SerialConfig{
			Enabled: false,
			Port:    "/dev/ttyACM0",
			Baud:    115200,
		},
		Display: DisplayConfig{Mode: "eyes"},
		Stream:  StreamConfig{FPS: 30, Retries: 3},
	}
}

// Load reads the YAML file at path over the defaults. A missing file is
// not an error; the defaults apply.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Package config loads the monitor's YAML configuration. Every tunable of the
// pipeline lives here with a working default, so a missing file or empty
// section still yields a runnable monitor.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Root mirrors config/monitor.yaml.
type Root struct {
	Source   string         `yaml:"source"` // hardware | synthetic
	Serial   SerialConfig   `yaml:"serial"`
	Sampling SamplingConfig `yaml:"sampling"`
	Windows  WindowsConfig  `yaml:"windows"`
	Breath   BreathConfig   `yaml:"breath"`
	Settings SettingsConfig `yaml:"settings"`
	Storage  StorageConfig  `yaml:"storage"`
	Log      LogConfig      `yaml:"log"`
}

type SerialConfig struct {
	Port       string        `yaml:"port"`
	BaudRate   int           `yaml:"baud_rate"`
	DataBits   int           `yaml:"data_bits"`
	StopBits   int           `yaml:"stop_bits"`
	Parity     string        `yaml:"parity"`
	Timeout    time.Duration `yaml:"timeout"`
	BusAddress byte          `yaml:"bus_address"`
	// RequireInit aborts startup when the flow sensor does not echo its init
	// frame. Off by default so a bench without the heater board still runs.
	RequireInit bool `yaml:"require_init"`
}

type SamplingConfig struct {
	TickInterval  time.Duration `yaml:"tick_interval"`
	EmitEvery     int           `yaml:"emit_every"`
	DisplayBuffer int           `yaml:"display_buffer"`
	Seed          int64         `yaml:"seed"` // synthetic source only; 0 means time-based
}

type WindowsConfig struct {
	Ppeak int `yaml:"ppeak"`
	PEEP  int `yaml:"peep"`
	Vte   int `yaml:"vte"`
}

type BreathConfig struct {
	MinDurationTicks int `yaml:"min_duration_ticks"`
}

type SettingsConfig struct {
	ThresholdsFile string `yaml:"thresholds_file"`
}

type StorageConfig struct {
	Enabled  bool   `yaml:"enabled"`
	DBPath   string `yaml:"db_path"`
	MaxQueue int    `yaml:"max_queue_size"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json | console
}

// Load reads the YAML file, applies defaults and validates.
func Load(path string) (Root, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Root{}, err
	}
	var cfg Root
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Root{}, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return Root{}, err
	}
	return cfg, nil
}

// Default returns the default configuration with a synthetic source.
func Default() Root {
	var cfg Root
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills every unset field with its default.
func (c *Root) ApplyDefaults() {
	if c.Source == "" {
		c.Source = "synthetic"
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = 115200
	}
	if c.Serial.DataBits == 0 {
		c.Serial.DataBits = 8
	}
	if c.Serial.StopBits == 0 {
		c.Serial.StopBits = 1
	}
	if c.Serial.Parity == "" {
		c.Serial.Parity = "N"
	}
	if c.Serial.Timeout <= 0 {
		c.Serial.Timeout = time.Second
	}
	if c.Serial.BusAddress == 0 {
		c.Serial.BusAddress = 0x01
	}
	if c.Sampling.TickInterval <= 0 {
		c.Sampling.TickInterval = 50 * time.Millisecond
	}
	if c.Sampling.EmitEvery <= 0 {
		c.Sampling.EmitEvery = 5
	}
	if c.Sampling.DisplayBuffer <= 0 {
		c.Sampling.DisplayBuffer = 100
	}
	if c.Windows.Ppeak <= 0 {
		c.Windows.Ppeak = 20
	}
	if c.Windows.PEEP <= 0 {
		c.Windows.PEEP = 5
	}
	if c.Windows.Vte <= 0 {
		c.Windows.Vte = 5
	}
	if c.Breath.MinDurationTicks <= 0 {
		c.Breath.MinDurationTicks = 20
	}
	if c.Storage.MaxQueue <= 0 {
		c.Storage.MaxQueue = 1000
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Root) Validate() error {
	switch c.Source {
	case "hardware", "synthetic":
	default:
		return fmt.Errorf("source must be hardware or synthetic, got %q", c.Source)
	}
	if c.Source == "hardware" && c.Serial.Port == "" {
		return fmt.Errorf("serial.port is required for the hardware source")
	}
	if c.Storage.Enabled && c.Storage.DBPath == "" {
		return fmt.Errorf("storage.db_path is required when storage is enabled")
	}
	return nil
}

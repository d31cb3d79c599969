// Package config loads station configuration from an optional YAML file
// with MCC_* environment overrides.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/mcc-station/mcc-go/pkg/catalog"
	"github.com/mcc-station/mcc-go/pkg/ident"
)

const logPrefix = "config:Load"

// EnvPrefix is the prefix of all environment overrides, e.g. MCC_LOG_LEVEL.
const EnvPrefix = "MCC"

// Config is the station configuration.
type Config struct {
	Log     LogConfig     `yaml:"log" envconfig:"LOG"`
	Events  EventsConfig  `yaml:"events" envconfig:"EVENTS"`
	NATS    NATSConfig    `yaml:"nats" envconfig:"NATS"`
	MQTT    MQTTConfig    `yaml:"mqtt" envconfig:"MQTT"`
	Tracker TrackerConfig `yaml:"tracker" envconfig:"TRACKER"`

	// Protocols seed the protocol catalog. File only.
	Protocols []ProtocolConfig `yaml:"protocols" ignored:"true"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL"`
	Format string `yaml:"format" envconfig:"FORMAT"`
	Output string `yaml:"output" envconfig:"OUTPUT"`
}

// EventsConfig configures the binary event log.
type EventsConfig struct {
	// Path of the event log; empty disables it.
	Path string `yaml:"path" envconfig:"PATH"`
}

// NATSConfig configures the NATS relay.
type NATSConfig struct {
	Enabled bool   `yaml:"enabled" envconfig:"ENABLED"`
	URL     string `yaml:"url" envconfig:"URL"`
	Name    string `yaml:"name" envconfig:"NAME"`
	Prefix  string `yaml:"prefix" envconfig:"PREFIX"`
}

// MQTTConfig configures the MQTT relay.
type MQTTConfig struct {
	Enabled         bool   `yaml:"enabled" envconfig:"ENABLED"`
	Broker          string `yaml:"broker" envconfig:"BROKER"`
	ClientID        string `yaml:"client_id" envconfig:"CLIENT_ID"`
	Username        string `yaml:"username" envconfig:"USERNAME"`
	Password        string `yaml:"password" envconfig:"PASSWORD"`
	QoS             uint8  `yaml:"qos" envconfig:"QOS"`
	Prefix          string `yaml:"prefix" envconfig:"PREFIX"`
	RetainTelemetry bool   `yaml:"retain_telemetry" envconfig:"RETAIN_TELEMETRY"`
}

// TrackerConfig configures the command tracker.
type TrackerConfig struct {
	// Timeout fails commands without an outcome; zero disables it.
	Timeout time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
}

// ProtocolConfig describes one catalog protocol and its firmware builds.
type ProtocolConfig struct {
	ID          string           `yaml:"id"`
	Name        string           `yaml:"name"`
	Shareable   bool             `yaml:"shareable"`
	Logging     bool             `yaml:"logging"`
	Timeout     time.Duration    `yaml:"timeout"`
	ParamInfo   string           `yaml:"param_info"`
	MaxDeviceID int32            `yaml:"max_device_id"`
	Firmware    string           `yaml:"firmware"`
	Firmwares   []FirmwareConfig `yaml:"firmwares"`
}

// FirmwareConfig describes a firmware build.
type FirmwareConfig struct {
	ID      string `yaml:"id"`
	Info    string `yaml:"info"`
	Version string `yaml:"version"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		NATS: NATSConfig{
			URL:    "nats://127.0.0.1:4222",
			Name:   "mcc-station",
			Prefix: "mcc",
		},
		MQTT: MQTTConfig{
			Broker:   "tcp://127.0.0.1:1883",
			ClientID: "mcc-station",
			QoS:      1,
			Prefix:   "mcc",
		},
		Tracker: TrackerConfig{
			Timeout: 30 * time.Second,
		},
	}
}

// Load reads path (skipped when empty), applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%s - reading config file: %w", logPrefix, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%s - parsing config file: %w", logPrefix, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("%s - environment: %w", logPrefix, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s - validating config: %w", logPrefix, err)
	}
	return cfg, nil
}

// Validate checks value ranges and required fields of enabled relays.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	if c.Tracker.Timeout < 0 {
		return fmt.Errorf("tracker.timeout must not be negative")
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		return fmt.Errorf("nats.url is required when nats is enabled")
	}
	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		return fmt.Errorf("mqtt.broker is required when mqtt is enabled")
	}
	if c.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt.qos must be 0, 1 or 2, got %d", c.MQTT.QoS)
	}
	for i, p := range c.Protocols {
		if _, err := ident.ParseProtocol(p.ID); err != nil {
			return fmt.Errorf("protocols[%d].id: %w", i, err)
		}
		for j, f := range p.Firmwares {
			if _, err := ident.ParseFirmware(f.ID); err != nil {
				return fmt.Errorf("protocols[%d].firmwares[%d].id: %w", i, j, err)
			}
		}
	}
	return nil
}

// Catalog builds a protocol catalog from the configured protocols.
func (c *Config) Catalog() (*catalog.Catalog, error) {
	cat := catalog.New()
	for _, p := range c.Protocols {
		pid, err := ident.ParseProtocol(p.ID)
		if err != nil {
			return nil, err
		}
		err = cat.RegisterProtocol(catalog.ProtocolDescription{
			ID:          pid,
			Name:        p.Name,
			Shareable:   p.Shareable,
			Logging:     p.Logging,
			Timeout:     p.Timeout,
			ParamInfo:   p.ParamInfo,
			MaxDeviceID: ident.DeviceID(p.MaxDeviceID),
			Firmware:    p.Firmware,
		})
		if err != nil {
			return nil, err
		}
		for _, f := range p.Firmwares {
			fid, err := ident.ParseFirmware(f.ID)
			if err != nil {
				return nil, err
			}
			err = cat.RegisterFirmware(catalog.FirmwareDescription{
				ID:       fid,
				Protocol: pid,
				Info:     f.Info,
				Version:  f.Version,
			})
			if err != nil {
				return nil, err
			}
		}
	}
	return cat, nil
}

// Package config holds the per-switch configuration and the logger
// factory shared by the commands.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mcuadros/go-defaults"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Default schedules applied by New.
const (
	DefaultPollInterval   = 10 * time.Second
	DefaultConnectTimeout = 30 * time.Second
)

// Duration is a time.Duration that unmarshals from YAML strings such as
// "10s" or "1m30s".
type Duration time.Duration

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// String implements fmt.Stringer.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Config describes one Switchmate switch.
type Config struct {
	// Address is the peripheral's hardware identifier. Required.
	Address string `yaml:"address"`

	// Name is the display name used in command output.
	Name string `yaml:"name" default:"Switchmate"`

	// FlipOnOff inverts the logical on/off mapping for switches wired
	// backwards.
	FlipOnOff bool `yaml:"flip_on_off"`

	// PollInterval is the refresh schedule used by watch mode.
	PollInterval Duration `yaml:"poll_interval"`

	// ConnectTimeout bounds the dial phase of every connect.
	ConnectTimeout Duration `yaml:"connect_timeout"`

	// LogLevel is any level name logrus understands.
	LogLevel string `yaml:"log_level" default:"error"`
}

// New returns a Config with defaults applied and no address set.
func New() *Config {
	cfg := &Config{
		PollInterval:   Duration(DefaultPollInterval),
		ConnectTimeout: Duration(DefaultConnectTimeout),
	}
	defaults.SetDefaults(cfg)
	return cfg
}

// Load reads a YAML config file. Keys absent from the file keep their
// defaults. The loaded config is validated before being returned.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := New()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the config for values no session could work with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Address) == "" {
		return fmt.Errorf("device address is required")
	}
	if c.PollInterval.Std() <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	if c.ConnectTimeout.Std() <= 0 {
		return fmt.Errorf("connect timeout must be positive, got %s", c.ConnectTimeout)
	}
	return nil
}

// NewLogger creates a logger configured from the config's log level.
func (c *Config) NewLogger() (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	return logger, nil
}

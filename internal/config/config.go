// Package config holds the session-wide settings of an emulated database and
// loads them from YAML.
//
// Partial configs are completed explicitly: Default builds the full set of
// defaults and Merge overlays only the fields a later config sets.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/forest-fire/firemock-sub000/internal/delay"
)

// Config is the session configuration. Pointer fields distinguish "not set"
// from the zero value so configs can be layered.
type Config struct {
	// Delay is the simulated network latency for reads and reference writes.
	// Default: 5ms fixed.
	Delay *delay.Config `yaml:"delay,omitempty"`

	// SendEvents gates delivery to every listener. Default: true.
	SendEvents *bool `yaml:"send_events,omitempty"`

	// StampPushIDs adds an "id" field equal to the key to pushed objects.
	// Default: false.
	StampPushIDs *bool `yaml:"stamp_push_ids,omitempty"`

	// LogLevel is one of debug, info, warn, error. Default: info.
	LogLevel string `yaml:"log_level,omitempty"`
}

// Default returns a fully populated configuration.
func Default() Config {
	d := delay.Default()
	send := true
	stamp := false
	return Config{
		Delay:        &d,
		SendEvents:   &send,
		StampPushIDs: &stamp,
		LogLevel:     "info",
	}
}

// Merge returns c with every field set in over replacing c's.
func (c Config) Merge(over Config) Config {
	out := c
	if over.Delay != nil {
		d := *over.Delay
		out.Delay = &d
	}
	if over.SendEvents != nil {
		v := *over.SendEvents
		out.SendEvents = &v
	}
	if over.StampPushIDs != nil {
		v := *over.StampPushIDs
		out.StampPushIDs = &v
	}
	if over.LogLevel != "" {
		out.LogLevel = over.LogLevel
	}
	return out
}

// Complete fills unset fields from Default.
func (c Config) Complete() Config {
	return Default().Merge(c)
}

// Validate checks field values.
func (c Config) Validate() error {
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level. Empty means info.
func (c Config) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid log_level %q: must be one of debug, info, warn, error", c.LogLevel)
}

// Parse decodes YAML and completes it with defaults.
func Parse(data []byte) (Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	c = c.Complete()
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return c, nil
}

// Load reads and parses a YAML config file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Package config provides configuration loading and management for SearchLift.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete SearchLift configuration
type Config struct {
	Log     LogConfig     `yaml:"log"`
	Schemas SchemasConfig `yaml:"schemas"`
	Events  EventsConfig  `yaml:"events"`
}

// LogConfig configures logging
type LogConfig struct {
	// Level is the minimum log level (debug, info, warn, error)
	Level string `yaml:"level"`
}

// SchemasConfig configures metadata schema loading
type SchemasConfig struct {
	// Dir is the directory holding schema definition files (empty = none)
	Dir string `yaml:"dir"`
	// Watch enables hot reloading when schema files change
	Watch bool `yaml:"watch"`
	// Debounce is the reload debounce interval
	Debounce time.Duration `yaml:"debounce"`
}

// EventsConfig configures registry event publishing
type EventsConfig struct {
	// Enabled turns NATS event publishing on
	Enabled bool `yaml:"enabled"`
	// URL is the NATS server URL
	URL string `yaml:"url"`
	// SubjectPrefix is the subject prefix for registry events
	SubjectPrefix string `yaml:"subject_prefix"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level: "info",
		},
		Schemas: SchemasConfig{
			Dir:      "",
			Watch:    false,
			Debounce: 500 * time.Millisecond,
		},
		Events: EventsConfig{
			Enabled:       false,
			URL:           "nats://localhost:4222",
			SubjectPrefix: "registry.event",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	if c.Schemas.Watch && c.Schemas.Dir == "" {
		return fmt.Errorf("schemas.watch requires schemas.dir")
	}
	if c.Schemas.Debounce < 0 {
		return fmt.Errorf("schemas.debounce must not be negative")
	}
	if c.Events.Enabled && c.Events.URL == "" {
		return fmt.Errorf("events.url is required when events are enabled")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Log
	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}

	// Schemas
	if other.Schemas.Dir != "" {
		c.Schemas.Dir = other.Schemas.Dir
	}
	if other.Schemas.Watch {
		c.Schemas.Watch = true
	}
	if other.Schemas.Debounce != 0 {
		c.Schemas.Debounce = other.Schemas.Debounce
	}

	// Events
	if other.Events.Enabled {
		c.Events.Enabled = true
	}
	if other.Events.URL != "" {
		c.Events.URL = other.Events.URL
	}
	if other.Events.SubjectPrefix != "" {
		c.Events.SubjectPrefix = other.Events.SubjectPrefix
	}
}

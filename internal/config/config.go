package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/storekit"
)

// StoreConfig configures the store driven by the command.
type StoreConfig struct {
	Name    string `yaml:"name"`
	Policy  string `yaml:"policy"`
	Initial int    `yaml:"initial"`
}

// LokiConfig configures optional Loki integration for logging.
type LokiConfig struct {
	Enabled bool              `yaml:"enabled"`
	URL     string            `yaml:"url"`
	Labels  map[string]string `yaml:"labels"`
}

// LoggingConfig encapsulates runtime logging options.
type LoggingConfig struct {
	Level  string     `yaml:"level"`
	Format string     `yaml:"format"`
	Loki   LokiConfig `yaml:"loki"`
}

// TelemetryConfig toggles Prometheus collection.
type TelemetryConfig struct {
	Enabled bool `yaml:"enabled"`
}

// TracingConfig toggles OpenTelemetry tracing.
type TracingConfig struct {
	Stdout      bool   `yaml:"stdout"`
	ServiceName string `yaml:"service_name,omitempty"`
}

// Config is the root configuration structure for the command.
type Config struct {
	Store     StoreConfig     `yaml:"store"`
	Logging   LoggingConfig   `yaml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Tracing   TracingConfig   `yaml:"tracing"`
	Actions   []string        `yaml:"actions"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Store:     StoreConfig{Name: "counter", Policy: storekit.PolicyStrict.String()},
		Logging:   LoggingConfig{Level: "info", Format: "json"},
		Telemetry: TelemetryConfig{Enabled: true},
	}
}

// Load reads and decodes the configuration file from disk.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(raw)
}

// Parse decodes raw YAML on top of Default and validates the result.
func Parse(raw []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks fields that cannot be verified by decoding alone.
func (c *Config) Validate() error {
	if _, err := c.StorePolicy(); err != nil {
		return fmt.Errorf("store.policy: %w", err)
	}
	if c.Logging.Loki.Enabled && c.Logging.Loki.URL == "" {
		return fmt.Errorf("logging.loki.url is required when loki is enabled")
	}
	for i, action := range c.Actions {
		if action == "" {
			return fmt.Errorf("actions[%d]: empty action type", i)
		}
	}
	return nil
}

// StorePolicy returns the parsed unknown-action policy.
func (c *Config) StorePolicy() (storekit.Policy, error) {
	if c == nil {
		return storekit.PolicyStrict, nil
	}
	return storekit.ParsePolicy(c.Store.Policy)
}

// ActionList converts the configured action names to tagged actions.
func (c *Config) ActionList() []storekit.Action {
	if c == nil {
		return nil
	}
	actions := make([]storekit.Action, len(c.Actions))
	for i, name := range c.Actions {
		actions[i] = storekit.Action{Type: storekit.ActionType(name)}
	}
	return actions
}

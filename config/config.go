// Package config loads and validates benchmark configuration from YAML.
package config

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/c360/synckit/errors"
	"github.com/c360/synckit/ring"
)

// Config represents the complete benchmark configuration.
type Config struct {
	Workload WorkloadConfig `yaml:"workload"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// WorkloadConfig shapes the producer/consumer workload.
type WorkloadConfig struct {
	Producers int    `yaml:"producers"`
	Consumers int    `yaml:"consumers"`
	Items     int    `yaml:"items"`     // items per producer
	Capacity  int    `yaml:"capacity"`  // container capacity
	Container string `yaml:"container"` // bounded, unbounded, ring, map
	Policy    string `yaml:"policy"`    // ring only: block, drop_oldest, drop_newest
}

// LoggingConfig controls structured log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Container kinds accepted by WorkloadConfig.Container.
const (
	ContainerBounded   = "bounded"
	ContainerUnbounded = "unbounded"
	ContainerRing      = "ring"
	ContainerMap       = "map"
)

// DefaultConfig returns a runnable configuration.
func DefaultConfig() *Config {
	return &Config{
		Workload: WorkloadConfig{
			Producers: 4,
			Consumers: 4,
			Items:     10000,
			Capacity:  64,
			Container: ContainerBounded,
			Policy:    "block",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
		},
	}
}

// Load reads a YAML configuration file, fills in defaults, and validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: %s: %w", errors.ErrMissingConfig, path, err),
			"config", "Load", "read config file")
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err),
			"config", "Load", "parse YAML")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the benchmark cannot run
// with.
func (c *Config) Validate() error {
	w := c.Workload
	if w.Producers <= 0 {
		return invalidField("workload.producers must be positive")
	}
	if w.Consumers <= 0 {
		return invalidField("workload.consumers must be positive")
	}
	if w.Items <= 0 {
		return invalidField("workload.items must be positive")
	}
	if w.Capacity <= 0 {
		return invalidField("workload.capacity must be positive")
	}

	switch w.Container {
	case ContainerBounded, ContainerUnbounded, ContainerRing, ContainerMap:
	default:
		return invalidField(fmt.Sprintf("workload.container %q is not one of bounded, unbounded, ring, map", w.Container))
	}

	if w.Container == ContainerRing {
		if _, err := c.OverflowPolicy(); err != nil {
			return err
		}
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return invalidField(fmt.Sprintf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return invalidField(fmt.Sprintf("logging.format %q is not one of text, json", c.Logging.Format))
	}

	if c.Metrics.Enabled && (c.Metrics.Port <= 0 || c.Metrics.Port > 65535) {
		return invalidField(fmt.Sprintf("metrics.port %d is out of range", c.Metrics.Port))
	}
	return nil
}

// OverflowPolicy maps the configured policy name to a ring.OverflowPolicy.
func (c *Config) OverflowPolicy() (ring.OverflowPolicy, error) {
	switch c.Workload.Policy {
	case "", "block":
		return ring.Block, nil
	case "drop_oldest":
		return ring.DropOldest, nil
	case "drop_newest":
		return ring.DropNewest, nil
	default:
		return ring.Block, invalidField(fmt.Sprintf("workload.policy %q is not one of block, drop_oldest, drop_newest", c.Workload.Policy))
	}
}

func invalidField(msg string) error {
	return errors.WrapInvalid(
		fmt.Errorf("%w: %s", errors.ErrInvalidConfig, msg),
		"config", "Validate", "check fields")
}

// SafeConfig provides thread-safe access to configuration.
type SafeConfig struct {
	mu     sync.RWMutex
	config *Config
}

// NewSafeConfig creates a new thread-safe config wrapper.
func NewSafeConfig(cfg *Config) *SafeConfig {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &SafeConfig{config: cfg}
}

// Get returns a copy of the current configuration.
func (sc *SafeConfig) Get() *Config {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	clone := *sc.config
	return &clone
}

// Update atomically replaces the configuration after validation.
func (sc *SafeConfig) Update(cfg *Config) error {
	if cfg == nil {
		return invalidField("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.config = cfg
	return nil
}

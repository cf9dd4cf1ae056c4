package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/c360/synckit/config"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath  string
	Container   string
	Producers   int
	Consumers   int
	Items       int
	Capacity    int
	Policy      string
	LogLevel    string
	LogFormat   string
	MetricsPort int
	ShowVersion bool
	ShowHelp    bool
	Validate    bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	// Define flags with environment variable fallback
	flag.StringVar(&cfg.ConfigPath, "config",
		getEnv("SYNCKIT_CONFIG", ""),
		"Path to YAML configuration file, empty for defaults (env: SYNCKIT_CONFIG)")

	flag.StringVar(&cfg.Container, "container",
		getEnv("SYNCKIT_CONTAINER", ""),
		"Container under test: bounded, unbounded, ring, map (env: SYNCKIT_CONTAINER)")

	flag.IntVar(&cfg.Producers, "producers",
		getEnvInt("SYNCKIT_PRODUCERS", 0),
		"Number of producer goroutines, 0 for config value (env: SYNCKIT_PRODUCERS)")

	flag.IntVar(&cfg.Consumers, "consumers",
		getEnvInt("SYNCKIT_CONSUMERS", 0),
		"Number of consumer goroutines, 0 for config value (env: SYNCKIT_CONSUMERS)")

	flag.IntVar(&cfg.Items, "items",
		getEnvInt("SYNCKIT_ITEMS", 0),
		"Items per producer, 0 for config value (env: SYNCKIT_ITEMS)")

	flag.IntVar(&cfg.Capacity, "capacity",
		getEnvInt("SYNCKIT_CAPACITY", 0),
		"Container capacity, 0 for config value (env: SYNCKIT_CAPACITY)")

	flag.StringVar(&cfg.Policy, "policy",
		getEnv("SYNCKIT_POLICY", ""),
		"Ring overflow policy: block, drop_oldest, drop_newest (env: SYNCKIT_POLICY)")

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("SYNCKIT_LOG_LEVEL", ""),
		"Log level: debug, info, warn, error (env: SYNCKIT_LOG_LEVEL)")

	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("SYNCKIT_LOG_FORMAT", ""),
		"Log format: json, text (env: SYNCKIT_LOG_FORMAT)")

	flag.IntVar(&cfg.MetricsPort, "metrics-port",
		getEnvInt("SYNCKIT_METRICS_PORT", 0),
		"Prometheus endpoint port, 0 to disable (env: SYNCKIT_METRICS_PORT)")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	flag.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	flag.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	flag.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")
	flag.BoolVar(&cfg.Validate, "validate", false, "Validate configuration and exit")

	flag.Usage = func() {
		printDetailedHelp()
	}

	flag.Parse()
	return cfg
}

// applyFlagOverrides lets explicit CLI flags win over the config file.
func applyFlagOverrides(cfg *config.Config, cliCfg *CLIConfig) {
	if cliCfg.Container != "" {
		cfg.Workload.Container = cliCfg.Container
	}
	if cliCfg.Producers > 0 {
		cfg.Workload.Producers = cliCfg.Producers
	}
	if cliCfg.Consumers > 0 {
		cfg.Workload.Consumers = cliCfg.Consumers
	}
	if cliCfg.Items > 0 {
		cfg.Workload.Items = cliCfg.Items
	}
	if cliCfg.Capacity > 0 {
		cfg.Workload.Capacity = cliCfg.Capacity
	}
	if cliCfg.Policy != "" {
		cfg.Workload.Policy = cliCfg.Policy
	}
	if cliCfg.LogLevel != "" {
		cfg.Logging.Level = cliCfg.LogLevel
	}
	if cliCfg.LogFormat != "" {
		cfg.Logging.Format = cliCfg.LogFormat
	}
	if cliCfg.MetricsPort > 0 {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Port = cliCfg.MetricsPort
	}
}

func validateFlags(cfg *CLIConfig) error {
	if cfg.ConfigPath != "" {
		if _, err := os.Stat(cfg.ConfigPath); err != nil {
			return fmt.Errorf("config file not found: %s", cfg.ConfigPath)
		}
	}
	if cfg.MetricsPort < 0 || cfg.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", cfg.MetricsPort)
	}
	return nil
}

func printDetailedHelp() {
	_, _ = fmt.Fprintf(os.Stderr, `%s - Synchronized Container Workload Driver

Usage: %s [options]

Options:
`, appName, os.Args[0])
	flag.PrintDefaults()
	_, _ = fmt.Fprintf(os.Stderr, `
Examples:
  # Run the default bounded-deque workload
  %s

  # Hammer a ring buffer that drops its oldest elements
  %s --container=ring --policy=drop_oldest --capacity=32

  # Run from a config file with a live metrics endpoint
  %s --config=bench.yaml --metrics-port=9090

Version: %s
Build: %s
`, os.Args[0], os.Args[0], os.Args[0], Version, BuildTime)
}

// Environment variable helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

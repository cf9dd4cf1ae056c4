// Package main implements synckit-bench, a producer/consumer workload
// driver for the synckit containers. It exercises the bounded and
// unbounded deques, the ring buffer, and the associative map under
// configurable concurrency, and can expose container metrics over a
// Prometheus endpoint while running.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/c360/synckit/config"
	"github.com/c360/synckit/metric"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "synckit-bench"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Benchmark failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg := parseFlags()
	if cliCfg.ShowVersion {
		fmt.Printf("%s %s (build %s)\n", appName, Version, BuildTime)
		return nil
	}
	if cliCfg.ShowHelp {
		printDetailedHelp()
		return nil
	}
	if err := validateFlags(cliCfg); err != nil {
		return err
	}

	cfg, err := loadConfiguration(cliCfg)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	if cliCfg.Validate {
		logger.Info("Configuration is valid")
		return nil
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	registry := metric.NewMetricsRegistry()
	if cfg.Metrics.Enabled {
		server := metric.NewServer(cfg.Metrics.Port, "/metrics", registry)
		if err := server.Start(); err != nil {
			return fmt.Errorf("start metrics server: %w", err)
		}
		logger.Info("Metrics endpoint started", "addr", server.Addr())
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := server.Stop(shutdownCtx); err != nil {
				logger.Warn("Metrics server shutdown failed", "error", err)
			}
		}()
	}

	logger.Info("Starting workload",
		"container", cfg.Workload.Container,
		"producers", cfg.Workload.Producers,
		"consumers", cfg.Workload.Consumers,
		"items_per_producer", cfg.Workload.Items,
		"capacity", cfg.Workload.Capacity)

	result, err := runWorkload(ctx, cfg, registry, logger)
	if err != nil {
		return err
	}

	logger.Info("Workload complete",
		"produced", result.Produced,
		"consumed", result.Consumed,
		"dropped", result.Dropped,
		"duration", result.Duration.Round(time.Millisecond),
		"throughput_per_sec", int64(float64(result.Consumed)/result.Duration.Seconds()))
	return nil
}

// loadConfiguration merges the optional config file with CLI overrides.
func loadConfiguration(cliCfg *CLIConfig) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if cliCfg.ConfigPath != "" {
		loaded, err := config.Load(cliCfg.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	applyFlagOverrides(cfg, cliCfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

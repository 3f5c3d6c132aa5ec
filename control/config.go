// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Run configuration for the ring stress driver, layered defaults < file < env < flags.

package control

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/momentics/hioload-ring/api"
)

// EnvPrefix is the prefix for environment overrides, e.g. HIOLOAD_RING_CAPACITY.
const EnvPrefix = "HIOLOAD_RING"

// Allocator kinds accepted by Config.Allocator.
const (
	AllocatorHeap = "heap"
	AllocatorSlab = "slab"
)

// Config holds parameters immutable per run.
type Config struct {
	Capacity      int           `mapstructure:"capacity"`
	Writers       int           `mapstructure:"writers"`
	AddsPerWriter int           `mapstructure:"adds_per_writer"`
	Workers       int           `mapstructure:"workers"`
	Pin           bool          `mapstructure:"pin"`
	Allocator     string        `mapstructure:"allocator"`
	Budget        int           `mapstructure:"budget"`
	SnapshotHead  int           `mapstructure:"snapshot_head"`
	MetricsAddr   string        `mapstructure:"metrics_addr"`
	Timeout       time.Duration `mapstructure:"timeout"`
	LogLevel      string        `mapstructure:"log_level"`
	Production    bool          `mapstructure:"production"`
}

// DefaultConfig returns default configuration values.
func DefaultConfig() *Config {
	return &Config{
		Capacity:      1024,
		Writers:       64,
		AddsPerWriter: 10000,
		Workers:       0, // runtime.NumCPU()
		Pin:           false,
		Allocator:     AllocatorHeap,
		Budget:        0, // unlimited
		SnapshotHead:  8,
		MetricsAddr:   "",
		Timeout:       time.Minute,
		LogLevel:      "info",
		Production:    false,
	}
}

// Validate rejects configurations the driver cannot run.
func (c *Config) Validate() error {
	var errs []error
	if c.Capacity < 1 {
		errs = append(errs, fmt.Errorf("capacity %d: %w", c.Capacity, api.ErrInvalidCapacity))
	}
	if c.Writers < 1 {
		errs = append(errs, fmt.Errorf("writers %d: %w", c.Writers, api.ErrInvalidArgument))
	}
	if c.AddsPerWriter < 0 {
		errs = append(errs, fmt.Errorf("adds_per_writer %d: %w", c.AddsPerWriter, api.ErrInvalidArgument))
	}
	if c.Budget < 0 {
		errs = append(errs, fmt.Errorf("budget %d: %w", c.Budget, api.ErrInvalidArgument))
	}
	switch c.Allocator {
	case AllocatorHeap, AllocatorSlab:
	default:
		errs = append(errs, fmt.Errorf("allocator %q: %w", c.Allocator, api.ErrInvalidArgument))
	}
	return errors.Join(errs...)
}

// RegisterFlags declares the command-line flags mirrored by Config.
func RegisterFlags(fs *pflag.FlagSet) {
	d := DefaultConfig()
	fs.String("config", "", "path to a YAML config file")
	fs.Int("capacity", d.Capacity, "ring slots")
	fs.Int("writers", d.Writers, "concurrent writer tasks")
	fs.Int("adds-per-writer", d.AddsPerWriter, "Add calls per writer")
	fs.Int("workers", d.Workers, "executor goroutines (0 = NumCPU)")
	fs.Bool("pin", d.Pin, "pin workers to CPUs")
	fs.String("allocator", d.Allocator, "backing allocator: heap or slab")
	fs.Int("budget", d.Budget, "element budget across live arrays (0 = unlimited)")
	fs.Int("snapshot-head", d.SnapshotHead, "sorted snapshot values to log")
	fs.String("metrics-addr", d.MetricsAddr, "serve /metrics on this address")
	fs.Duration("timeout", d.Timeout, "overall run timeout")
	fs.String("log-level", d.LogLevel, "debug, info, warn or error")
	fs.Bool("production", d.Production, "JSON production logging")
}

// LoadConfig resolves a Config from defaults, an optional YAML file named by
// the "config" flag, HIOLOAD_RING_* environment variables and set flags.
// fs may be nil.
func LoadConfig(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	d := DefaultConfig()
	v.SetDefault("capacity", d.Capacity)
	v.SetDefault("writers", d.Writers)
	v.SetDefault("adds_per_writer", d.AddsPerWriter)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("pin", d.Pin)
	v.SetDefault("allocator", d.Allocator)
	v.SetDefault("budget", d.Budget)
	v.SetDefault("snapshot_head", d.SnapshotHead)
	v.SetDefault("metrics_addr", d.MetricsAddr)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("production", d.Production)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		var bindErr error
		fs.VisitAll(func(f *pflag.Flag) {
			if f.Name == "config" {
				return
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
				bindErr = err
			}
		})
		if bindErr != nil {
			return nil, fmt.Errorf("bind flags: %w", bindErr)
		}
		if path, _ := fs.GetString("config"); path != "" {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

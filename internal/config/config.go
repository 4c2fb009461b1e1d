// Package config loads allocation settings from YAML and assembles the
// matching allocator stack.
package config

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/born-ml/dynmem/internal/buffer"
)

// Config selects and tunes the allocation strategy.
type Config struct {
	// Mode is "heap" or "mapped". Empty selects the build-time default.
	Mode string `yaml:"mode"`
	// StrictLock makes a failure to page-lock mapped memory fatal.
	StrictLock bool       `yaml:"strict_lock"`
	Pool       PoolConfig `yaml:"pool"`
	// Track wraps the stack in a buffer.Tracker for leak detection.
	Track    bool   `yaml:"track"`
	LogLevel string `yaml:"log_level"`
}

// PoolConfig controls block reuse between frames.
type PoolConfig struct {
	Enabled     bool `yaml:"enabled"`
	MaxPerClass int  `yaml:"max_per_class"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Mode:     buffer.DefaultMode.String(),
		Pool:     PoolConfig{Enabled: false, MaxPerClass: buffer.DefaultMaxPerClass},
		LogLevel: "info",
	}
}

// Parse decodes YAML on top of Default and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses a YAML config file.
func Load(path string) (Config, error) {
	//nolint:gosec // G304: config path comes from the command line
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Validate checks field values.
func (c Config) Validate() error {
	if c.Mode != "" {
		if _, err := buffer.ParseMode(c.Mode); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
	}
	if c.Pool.MaxPerClass < 0 {
		return fmt.Errorf("invalid config: pool.max_per_class must not be negative, got %d", c.Pool.MaxPerClass)
	}
	if c.LogLevel != "" {
		if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
	}
	return nil
}

// Stack is an assembled allocator chain: base allocator, optional pool,
// optional tracker on top.
type Stack struct {
	Allocator buffer.Allocator
	Mode      buffer.Mode
	Pool      *buffer.Pool
	Tracker   *buffer.Tracker
}

// Options returns the buffer option that routes allocations through the stack.
func (s *Stack) Options() []buffer.Option {
	return []buffer.Option{buffer.WithAllocator(s.Allocator)}
}

// Close returns pooled blocks to the base allocator.
func (s *Stack) Close() error {
	if s.Pool == nil {
		return nil
	}
	return s.Pool.Clear()
}

// Build applies the log level and assembles the allocator stack.
func (c Config) Build() (*Stack, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if c.LogLevel != "" {
		level, _ := logrus.ParseLevel(c.LogLevel)
		logrus.SetLevel(level)
	}

	mode := buffer.DefaultMode
	if c.Mode != "" {
		mode, _ = buffer.ParseMode(c.Mode)
	}

	s := &Stack{Mode: mode}
	switch mode {
	case buffer.Mapped:
		s.Allocator = buffer.NewMappedAllocator(c.StrictLock)
	default:
		s.Allocator = buffer.NewHeapAllocator()
	}

	if c.Pool.Enabled {
		s.Pool = buffer.NewPool(s.Allocator, c.Pool.MaxPerClass)
		s.Allocator = s.Pool
	}
	if c.Track {
		s.Tracker = buffer.NewTracker(s.Allocator)
		s.Allocator = s.Tracker
	}

	logrus.WithFields(logrus.Fields{
		"component": "config",
		"mode":      mode,
		"pool":      c.Pool.Enabled,
		"track":     c.Track,
	}).Debug("allocator stack built")
	return s, nil
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for obfuscated strings.
//
// Configuration is loaded from a single file specified by:
//   - SECURESTRING_CONFIG environment variable, or
//   - an explicit path passed to LoadFile
//
// There are no fallbacks or automatic discovery. This ensures deterministic,
// auditable configuration with no hidden overrides.
//
// The config file may contain environment-specific sections (development,
// staging, production) that override base values when the environment matches.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the variable Load reads the config path from.
const EnvironmentVariable = "SECURESTRING_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Staging is for pre-production testing.
	Staging Environment = "staging"
	// Production is for production deployments.
	Production Environment = "production"
)

// AllocatorKind selects where string buffers live.
type AllocatorKind string

const (
	// AllocatorHeap keeps buffers on the Go heap.
	AllocatorHeap AllocatorKind = "heap"
	// AllocatorLocked keeps buffers in mlocked, non-dumpable mmap
	// regions and fails when those cannot be obtained.
	AllocatorLocked AllocatorKind = "locked"
	// AllocatorPreferLocked tries locked memory and falls back to the
	// heap with a warning.
	AllocatorPreferLocked AllocatorKind = "prefer-locked"
)

// Config is the master configuration.
type Config struct {
	// Environment identifies the deployment type (development, staging, production).
	Environment Environment `yaml:"environment"`

	// Strings configures obfuscated string containers.
	Strings StringsConfig `yaml:"strings"`

	// EnvironmentOverrides contains per-environment overrides.
	// These are applied after the base config is loaded.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Strings *StringsOverrides `yaml:"strings,omitempty"`
}

// StringsConfig configures obfuscated string containers.
type StringsConfig struct {
	// DefaultCapacity is the number of bytes pre-allocated by a string
	// created without an explicit size.
	// Default: 80
	DefaultCapacity int `yaml:"default_capacity"`

	// ThreadSafe serializes every operation on a string with a
	// per-instance mutex. Without it a string must only be used from
	// one goroutine at a time.
	// Default: true
	ThreadSafe bool `yaml:"thread_safe"`

	// Allocator selects the backing memory: heap, locked, or prefer-locked.
	// Default: prefer-locked (development), locked (production)
	Allocator AllocatorKind `yaml:"allocator"`
}

// StringsOverrides mirrors StringsConfig with optional fields, so an
// override section only changes what it names.
type StringsOverrides struct {
	DefaultCapacity *int           `yaml:"default_capacity,omitempty"`
	ThreadSafe      *bool          `yaml:"thread_safe,omitempty"`
	Allocator       *AllocatorKind `yaml:"allocator,omitempty"`
}

// Default returns the default configuration. These defaults are used as
// a base before loading the config file.
func Default() *Config {
	return &Config{
		Environment: Development,
		Strings: StringsConfig{
			DefaultCapacity: 80,
			ThreadSafe:      true,
			Allocator:       AllocatorPreferLocked,
		},
	}
}

// Load loads configuration from the SECURESTRING_CONFIG environment
// variable. There is no fallback: if the variable is not set, this fails.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your securestring.yaml config file", EnvironmentVariable)
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path, applies the
// section for the configured environment, and validates the result.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.applyEnvironmentOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// loadFile loads a single configuration file, merging into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// applyEnvironmentOverrides applies the environment-specific overrides.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
		// Production defaults: locked memory, serialized access.
		if overrides == nil {
			locked := AllocatorLocked
			threadSafe := true
			overrides = &ConfigOverrides{
				Strings: &StringsOverrides{
					Allocator:  &locked,
					ThreadSafe: &threadSafe,
				},
			}
		}
	}

	if overrides == nil || overrides.Strings == nil {
		return
	}

	if overrides.Strings.DefaultCapacity != nil {
		c.Strings.DefaultCapacity = *overrides.Strings.DefaultCapacity
	}
	if overrides.Strings.ThreadSafe != nil {
		c.Strings.ThreadSafe = *overrides.Strings.ThreadSafe
	}
	if overrides.Strings.Allocator != nil {
		c.Strings.Allocator = *overrides.Strings.Allocator
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.Strings.DefaultCapacity < 0 {
		errs = append(errs, fmt.Errorf("strings.default_capacity must not be negative, got %d", c.Strings.DefaultCapacity))
	}

	switch c.Strings.Allocator {
	case AllocatorHeap, AllocatorLocked, AllocatorPreferLocked:
	default:
		errs = append(errs, fmt.Errorf("strings.allocator must be one of: %v",
			[]AllocatorKind{AllocatorHeap, AllocatorLocked, AllocatorPreferLocked}))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

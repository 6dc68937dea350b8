// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "securestring.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return configPath
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Environment != Development {
		t.Errorf("expected environment=development, got %s", cfg.Environment)
	}
	if cfg.Strings.DefaultCapacity != 80 {
		t.Errorf("expected default_capacity=80, got %d", cfg.Strings.DefaultCapacity)
	}
	if !cfg.Strings.ThreadSafe {
		t.Error("expected thread_safe=true")
	}
	if cfg.Strings.Allocator != AllocatorPreferLocked {
		t.Errorf("expected allocator=prefer-locked, got %s", cfg.Strings.Allocator)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestLoad_RequiresEnvironmentVariable(t *testing.T) {
	t.Setenv(EnvironmentVariable, "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when SECURESTRING_CONFIG not set, got nil")
	}

	expectedMsg := "SECURESTRING_CONFIG environment variable not set"
	if !strings.HasPrefix(err.Error(), expectedMsg) {
		t.Errorf("expected error message to start with %q, got %q", expectedMsg, err.Error())
	}
}

func TestLoad_WithEnvironmentVariable(t *testing.T) {
	configPath := writeConfig(t, `
environment: staging
strings:
  default_capacity: 16
`)
	t.Setenv(EnvironmentVariable, configPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Environment != Staging {
		t.Errorf("expected environment=staging, got %s", cfg.Environment)
	}
	if cfg.Strings.DefaultCapacity != 16 {
		t.Errorf("expected default_capacity=16, got %d", cfg.Strings.DefaultCapacity)
	}
	// Unset keys keep their defaults.
	if !cfg.Strings.ThreadSafe {
		t.Error("expected thread_safe to keep its default")
	}
}

func TestLoadFile(t *testing.T) {
	configPath := writeConfig(t, `
environment: development

strings:
  default_capacity: 256
  thread_safe: false
  allocator: heap
`)

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Strings.DefaultCapacity != 256 {
		t.Errorf("expected default_capacity=256, got %d", cfg.Strings.DefaultCapacity)
	}
	if cfg.Strings.ThreadSafe {
		t.Error("expected thread_safe=false")
	}
	if cfg.Strings.Allocator != AllocatorHeap {
		t.Errorf("expected allocator=heap, got %s", cfg.Strings.Allocator)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadFile_Malformed(t *testing.T) {
	configPath := writeConfig(t, "strings: [not, a, mapping")
	if _, err := LoadFile(configPath); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	configPath := writeConfig(t, `
environment: staging

strings:
  default_capacity: 80
  allocator: prefer-locked

staging:
  strings:
    default_capacity: 32
    allocator: heap
`)

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Strings.DefaultCapacity != 32 {
		t.Errorf("expected default_capacity=32 from staging override, got %d", cfg.Strings.DefaultCapacity)
	}
	if cfg.Strings.Allocator != AllocatorHeap {
		t.Errorf("expected allocator=heap from staging override, got %s", cfg.Strings.Allocator)
	}
	// The override section did not name thread_safe.
	if !cfg.Strings.ThreadSafe {
		t.Error("expected thread_safe to be untouched by the override")
	}
}

func TestProductionDefaults(t *testing.T) {
	configPath := writeConfig(t, `
environment: production
strings:
  thread_safe: false
  allocator: heap
`)

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Strings.Allocator != AllocatorLocked {
		t.Errorf("expected production allocator=locked, got %s", cfg.Strings.Allocator)
	}
	if !cfg.Strings.ThreadSafe {
		t.Error("expected production thread_safe=true")
	}
}

func TestProductionExplicitSection(t *testing.T) {
	configPath := writeConfig(t, `
environment: production
production:
  strings:
    allocator: prefer-locked
`)

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	// An explicit production section replaces the built-in one.
	if cfg.Strings.Allocator != AllocatorPreferLocked {
		t.Errorf("expected allocator=prefer-locked, got %s", cfg.Strings.Allocator)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errors []string
	}{
		{
			name:   "valid",
			mutate: func(*Config) {},
		},
		{
			name:   "bad environment",
			mutate: func(c *Config) { c.Environment = "qa" },
			errors: []string{"invalid environment: qa"},
		},
		{
			name:   "negative capacity",
			mutate: func(c *Config) { c.Strings.DefaultCapacity = -1 },
			errors: []string{"strings.default_capacity must not be negative"},
		},
		{
			name: "several problems",
			mutate: func(c *Config) {
				c.Strings.DefaultCapacity = -5
				c.Strings.Allocator = "tmpfs"
			},
			errors: []string{"strings.default_capacity", "strings.allocator must be one of"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := Default()
			test.mutate(cfg)
			err := cfg.Validate()

			if len(test.errors) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			for _, fragment := range test.errors {
				if !strings.Contains(err.Error(), fragment) {
					t.Errorf("error %q does not mention %q", err.Error(), fragment)
				}
			}
		})
	}
}

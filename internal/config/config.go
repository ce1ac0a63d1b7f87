// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package config loads the optional pygen YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Config holds settings shared by the pygen commands. Command-line flags
// override these values.
type Config struct {
	Path         string `yaml:"-"`
	Database     string `yaml:"database"`
	Session      string `yaml:"session"`
	PersistMode  string `yaml:"persist_mode"`
	NestedBlocks bool   `yaml:"nested_blocks"`
	Color        string `yaml:"color"`
	LogLevel     string `yaml:"log_level"`
	Prelude      string `yaml:"prelude"`
	HistoryLimit int    `yaml:"history_limit"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Session:      "default",
		Color:        "auto",
		LogLevel:     "disabled",
		HistoryLimit: 20,
	}
}

// DefaultPath returns ~/.pygen/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: home directory: %w", err)
	}
	return filepath.Join(home, ".pygen", "config.yaml"), nil
}

// Load reads the config file at path over the defaults. A missing file is
// not an error; unknown keys are.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parse %s: %w", abs, err)
	}
	cfg.Path = abs
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", abs, err)
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.PersistMode {
	case "", "never", "on_demand", "always":
	default:
		return fmt.Errorf("invalid persist_mode %q (want never, on_demand or always)", c.PersistMode)
	}
	switch c.Color {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("invalid color %q (want auto, always or never)", c.Color)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("invalid history_limit %d", c.HistoryLimit)
	}
	return nil
}

// Level parses LogLevel. An empty level disables logging.
func (c *Config) Level() (zerolog.Level, error) {
	if c.LogLevel == "" {
		return zerolog.Disabled, nil
	}
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package config loads the renderer configuration from TOML.
//
// Example file:
//
//	width = 1920
//	height = 1080
//	msaa_samples = 4
//	fov = 90.0
//	console_proportion = 0.33
//	asset_dir = "id1"
//	watch_assets = true
//	log_level = "debug"
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/gogpu/deferred"
	"github.com/gogpu/deferred/gfx"
	"github.com/pelletier/go-toml/v2"
)

// ErrInvalid is returned when a configuration value is out of range.
var ErrInvalid = errors.New("config: invalid value")

// Config holds the renderer settings.
type Config struct {
	Width             uint32  `toml:"width"`
	Height            uint32  `toml:"height"`
	MSAASamples       uint32  `toml:"msaa_samples"`
	Fov               float32 `toml:"fov"`
	ConsoleProportion float32 `toml:"console_proportion"`
	AssetDir          string  `toml:"asset_dir"`
	WatchAssets       bool    `toml:"watch_assets"`
	LogLevel          string  `toml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Width:             1280,
		Height:            720,
		MSAASamples:       1,
		Fov:               90,
		ConsoleProportion: 0.33,
		LogLevel:          "info",
	}
}

// Parse decodes TOML data on top of the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses the file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every value for range errors. An unsupported sample
// count is not an error: see [Config.SampleCount].
func (c Config) Validate() error {
	switch {
	case c.Width == 0 || c.Height == 0:
		return fmt.Errorf("%w: resolution %dx%d", ErrInvalid, c.Width, c.Height)
	case c.Fov <= 0 || c.Fov >= 180:
		return fmt.Errorf("%w: fov %v", ErrInvalid, c.Fov)
	case c.ConsoleProportion <= 0 || c.ConsoleProportion > 1:
		return fmt.Errorf("%w: console_proportion %v", ErrInvalid, c.ConsoleProportion)
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel)
	}
	return nil
}

// SampleCount returns the multisample count to render with. Counts other
// than 1, 2 and 4 fall back to 1.
func (c Config) SampleCount() uint32 {
	switch c.MSAASamples {
	case 1, 2, 4:
		return c.MSAASamples
	}
	deferred.Logger().Warn("config: unsupported msaa_samples, using 1", "msaa_samples", c.MSAASamples)
	return 1
}

// Extent returns the render resolution.
func (c Config) Extent() gfx.Extent2D {
	return gfx.Extent2D{Width: c.Width, Height: c.Height}
}

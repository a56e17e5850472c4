// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package config loads rectfilter query files.
//
// A query file is YAML:
//
//	rect: {min_x: 0, min_y: 0, max_x: 10, max_y: 10}
//	points:
//	  - {x: 1, y: 1}
//	  - {x: 15, y: 3}
//	generate: {count: 1000, seed: 7, min_x: -20, min_y: -20, max_x: 20, max_y: 20}
//	plot: {width: 512, height: 512, output: query.png}
//
// Explicit points come first, generated points follow them.
package config

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/rectfilter"
)

// Defaults applied by DefaultConfig.
const (
	// DefaultPlotWidth and DefaultPlotHeight are the PNG size in pixels.
	DefaultPlotWidth  = 512
	DefaultPlotHeight = 512
	// DefaultPlotOutput is the PNG path written by the plot command.
	DefaultPlotOutput = "rectfilter.png"
	// DefaultExtent bounds generated points to [-DefaultExtent, DefaultExtent]
	// on both axes.
	DefaultExtent = 100.0
)

// ErrInvalid is returned by Validate for unusable queries.
var ErrInvalid = errors.New("config: invalid query")

// Config is one query: a rectangle, the points to filter, and how to
// report the result.
type Config struct {
	Rect     RectConfig     `yaml:"rect"`
	Points   []PointConfig  `yaml:"points"`
	Generate GenerateConfig `yaml:"generate"`
	Plot     PlotConfig     `yaml:"plot"`
	Verify   bool           `yaml:"verify"`
}

// RectConfig is the query rectangle. Bounds are inclusive and may be
// given in any order.
type RectConfig struct {
	MinX float32 `yaml:"min_x"`
	MinY float32 `yaml:"min_y"`
	MaxX float32 `yaml:"max_x"`
	MaxY float32 `yaml:"max_y"`
}

// PointConfig is one explicit input point.
type PointConfig struct {
	X float32 `yaml:"x"`
	Y float32 `yaml:"y"`
}

// GenerateConfig describes uniformly distributed synthetic points.
// Count 0 disables generation.
type GenerateConfig struct {
	Count int     `yaml:"count"`
	Seed  uint64  `yaml:"seed"`
	MinX  float32 `yaml:"min_x"`
	MinY  float32 `yaml:"min_y"`
	MaxX  float32 `yaml:"max_x"`
	MaxY  float32 `yaml:"max_y"`
}

// PlotConfig controls the PNG written by the plot command.
type PlotConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Output string `yaml:"output"`
}

// DefaultConfig returns a query for [0, DefaultExtent/2] on both axes with
// no points and the default plot settings.
func DefaultConfig() *Config {
	return &Config{
		Rect: RectConfig{MaxX: DefaultExtent / 2, MaxY: DefaultExtent / 2},
		Generate: GenerateConfig{
			MinX: -DefaultExtent, MinY: -DefaultExtent,
			MaxX: DefaultExtent, MaxY: DefaultExtent,
		},
		Plot: PlotConfig{
			Width:  DefaultPlotWidth,
			Height: DefaultPlotHeight,
			Output: DefaultPlotOutput,
		},
	}
}

// Load reads and parses the query file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// Parse decodes a query over DefaultConfig and validates it.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects negative counts and degenerate plot sizes. Rectangles
// are not checked: an inverted rectangle is a valid query that matches
// nothing.
func (c *Config) Validate() error {
	if c.Generate.Count < 0 {
		return fmt.Errorf("%w: generate.count %d is negative", ErrInvalid, c.Generate.Count)
	}
	if c.Generate.Count > 0 && (c.Generate.MinX > c.Generate.MaxX || c.Generate.MinY > c.Generate.MaxY) {
		return fmt.Errorf("%w: generate bounds are inverted", ErrInvalid)
	}
	if c.Plot.Width <= 0 || c.Plot.Height <= 0 {
		return fmt.Errorf("%w: plot size %dx%d", ErrInvalid, c.Plot.Width, c.Plot.Height)
	}
	return nil
}

// RectValue returns the query rectangle.
func (c *Config) RectValue() rectfilter.Rect {
	return rectfilter.R(c.Rect.MinX, c.Rect.MinY, c.Rect.MaxX, c.Rect.MaxY)
}

// PointsValue returns the explicit points followed by the generated ones.
// Generation is deterministic for a given seed.
func (c *Config) PointsValue() []rectfilter.Point {
	ps := make([]rectfilter.Point, 0, len(c.Points)+c.Generate.Count)
	for _, p := range c.Points {
		ps = append(ps, rectfilter.Pt(p.X, p.Y))
	}
	if c.Generate.Count == 0 {
		return ps
	}
	g := c.Generate
	rng := rand.New(rand.NewPCG(g.Seed, g.Seed^0x9e3779b97f4a7c15))
	for i := 0; i < g.Count; i++ {
		x := g.MinX + rng.Float32()*(g.MaxX-g.MinX)
		y := g.MinY + rng.Float32()*(g.MaxY-g.MinY)
		ps = append(ps, rectfilter.Pt(x, y))
	}
	return ps
}

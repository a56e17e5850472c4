// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/rectfilter"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Plot.Width != DefaultPlotWidth || cfg.Plot.Height != DefaultPlotHeight {
		t.Errorf("plot size = %dx%d", cfg.Plot.Width, cfg.Plot.Height)
	}
	if len(cfg.PointsValue()) != 0 {
		t.Error("default config should have no points")
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
rect: {min_x: 0, min_y: 0, max_x: 10, max_y: 10}
points:
  - {x: 1, y: 1}
  - {x: 15, y: 3}
  - {x: 10, y: 10}
verify: true
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got, want := cfg.RectValue(), rectfilter.R(0, 0, 10, 10); got != want {
		t.Errorf("rect = %v, want %v", got, want)
	}
	ps := cfg.PointsValue()
	want := []rectfilter.Point{{X: 1, Y: 1}, {X: 15, Y: 3}, {X: 10, Y: 10}}
	if len(ps) != len(want) {
		t.Fatalf("points = %v, want %v", ps, want)
	}
	for i := range want {
		if ps[i] != want[i] {
			t.Errorf("points[%d] = %v, want %v", i, ps[i], want[i])
		}
	}
	if !cfg.Verify {
		t.Error("verify not decoded")
	}
	// Unset sections keep their defaults.
	if cfg.Plot.Output != DefaultPlotOutput {
		t.Errorf("plot.output = %q, want default", cfg.Plot.Output)
	}
}

func TestGenerate(t *testing.T) {
	data := []byte(`
points: [{x: 0.5, y: 0.5}]
generate: {count: 100, seed: 42, min_x: -1, min_y: -2, max_x: 1, max_y: 2}
`)
	a, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	b, _ := Parse(data)

	pa, pb := a.PointsValue(), b.PointsValue()
	if len(pa) != 101 {
		t.Fatalf("len = %d, want 101", len(pa))
	}
	if pa[0] != rectfilter.Pt(0.5, 0.5) {
		t.Errorf("explicit point not first: %v", pa[0])
	}
	bounds := rectfilter.R(-1, -2, 1, 2)
	for i := range pa {
		if pa[i] != pb[i] {
			t.Fatalf("generation not deterministic at %d: %v vs %v", i, pa[i], pb[i])
		}
		if !bounds.Contains(pa[i]) {
			t.Errorf("point %v outside generate bounds", pa[i])
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"negative count", "generate: {count: -1}"},
		{"inverted bounds", "generate: {count: 3, min_x: 5, max_x: 1}"},
		{"zero plot width", "plot: {width: 0}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("err = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestParseMalformed(t *testing.T) {
	if _, err := Parse([]byte("rect: [1, 2")); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "query.yaml")
	cfg := DefaultConfig()
	cfg.Rect = RectConfig{MinX: 1, MinY: 2, MaxX: 3, MaxY: 4}
	cfg.Points = []PointConfig{{X: 2, Y: 3}}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.RectValue() != cfg.RectValue() {
		t.Errorf("rect = %v, want %v", loaded.RectValue(), cfg.RectValue())
	}
	if len(loaded.Points) != 1 || loaded.Points[0] != cfg.Points[0] {
		t.Errorf("points = %v", loaded.Points)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want ErrNotExist", err)
	}
}

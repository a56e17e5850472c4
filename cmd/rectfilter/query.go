// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gogpu/rectfilter"
	"github.com/gogpu/rectfilter/internal/config"
)

// ErrVerify is returned when the GPU result differs from the CPU reference.
var ErrVerify = errors.New("rectfilter: GPU result differs from CPU reference")

type queryFlags struct {
	file   string
	rect   string
	points string
	verify bool
	quiet  bool
}

func (f *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "YAML query file")
	cmd.Flags().StringVar(&f.rect, "rect", "", "Rectangle as minX,minY,maxX,maxY (overrides the file)")
	cmd.Flags().StringVar(&f.points, "points", "", "Points as x,y;x,y;... (appended to the file's points)")
	cmd.Flags().BoolVar(&f.verify, "verify", false, "Compare the GPU result with the CPU reference")
}

// load builds the query from the file and the flag overrides.
func (f *queryFlags) load() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if f.file != "" {
		var err error
		if cfg, err = config.Load(f.file); err != nil {
			return nil, err
		}
	}
	if f.rect != "" {
		r, err := parseRect(f.rect)
		if err != nil {
			return nil, err
		}
		cfg.Rect = config.RectConfig{MinX: r.Min.X, MinY: r.Min.Y, MaxX: r.Max.X, MaxY: r.Max.Y}
	}
	if f.points != "" {
		ps, err := parsePoints(f.points)
		if err != nil {
			return nil, err
		}
		for _, p := range ps {
			cfg.Points = append(cfg.Points, config.PointConfig{X: p.X, Y: p.Y})
		}
	}
	if f.verify {
		cfg.Verify = true
	}
	return cfg, nil
}

func newQueryCmd() *cobra.Command {
	f := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Print the points inside the rectangle",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load()
			if err != nil {
				return err
			}
			points, rect := cfg.PointsValue(), cfg.RectValue()
			hits, elapsed, err := compute(points, rect, cfg.Verify)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !f.quiet {
				writePoints(out, hits)
			}
			printer().Fprintf(out, "%d of %d points inside %v in %v\n",
				len(hits), len(points), rect, elapsed.Round(time.Microsecond))
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "Print only the summary")
	return cmd
}

// compute runs one query on a dedicated worker.
func compute(points []rectfilter.Point, rect rectfilter.Rect, verify bool) ([]rectfilter.Point, time.Duration, error) {
	w, err := rectfilter.Start()
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = w.Dispose() }()

	start := time.Now()
	hits, err := w.Compute(points, rect)
	elapsed := time.Since(start)
	if err != nil {
		return nil, elapsed, err
	}
	if verify {
		if err := compare(hits, rectfilter.FilterCPU(points, rect)); err != nil {
			return nil, elapsed, err
		}
	}
	return hits, elapsed, nil
}

func compare(got, want []rectfilter.Point) error {
	if len(got) != len(want) {
		return fmt.Errorf("%w: %d points, want %d", ErrVerify, len(got), len(want))
	}
	for i := range got {
		if got[i] != want[i] {
			return fmt.Errorf("%w: index %d is %v, want %v", ErrVerify, i, got[i], want[i])
		}
	}
	return nil
}

func writePoints(w io.Writer, ps []rectfilter.Point) {
	for _, p := range ps {
		fmt.Fprintf(w, "%g %g\n", p.X, p.Y)
	}
}

func parseRect(s string) (rectfilter.Rect, error) {
	v, err := parseFloats(s, ",")
	if err != nil {
		return rectfilter.Rect{}, fmt.Errorf("rect %q: %w", s, err)
	}
	if len(v) != 4 {
		return rectfilter.Rect{}, fmt.Errorf("rect %q: want 4 values, got %d", s, len(v))
	}
	return rectfilter.R(v[0], v[1], v[2], v[3]), nil
}

func parsePoints(s string) ([]rectfilter.Point, error) {
	var ps []rectfilter.Point
	for _, part := range strings.Split(s, ";") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		v, err := parseFloats(part, ",")
		if err != nil {
			return nil, fmt.Errorf("point %q: %w", part, err)
		}
		if len(v) != 2 {
			return nil, fmt.Errorf("point %q: want 2 values, got %d", part, len(v))
		}
		ps = append(ps, rectfilter.Pt(v[0], v[1]))
	}
	return ps, nil
}

func parseFloats(s, sep string) ([]float32, error) {
	fields := strings.Split(s, sep)
	out := make([]float32, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 32)
		if err != nil {
			return nil, err
		}
		out = append(out, float32(v))
	}
	return out, nil
}

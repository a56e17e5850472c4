// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gogpu/rectfilter/internal/plot"
)

func newPlotCmd() *cobra.Command {
	f := &queryFlags{}
	var output string
	var width, height int
	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Run a query and render it to PNG",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load()
			if err != nil {
				return err
			}
			if output != "" {
				cfg.Plot.Output = output
			}
			if width > 0 {
				cfg.Plot.Width = width
			}
			if height > 0 {
				cfg.Plot.Height = height
			}

			points, rect := cfg.PointsValue(), cfg.RectValue()
			hits, _, err := compute(points, rect, cfg.Verify)
			if err != nil {
				return err
			}
			img, err := plot.Render(points, hits, rect, plot.Options{
				Width: cfg.Plot.Width, Height: cfg.Plot.Height, Label: true,
			})
			if err != nil {
				return err
			}

			file, err := os.Create(cfg.Plot.Output)
			if err != nil {
				return err
			}
			if err := plot.WritePNG(file, img); err != nil {
				_ = file.Close()
				return fmt.Errorf("write %s: %w", cfg.Plot.Output, err)
			}
			if err := file.Close(); err != nil {
				return err
			}
			printer().Fprintf(cmd.OutOrStdout(), "%d of %d points inside, wrote %s\n",
				len(hits), len(points), cfg.Plot.Output)
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "PNG output path (overrides the file)")
	cmd.Flags().IntVar(&width, "width", 0, "Image width in pixels")
	cmd.Flags().IntVar(&height, "height", 0, "Image height in pixels")
	return cmd
}

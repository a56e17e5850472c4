// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/rectfilter"
	"github.com/gogpu/rectfilter/gpu"
)

type globalFlags struct {
	logLevel     string
	pollInterval time.Duration
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "rectfilter",
		Short: "GPU rectangle point filter",
		Long: `rectfilter selects the points that fall inside an axis-aligned rectangle
using a compute kernel on the GPU (gogpu/wgpu, Vulkan by default).`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			rectfilter.SetLogger(newLogger(g.logLevel))
			if g.pollInterval > 0 {
				gpu.Configure(gpu.WithPollInterval(g.pollInterval))
			}
		},
	}
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "Log level (debug, info, warn, error, off)")
	root.PersistentFlags().DurationVar(&g.pollInterval, "poll-interval", 0, "Fence wait slice while reading results back (0 = default)")

	root.AddCommand(newQueryCmd(), newPlotCmd(), newInfoCmd(), newVersionCmd())
	return root
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "info":
		l = slog.LevelInfo
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	case "off":
		return nil
	default:
		l = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

// printer formats counts with digit grouping.
func printer() *message.Printer {
	return message.NewPrinter(language.English)
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gogpu/rectfilter"
	"github.com/gogpu/rectfilter/gpu"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the backend and the GPU adapter",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			b := rectfilter.DefaultBackend()
			if b == nil {
				return rectfilter.ErrNoBackend
			}
			fmt.Fprintf(out, "backend: %s\n", b.Name())
			name, err := gpu.AdapterName()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "adapter: %s\n", name)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rectfilter version %s\n", rectfilter.Version)
		},
	}
}

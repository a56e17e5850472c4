// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command rectfilter runs rectangle point queries on the GPU.
//
// Usage:
//
//	rectfilter query -f query.yaml --verify
//	rectfilter query --rect 0,0,10,10 --points "1,1;15,3;10,10"
//	rectfilter plot -f query.yaml -o out.png
//	rectfilter info
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

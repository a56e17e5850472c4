// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package rectfilter answers "which points lie inside this rectangle" on the GPU.
//
// # Overview
//
// A query uploads a point set and an axis-aligned rectangle, runs a WGSL
// compute kernel that classifies every point, and reads back two parallel
// buffers: the candidate points and a per-point sentinel (-1 means inside).
// The result is the compacted list of inside points in their original order.
//
// All GPU work for a worker happens on one goroutine locked to its OS thread.
// Callers on any goroutine submit requests over channels and block until the
// response arrives.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/rectfilter"
//	    _ "github.com/gogpu/rectfilter/gpu" // registers the GPU backend
//	)
//
//	if err := rectfilter.Init(); err != nil {
//	    log.Fatal(err)
//	}
//	defer rectfilter.Dispose()
//
//	hits, err := rectfilter.Compute(points, rectfilter.R(0, 0, 5, 5))
//
// # Handles and the Gateway
//
// Start returns an explicit *Worker handle owned by the caller. The
// package-level Init, Compute and Dispose functions route through a process
// default Gateway keyed by DefaultKey. Init is idempotent, and after Dispose
// Compute returns ErrNotInitialized until Init is called again.
//
// # Errors
//
// Initialization failures (no backend, no adapter, device rejected, kernel
// compile failure) are returned by Start and Init. Protocol misuse and
// mapping failures are returned per call. Device loss terminates the worker,
// and later calls report ErrClosed or ErrNotInitialized.
//
// # Coordinate Semantics
//
// Containment is boundary inclusive: Min.X <= p.X <= Max.X and
// Min.Y <= p.Y <= Max.Y. Rectangles with Min > Max are not reordered and
// select nothing. Use Rect.Canon to normalize user input.
package rectfilter

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)

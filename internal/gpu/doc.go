// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpu implements the rectfilter device context on gogpu/wgpu HAL.
//
// A query goes through four stages, all on the worker's thread:
//
//  1. Dispatch: upload points and the rectangle, run the rect_filter kernel
//     and copy both outputs into MapRead staging buffers (one submit).
//  2. Map: register an async map per staging buffer; each completion is
//     delivered into its own single-slot rendezvous channel.
//  3. Pump: wait on the submission fence and poll pending maps until every
//     rendezvous holds a status.
//  4. Assemble: compact the output points by the sentinel mask.
//
// Build with -tags nogpu to exclude the HAL-backed parts; Assemble and the
// encoding helpers stay available.
package gpu

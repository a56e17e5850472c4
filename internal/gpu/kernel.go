// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"

	"github.com/gogpu/rectfilter"
)

//go:embed shaders/rect_filter.wgsl
var rectFilterShaderWGSL string

// maxWorkgroupsPerDim is the per-dimension dispatch limit the kernel
// linearizes against.
const maxWorkgroupsPerDim = 65535

// compileKernel compiles the rect_filter kernel from WGSL to SPIR-V words.
func compileKernel() ([]uint32, error) {
	spirvBytes, err := naga.Compile(rectFilterShaderWGSL)
	if err != nil {
		return nil, fmt.Errorf("%w: compile rect_filter: %w", rectfilter.ErrKernel, err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("%w: SPIR-V length %d is not a multiple of 4", rectfilter.ErrKernel, len(spirvBytes))
	}

	// Convert bytes to uint32 slice for SPIR-V
	code := make([]uint32, len(spirvBytes)/4)
	for i := range code {
		code[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return code, nil
}

// workgroups returns the dispatch grid for n points: one workgroup per
// point, spilling into Y past maxWorkgroupsPerDim.
func workgroups(n int) (x, y uint32) {
	if n <= 0 {
		return 0, 0
	}
	if n <= maxWorkgroupsPerDim {
		return uint32(n), 1 //nolint:gosec // bounded above
	}
	rows := (n + maxWorkgroupsPerDim - 1) / maxWorkgroupsPerDim
	return maxWorkgroupsPerDim, uint32(rows) //nolint:gosec // rows fits uint32 for any slice length
}

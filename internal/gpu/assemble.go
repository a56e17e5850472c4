// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/rectfilter"
)

// SentinelInside is the sentinel value the kernel writes for points inside
// the rectangle. Any other value means outside.
const SentinelInside int32 = -1

// SentinelSize is the size of one sentinel in bytes.
const SentinelSize = 4

// Assemble compacts the kernel outputs into the filtered point list.
//
// out holds n points (8 bytes each, little-endian x, y) and mask holds n
// int32 sentinels. For every index i in [0, n) whose sentinel equals
// SentinelInside, out[i] is appended, preserving index order. The last
// index is examined like every other one.
//
// Buffers may be longer than required (aligned staging buffers); shorter
// buffers return ErrSizeMismatch.
func Assemble(out, mask []byte, n int) ([]rectfilter.Point, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative point count %d", rectfilter.ErrSizeMismatch, n)
	}
	if len(out) < n*rectfilter.PointSize {
		return nil, fmt.Errorf("%w: output buffer holds %d bytes, need %d",
			rectfilter.ErrSizeMismatch, len(out), n*rectfilter.PointSize)
	}
	if len(mask) < n*SentinelSize {
		return nil, fmt.Errorf("%w: sentinel buffer holds %d bytes, need %d",
			rectfilter.ErrSizeMismatch, len(mask), n*SentinelSize)
	}

	result := make([]rectfilter.Point, 0, n)
	for i := 0; i < n; i++ {
		s := int32(binary.LittleEndian.Uint32(mask[i*SentinelSize:])) //nolint:gosec // bit reinterpretation
		if s != SentinelInside {
			continue
		}
		result = append(result, decodePoint(out[i*rectfilter.PointSize:]))
	}
	return result, nil
}

// EncodePoints packs points into the kernel's input layout.
func EncodePoints(points []rectfilter.Point) []byte {
	buf := make([]byte, len(points)*rectfilter.PointSize)
	for i, p := range points {
		binary.LittleEndian.PutUint32(buf[i*8:], math.Float32bits(p.X))
		binary.LittleEndian.PutUint32(buf[i*8+4:], math.Float32bits(p.Y))
	}
	return buf
}

// ParamsSize is the size of the kernel's uniform block in bytes.
const ParamsSize = 32

// EncodeParams packs r and the point count into the kernel's uniform layout:
// min.x, min.y, max.x, max.y, count, then padding to 32 bytes.
func EncodeParams(r rectfilter.Rect, n int) []byte {
	buf := make([]byte, ParamsSize)
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(r.Min.X))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(r.Min.Y))
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(r.Max.X))
	binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(r.Max.Y))
	binary.LittleEndian.PutUint32(buf[16:], uint32(n)) //nolint:gosec // point count fits uint32
	return buf
}

func decodePoint(b []byte) rectfilter.Point {
	return rectfilter.Point{
		X: math.Float32frombits(binary.LittleEndian.Uint32(b[0:])),
		Y: math.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
	}
}

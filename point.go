// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rectfilter

import "fmt"

// PointSize is the GPU layout size of a Point in bytes (two f32 values).
const PointSize = 8

// RectSize is the encoded size of a Rect in bytes:
// min.x, min.y, max.x, max.y as four consecutive f32 values.
const RectSize = 16

// Point is a 2D point with 32-bit float coordinates.
type Point struct {
	X, Y float32
}

// Pt is a convenience function to create a Point.
func Pt(x, y float32) Point {
	return Point{X: x, Y: y}
}

// String returns a compact representation like "(1, 2)".
func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// Rect is an axis-aligned rectangle given by its Min and Max corners.
//
// Callers are responsible for Min <= Max componentwise. An inverted
// rectangle is not reordered and selects no points.
type Rect struct {
	Min, Max Point
}

// R creates a Rect from minimum and maximum coordinates.
func R(minX, minY, maxX, maxY float32) Rect {
	return Rect{Min: Point{X: minX, Y: minY}, Max: Point{X: maxX, Y: maxY}}
}

// Valid reports whether Min <= Max on both axes.
func (r Rect) Valid() bool {
	return r.Min.X <= r.Max.X && r.Min.Y <= r.Max.Y
}

// Canon returns the rectangle with its corners ordered componentwise.
func (r Rect) Canon() Rect {
	if r.Min.X > r.Max.X {
		r.Min.X, r.Max.X = r.Max.X, r.Min.X
	}
	if r.Min.Y > r.Max.Y {
		r.Min.Y, r.Max.Y = r.Max.Y, r.Min.Y
	}
	return r
}

// Contains reports whether p lies inside r, boundary inclusive.
// This is the same predicate the compute kernel evaluates.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X &&
		p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Bounds returns the smallest Rect containing all points.
// The second result is false when points is empty.
func Bounds(points []Point) (Rect, bool) {
	if len(points) == 0 {
		return Rect{}, false
	}
	r := Rect{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		r.Min.X = min(r.Min.X, p.X)
		r.Min.Y = min(r.Min.Y, p.Y)
		r.Max.X = max(r.Max.X, p.X)
		r.Max.Y = max(r.Max.Y, p.Y)
	}
	return r, true
}

// FilterCPU returns the points of ps inside r in their original order.
//
// It is the reference for GPU results and is used by the CLI's verify mode.
// It is never used as a silent fallback for a missing GPU.
func FilterCPU(ps []Point, r Rect) []Point {
	out := make([]Point, 0, len(ps))
	for _, p := range ps {
		if r.Contains(p) {
			out = append(out, p)
		}
	}
	return out
}

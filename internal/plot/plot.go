// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package plot renders a rectfilter query to an image: the rectangle, every
// input point, and the points selected by the filter.
package plot

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/gogpu/rectfilter"
)

// Default colors.
var (
	Background = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	RectFill   = color.RGBA{R: 40, G: 90, B: 200, A: 48}
	RectStroke = color.RGBA{R: 40, G: 90, B: 200, A: 255}
	PointColor = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	HitColor   = color.RGBA{R: 220, G: 40, B: 40, A: 255}
	LabelColor = color.RGBA{R: 20, G: 20, B: 20, A: 255}
)

// Options controls rendering.
type Options struct {
	Width, Height int

	// View is the world region mapped onto the image. When it is the zero
	// Rect, the bounds of the points and the rectangle are used, padded by
	// 5% on each side.
	View rectfilter.Rect

	// PointRadius is the marker radius in pixels. Defaults to 2.
	PointRadius float32

	// Label draws a "hits / points" caption in the top-left corner.
	Label bool
}

// Render draws points, hits and rect. Hits are drawn over points.
func Render(points, hits []rectfilter.Point, rect rectfilter.Rect, opts Options) (*image.RGBA, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("plot: invalid size %dx%d", opts.Width, opts.Height)
	}
	if opts.PointRadius <= 0 {
		opts.PointRadius = 2
	}
	view := opts.View
	if view == (rectfilter.Rect{}) {
		view = autoView(points, rect)
	}
	tr := newTransform(view, opts.Width, opts.Height)

	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)

	z := vector.NewRasterizer(opts.Width, opts.Height)
	if rect.Valid() {
		x0, y0 := tr.clamp(tr.apply(rect.Min))
		x1, y1 := tr.clamp(tr.apply(rect.Max))
		z.DrawOp = draw.Over
		addBox(z, x0, y1, x1, y0)
		fill(z, img, RectFill)

		z.Reset(opts.Width, opts.Height)
		addOutline(z, x0, y1, x1, y0, 1)
		fill(z, img, RectStroke)
	}

	drawMarkers(z, img, tr, points, opts.PointRadius, PointColor)
	drawMarkers(z, img, tr, hits, opts.PointRadius+1, HitColor)

	if opts.Label {
		drawLabel(img, fmt.Sprintf("%d / %d inside", len(hits), len(points)))
	}
	return img, nil
}

// WritePNG encodes img as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

func autoView(points []rectfilter.Point, rect rectfilter.Rect) rectfilter.Rect {
	view := rect.Canon()
	if b, ok := rectfilter.Bounds(points); ok {
		view.Min.X = min(view.Min.X, b.Min.X)
		view.Min.Y = min(view.Min.Y, b.Min.Y)
		view.Max.X = max(view.Max.X, b.Max.X)
		view.Max.Y = max(view.Max.Y, b.Max.Y)
	}
	w := view.Max.X - view.Min.X
	h := view.Max.Y - view.Min.Y
	if w == 0 {
		w = 1
	}
	if h == 0 {
		h = 1
	}
	padX, padY := w*0.05, h*0.05
	return rectfilter.R(view.Min.X-padX, view.Min.Y-padY, view.Max.X+padX, view.Max.Y+padY)
}

// transform maps world coordinates to pixels, Y up.
type transform struct {
	view   rectfilter.Rect
	sx, sy float32
	width  float32
	height float32
}

func newTransform(view rectfilter.Rect, w, h int) transform {
	dx := view.Max.X - view.Min.X
	dy := view.Max.Y - view.Min.Y
	if dx == 0 {
		dx = 1
	}
	if dy == 0 {
		dy = 1
	}
	return transform{
		view:   view,
		sx:     float32(w) / dx,
		sy:     float32(h) / dy,
		width:  float32(w),
		height: float32(h),
	}
}

func (t transform) apply(p rectfilter.Point) (float32, float32) {
	x := (p.X - t.view.Min.X) * t.sx
	y := t.height - (p.Y-t.view.Min.Y)*t.sy
	return x, y
}

// clamp limits a pixel position to the canvas. The rasterizer does not clip.
func (t transform) clamp(x, y float32) (float32, float32) {
	return min(max(x, 0), t.width), min(max(y, 0), t.height)
}

func addBox(z *vector.Rasterizer, x0, y0, x1, y1 float32) {
	z.MoveTo(x0, y0)
	z.LineTo(x1, y0)
	z.LineTo(x1, y1)
	z.LineTo(x0, y1)
	z.ClosePath()
}

// addOutline adds a frame of width w as two boxes of opposite winding.
func addOutline(z *vector.Rasterizer, x0, y0, x1, y1, w float32) {
	addBox(z, x0-w/2, y0-w/2, x1+w/2, y1+w/2)
	ix0, iy0, ix1, iy1 := x0+w/2, y0+w/2, x1-w/2, y1-w/2
	if ix0 >= ix1 || iy0 >= iy1 {
		return
	}
	z.MoveTo(ix0, iy0)
	z.LineTo(ix0, iy1)
	z.LineTo(ix1, iy1)
	z.LineTo(ix1, iy0)
	z.ClosePath()
}

// addMarker adds an octagon of radius r centred on (cx, cy).
func addMarker(z *vector.Rasterizer, cx, cy, r float32) {
	const sides = 8
	for i := 0; i < sides; i++ {
		a := float64(i) * 2 * math.Pi / sides
		x := cx + r*float32(math.Cos(a))
		y := cy + r*float32(math.Sin(a))
		if i == 0 {
			z.MoveTo(x, y)
		} else {
			z.LineTo(x, y)
		}
	}
	z.ClosePath()
}

func drawMarkers(z *vector.Rasterizer, img *image.RGBA, tr transform, ps []rectfilter.Point, r float32, c color.Color) {
	if len(ps) == 0 {
		return
	}
	b := img.Bounds()
	z.Reset(b.Dx(), b.Dy())
	z.DrawOp = draw.Over
	for _, p := range ps {
		x, y := tr.apply(p)
		if x < r || y < r || x > float32(b.Dx())-r || y > float32(b.Dy())-r {
			continue
		}
		addMarker(z, x, y, r)
	}
	fill(z, img, c)
}

func fill(z *vector.Rasterizer, img *image.RGBA, c color.Color) {
	z.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{})
}

func drawLabel(img *image.RGBA, text string) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(LabelColor),
		Face: face,
		Dot:  fixed.P(4, 4+face.Ascent),
	}
	d.DrawString(text)
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rectfilter_test

import (
	"encoding/binary"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/rectfilter"
	"github.com/gogpu/rectfilter/internal/gpu"
)

// kernelBackend is a Backend whose device contexts evaluate the
// rect_filter kernel on the CPU: every point is copied to the output and
// a -1/0 sentinel is written per index. Results go through gpu.Assemble,
// the same assembly the wgpu backend uses.
type kernelBackend struct {
	openErr   error
	openPanic bool

	// entered, if set, receives once Open has been called.
	entered chan struct{}
	// gate, if set, holds Open until it is closed.
	gate chan struct{}

	// loseAt makes the Nth dispatch (1-based) report device loss.
	loseAt int32
	// failMapAt makes the Nth dispatch (1-based) report a mapping failure.
	failMapAt int32
	// panicDispatchAt and panicWaitAt make the Nth dispatch (1-based) panic
	// in Dispatch or in the readback Wait.
	panicDispatchAt int32
	panicWaitAt     int32

	dispatches atomic.Int32
	inFlight   atomic.Int32
	maxFlight  atomic.Int32

	mu     sync.Mutex
	opened int
	closed int
}

func (b *kernelBackend) Name() string { return "kernel-fake" }

func (b *kernelBackend) Open() (rectfilter.DeviceContext, error) {
	if b.entered != nil {
		b.entered <- struct{}{}
	}
	if b.gate != nil {
		<-b.gate
	}
	if b.openPanic {
		panic("adapter exploded")
	}
	if b.openErr != nil {
		return nil, b.openErr
	}
	b.mu.Lock()
	b.opened++
	b.mu.Unlock()
	return &kernelContext{b: b}, nil
}

func (b *kernelBackend) counts() (opened, closed int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.opened, b.closed
}

type kernelContext struct {
	b      *kernelBackend
	closed bool
}

func (c *kernelContext) Dispatch(points []rectfilter.Point, rect rectfilter.Rect) (rectfilter.Readback, error) {
	if c.closed {
		return nil, rectfilter.ErrClosed
	}
	n := c.b.dispatches.Add(1)
	if n == c.b.panicDispatchAt {
		panic("command encoder exploded")
	}
	flight := c.b.inFlight.Add(1)
	for {
		m := c.b.maxFlight.Load()
		if flight <= m || c.b.maxFlight.CompareAndSwap(m, flight) {
			break
		}
	}

	out := gpu.EncodePoints(points)
	mask := make([]byte, len(points)*gpu.SentinelSize)
	for i, p := range points {
		s := int32(0)
		if p.X >= rect.Min.X && p.X <= rect.Max.X && p.Y >= rect.Min.Y && p.Y <= rect.Max.Y {
			s = gpu.SentinelInside
		}
		binary.LittleEndian.PutUint32(mask[i*gpu.SentinelSize:], uint32(s)) //nolint:gosec // bit reinterpretation
	}

	rb := &kernelReadback{b: c.b, out: out, mask: mask, n: len(points), panics: n == c.b.panicWaitAt}
	switch n {
	case c.b.loseAt:
		rb.err = fmt.Errorf("%w: fence wait failed", rectfilter.ErrDeviceLost)
	case c.b.failMapAt:
		rb.err = fmt.Errorf("%w: output map: Unknown", rectfilter.ErrMappingFailed)
	}
	return rb, nil
}

func (c *kernelContext) Close() {
	c.closed = true
	c.b.mu.Lock()
	c.b.closed++
	c.b.mu.Unlock()
}

type kernelReadback struct {
	b         *kernelBackend
	out, mask []byte
	n         int
	err       error
	panics    bool
}

func (r *kernelReadback) Wait() ([]rectfilter.Point, error) {
	defer r.b.inFlight.Add(-1)
	if r.panics {
		panic("staging map exploded")
	}
	if r.err != nil {
		return nil, r.err
	}
	return gpu.Assemble(r.out, r.mask, r.n)
}

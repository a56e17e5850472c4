// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/rectfilter"
)

// emptyReadback is the result of dispatching zero points.
type emptyReadback struct{}

func (emptyReadback) Wait() ([]rectfilter.Point, error) { return []rectfilter.Point{}, nil }

// readback waits for one submission and reads both staging buffers back.
//
// Each staging buffer has a single-slot rendezvous channel that its map
// callback delivers into. Wait drives completion itself (fence wait, then
// PollMapAsync) on the calling goroutine, so no other thread is involved.
type readback struct {
	ctx *Context
	res *dispatchResources

	out  *stagingBuffer
	mask *stagingBuffer

	outReady  chan MapStatus
	maskReady chan MapStatus

	n        int
	consumed bool
}

var _ rectfilter.Readback = (*readback)(nil)

func newReadback(ctx *Context, res *dispatchResources, out, mask *stagingBuffer, n int) *readback {
	return &readback{
		ctx:       ctx,
		res:       res,
		out:       out,
		mask:      mask,
		outReady:  make(chan MapStatus, 1),
		maskReady: make(chan MapStatus, 1),
		n:         n,
	}
}

// deliver returns a map callback that stores its status in slot.
func deliver(slot chan<- MapStatus) func(MapStatus) {
	return func(s MapStatus) {
		select {
		case slot <- s:
		default:
			slogger().Warn("gpu: duplicate map completion dropped", "status", s.String())
		}
	}
}

// Wait blocks until both staging buffers are mapped and returns the
// assembled result. Per-request resources are released before it returns.
//
// Errors wrapping rectfilter.ErrDeviceLost mean the device is unusable.
// Errors wrapping rectfilter.ErrMappingFailed affect only this request.
func (r *readback) Wait() ([]rectfilter.Point, error) {
	if r.consumed {
		return nil, fmt.Errorf("%w: readback already consumed", rectfilter.ErrMappingFailed)
	}
	r.consumed = true
	defer r.res.cleanup()

	outSize := uint64(r.n) * rectfilter.PointSize
	maskSize := uint64(r.n) * SentinelSize
	if err := r.out.MapAsync(0, outSize, deliver(r.outReady)); err != nil {
		return nil, fmt.Errorf("%w: map output: %w", rectfilter.ErrMappingFailed, err)
	}
	if err := r.mask.MapAsync(0, maskSize, deliver(r.maskReady)); err != nil {
		r.out.AbortMapAsync(MapUnmapped)
		return nil, fmt.Errorf("%w: map sentinels: %w", rectfilter.ErrMappingFailed, err)
	}

	if err := r.pump(); err != nil {
		return nil, err
	}

	// Fixed order: output first, then sentinels.
	if err := receive(r.outReady, "output"); err != nil {
		return nil, err
	}
	if err := receive(r.maskReady, "sentinels"); err != nil {
		return nil, err
	}

	outData, err := r.out.GetMappedRange(0, outSize)
	if err != nil {
		return nil, fmt.Errorf("%w: output range: %w", rectfilter.ErrMappingFailed, err)
	}
	maskData, err := r.mask.GetMappedRange(0, maskSize)
	if err != nil {
		return nil, fmt.Errorf("%w: sentinel range: %w", rectfilter.ErrMappingFailed, err)
	}
	points, err := Assemble(outData, maskData, r.n)
	_ = r.out.Unmap()
	_ = r.mask.Unmap()
	if err != nil {
		return nil, err
	}
	slogger().Debug("gpu: rect_filter readback complete", "points", r.n, "inside", len(points))
	return points, nil
}

// pump waits for the submission fence in PollInterval slices, then
// completes the pending maps.
func (r *readback) pump() error {
	for attempt := 1; ; attempt++ {
		signaled, err := r.ctx.device.Wait(r.res.fence, 1, r.ctx.pollInterval)
		if err != nil {
			r.out.AbortMapAsync(MapDeviceLost)
			r.mask.AbortMapAsync(MapDeviceLost)
			return fmt.Errorf("%w: wait for GPU: %w", rectfilter.ErrDeviceLost, err)
		}
		if signaled {
			break
		}
		slogger().Debug("gpu: readback pending", "attempt", attempt)
	}
	r.out.PollMapAsync()
	r.mask.PollMapAsync()
	return nil
}

// receive takes the status delivered for one staging buffer.
func receive(slot <-chan MapStatus, name string) error {
	var status MapStatus
	select {
	case status = <-slot:
	default:
		return fmt.Errorf("%w: %s map completion not delivered", rectfilter.ErrMappingFailed, name)
	}
	switch status {
	case MapSuccess:
		return nil
	case MapDeviceLost:
		return fmt.Errorf("%w: %s map", rectfilter.ErrDeviceLost, name)
	default:
		return fmt.Errorf("%w: %s map: %s", rectfilter.ErrMappingFailed, name, status)
	}
}

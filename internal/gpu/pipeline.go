// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rectfilter"
)

// dispatchResources tracks per-request GPU resources for cleanup.
type dispatchResources struct {
	device hal.Device

	input   hal.Buffer
	params  hal.Buffer
	output  hal.Buffer
	mask    hal.Buffer
	staging []*stagingBuffer

	bindGroup hal.BindGroup
	cmdBuf    hal.CommandBuffer
	fence     hal.Fence
}

// cleanup destroys all tracked per-request resources. Safe to call more
// than once.
func (r *dispatchResources) cleanup() {
	if r.fence != nil {
		r.device.DestroyFence(r.fence)
		r.fence = nil
	}
	if r.cmdBuf != nil {
		r.device.FreeCommandBuffer(r.cmdBuf)
		r.cmdBuf = nil
	}
	if r.bindGroup != nil {
		r.device.DestroyBindGroup(r.bindGroup)
		r.bindGroup = nil
	}
	for _, b := range r.staging {
		b.Destroy()
	}
	r.staging = nil
	for _, b := range []*hal.Buffer{&r.input, &r.params, &r.output, &r.mask} {
		if *b != nil {
			r.device.DestroyBuffer(*b)
			*b = nil
		}
	}
}

// Dispatch uploads points and rect, runs the kernel and copies both outputs
// into staging buffers, all in one submission. The returned Readback must
// be waited on by the same goroutine.
//
// An empty point set yields a Readback with an empty result and touches no
// GPU resources.
func (c *Context) Dispatch(points []rectfilter.Point, rect rectfilter.Rect) (rectfilter.Readback, error) {
	if c.closed || c.device == nil {
		return nil, rectfilter.ErrClosed
	}
	n := len(points)
	if n == 0 {
		return emptyReadback{}, nil
	}
	if limit := c.MaxPoints(); n > limit {
		return nil, fmt.Errorf("%w: %d points exceed the storage binding limit of %d", rectfilter.ErrSizeMismatch, n, limit)
	}

	input := EncodePoints(points)
	params := EncodeParams(rect, n)
	outSize := uint64(n) * rectfilter.PointSize
	maskSize := uint64(n) * SentinelSize
	if uint64(len(input)) != outSize {
		return nil, fmt.Errorf("%w: input holds %d bytes, output %d", rectfilter.ErrSizeMismatch, len(input), outSize)
	}

	res := &dispatchResources{device: c.device}
	rb, err := c.dispatch(res, input, params, outSize, maskSize, n)
	if err != nil {
		res.cleanup()
		return nil, err
	}
	return rb, nil
}

func (c *Context) dispatch(res *dispatchResources, input, params []byte, outSize, maskSize uint64, n int) (*readback, error) {
	var err error
	if res.input, err = c.createBuffer("rect_filter_input", uint64(len(input)),
		gputypes.BufferUsageStorage|gputypes.BufferUsageCopyDst); err != nil {
		return nil, err
	}
	if res.params, err = c.createBuffer("rect_filter_params", ParamsSize,
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst); err != nil {
		return nil, err
	}
	if res.output, err = c.createBuffer("rect_filter_output", outSize,
		gputypes.BufferUsageStorage|gputypes.BufferUsageCopySrc); err != nil {
		return nil, err
	}
	if res.mask, err = c.createBuffer("rect_filter_sentinels", maskSize,
		gputypes.BufferUsageStorage|gputypes.BufferUsageCopySrc); err != nil {
		return nil, err
	}

	outStaging, err := newStagingBuffer(c.device, c.queue, outSize, "rect_filter_output_staging")
	if err != nil {
		return nil, fmt.Errorf("create output staging buffer: %w", err)
	}
	res.staging = append(res.staging, outStaging)
	maskStaging, err := newStagingBuffer(c.device, c.queue, maskSize, "rect_filter_sentinel_staging")
	if err != nil {
		return nil, fmt.Errorf("create sentinel staging buffer: %w", err)
	}
	res.staging = append(res.staging, maskStaging)

	c.queue.WriteBuffer(res.input, 0, input)
	c.queue.WriteBuffer(res.params, 0, params)

	res.bindGroup, err = c.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label: "rect_filter_bind", Layout: c.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: res.input.NativeHandle(), Offset: 0, Size: uint64(len(input))}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: res.params.NativeHandle(), Offset: 0, Size: ParamsSize}},
			{Binding: 2, Resource: gputypes.BufferBinding{Buffer: res.output.NativeHandle(), Offset: 0, Size: outSize}},
			{Binding: 3, Resource: gputypes.BufferBinding{Buffer: res.mask.NativeHandle(), Offset: 0, Size: maskSize}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create bind group: %w", err)
	}

	if err := c.encode(res, outStaging.raw(), maskStaging.raw(), outSize, maskSize, n); err != nil {
		return nil, err
	}

	res.fence, err = c.device.CreateFence()
	if err != nil {
		return nil, fmt.Errorf("create fence: %w", err)
	}
	if err := c.queue.Submit([]hal.CommandBuffer{res.cmdBuf}, res.fence, 1); err != nil {
		return nil, fmt.Errorf("%w: submit: %w", rectfilter.ErrDeviceLost, err)
	}
	slogger().Debug("gpu: rect_filter submitted", "points", n)

	return newReadback(c, res, outStaging, maskStaging, n), nil
}

func (c *Context) createBuffer(label string, size uint64, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := c.device.CreateBuffer(&hal.BufferDescriptor{Label: label, Size: size, Usage: usage})
	if err != nil {
		return nil, fmt.Errorf("create %s buffer: %w", label, err)
	}
	return buf, nil
}

// encode records the compute pass and both staging copies into one
// command buffer.
func (c *Context) encode(res *dispatchResources, outStaging, maskStaging hal.Buffer, outSize, maskSize uint64, n int) error {
	encoder, err := c.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "rect_filter_encoder"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("rect_filter"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	x, y := workgroups(n)
	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "rect_filter_pass"})
	pass.SetPipeline(c.pipeline)
	pass.SetBindGroup(0, res.bindGroup, nil)
	pass.Dispatch(x, y, 1)
	pass.End()

	encoder.CopyBufferToBuffer(res.output, outStaging, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: outSize},
	})
	encoder.CopyBufferToBuffer(res.mask, maskStaging, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: maskSize},
	})

	res.cmdBuf, err = encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	return nil
}

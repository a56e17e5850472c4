// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

// Package gpu registers the wgpu compute backend for rectfilter.
//
// Import this package to let rectfilter.Init and rectfilter.Start open a
// GPU device through gogpu/wgpu HAL (Vulkan by default). The kernel is
// compiled from WGSL with naga when a worker starts.
//
// Usage:
//
//	import _ "github.com/gogpu/rectfilter/gpu" // enable the GPU backend
//
// Backend settings are changed with Configure and apply to workers started
// afterwards:
//
//	gpu.Configure(gpu.WithPollInterval(10 * time.Millisecond))
package gpu

import (
	"runtime"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/rectfilter"
	gpuimpl "github.com/gogpu/rectfilter/internal/gpu"
)

var backend = gpuimpl.NewBackend(gpuimpl.DefaultConfig())

func init() {
	if err := rectfilter.RegisterBackend(backend); err != nil {
		rectfilter.Logger().Warn("GPU backend not registered", "err", err)
	}
}

// Option adjusts the backend configuration.
type Option func(*gpuimpl.Config)

// WithHALBackend selects the HAL backend (default Vulkan).
func WithHALBackend(b gputypes.Backend) Option {
	return func(c *gpuimpl.Config) { c.HALBackend = b }
}

// WithPollInterval sets the fence wait slice used while a readback is
// pumped. Non-positive values restore the default.
func WithPollInterval(d time.Duration) Option {
	return func(c *gpuimpl.Config) { c.PollInterval = d }
}

// WithDeviceProvider makes workers share the provider's device instead of
// creating their own. The provider must also implement HalDevice() any and
// HalQueue() any. Pass nil to go back to a private device.
func WithDeviceProvider(p gpucontext.DeviceProvider) Option {
	return func(c *gpuimpl.Config) { c.DeviceProvider = p }
}

// Configure applies opts to the registered backend.
func Configure(opts ...Option) {
	cfg := backend.Config()
	for _, opt := range opts {
		opt(&cfg)
	}
	backend.SetConfig(cfg)
}

// Backend returns the registered wgpu backend, for use with
// rectfilter.WithBackend or a dedicated rectfilter.Gateway.
func Backend() rectfilter.Backend { return backend }

// Run acquires a device, filters points by rect once and releases the
// device. It is meant for single queries; long-lived callers should use
// rectfilter.Start or rectfilter.Init instead.
// The calling goroutine is locked to its OS thread for the duration.
func Run(points []rectfilter.Point, rect rectfilter.Rect, opts ...Option) ([]rectfilter.Point, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	cfg := backend.Config()
	for _, opt := range opts {
		opt(&cfg)
	}
	ctx, err := gpuimpl.Acquire(cfg)
	if err != nil {
		return nil, err
	}
	defer ctx.Close()

	rb, err := ctx.Dispatch(points, rect)
	if err != nil {
		return nil, err
	}
	return rb.Wait()
}

// AdapterName acquires a device with the current configuration, reports
// the adapter it was opened on and releases it.
func AdapterName() (string, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	ctx, err := gpuimpl.Acquire(backend.Config())
	if err != nil {
		return "", err
	}
	defer ctx.Close()
	return ctx.AdapterName(), nil
}

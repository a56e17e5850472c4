// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"fmt"
	"math"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rectfilter"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// DefaultPollInterval is the fence wait slice used while pumping readbacks.
const DefaultPollInterval = 100 * time.Millisecond

// Config configures device acquisition.
type Config struct {
	// HALBackend selects the HAL backend. Defaults to Vulkan.
	HALBackend gputypes.Backend

	// PollInterval bounds each fence wait while a readback is pumped.
	PollInterval time.Duration

	// DeviceProvider, when set, supplies a shared device instead of
	// creating one. It must also implement HalDevice() any and HalQueue() any
	// returning hal.Device and hal.Queue. A shared device is not destroyed
	// by Close.
	DeviceProvider gpucontext.DeviceProvider
}

// DefaultConfig returns the configuration used by the registered backend.
func DefaultConfig() Config {
	return Config{
		HALBackend:   gputypes.BackendVulkan,
		PollInterval: DefaultPollInterval,
	}
}

// Context is an acquired device with the compiled rect_filter pipeline.
//
// A Context is not safe for concurrent use; it belongs to the worker that
// acquired it.
type Context struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline

	// limits are the limits the device was opened with. Shared devices
	// are assumed to use the defaults.
	limits gputypes.Limits

	adapterName  string
	external     bool // shared device; don't destroy on Close
	pollInterval time.Duration
	closed       bool
}

var _ rectfilter.DeviceContext = (*Context)(nil)

// Acquire opens a device (or adopts the configured shared one) and builds
// the rect_filter pipeline.
//
// Errors wrap rectfilter.ErrNoAdapter, rectfilter.ErrDeviceRequest or
// rectfilter.ErrKernel.
func Acquire(cfg Config) (*Context, error) {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	c := &Context{pollInterval: cfg.PollInterval, limits: gputypes.DefaultLimits()}

	if cfg.DeviceProvider != nil {
		if err := c.adopt(cfg.DeviceProvider); err != nil {
			return nil, err
		}
	} else if err := c.open(cfg.HALBackend); err != nil {
		c.Close()
		return nil, err
	}

	if err := c.createPipeline(); err != nil {
		c.Close()
		return nil, err
	}
	slogger().Info("gpu: device context acquired",
		"adapter", c.adapterName, "shared", c.external)
	return c, nil
}

// NewContext wraps an already opened device and queue. The caller keeps
// ownership of both; Close releases only the pipeline objects.
func NewContext(device hal.Device, queue hal.Queue, pollInterval time.Duration) (*Context, error) {
	if device == nil || queue == nil {
		return nil, fmt.Errorf("%w: nil device or queue", rectfilter.ErrDeviceRequest)
	}
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	c := &Context{
		device:       device,
		queue:        queue,
		external:     true,
		adapterName:  "external",
		pollInterval: pollInterval,
		limits:       gputypes.DefaultLimits(),
	}
	if err := c.createPipeline(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// MaxPoints returns the largest point count a single dispatch accepts,
// bounded by the device's storage buffer binding size.
func (c *Context) MaxPoints() int {
	n := c.limits.MaxStorageBufferBindingSize / rectfilter.PointSize
	if n > math.MaxUint32 {
		n = math.MaxUint32
	}
	return int(n)
}

// AdapterName returns the name of the adapter the device was opened on.
func (c *Context) AdapterName() string { return c.adapterName }

// Shared reports whether the device came from a DeviceProvider.
func (c *Context) Shared() bool { return c.external }

func (c *Context) adopt(provider gpucontext.DeviceProvider) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return fmt.Errorf("%w: provider does not expose HAL types", rectfilter.ErrDeviceRequest)
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("%w: provider HalDevice is not hal.Device", rectfilter.ErrDeviceRequest)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("%w: provider HalQueue is not hal.Queue", rectfilter.ErrDeviceRequest)
	}
	c.device = device
	c.queue = queue
	c.external = true
	c.adapterName = "shared"
	return nil
}

func (c *Context) open(backendType gputypes.Backend) error {
	backend, ok := hal.GetBackend(backendType)
	if !ok {
		return fmt.Errorf("%w: backend %v not available", rectfilter.ErrNoAdapter, backendType)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("%w: create instance: %w", rectfilter.ErrNoAdapter, err)
	}
	c.instance = instance

	selected := selectAdapter(instance.EnumerateAdapters(nil))
	if selected == nil {
		return fmt.Errorf("%w: no GPU adapters found", rectfilter.ErrNoAdapter)
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), c.limits)
	if err != nil {
		return fmt.Errorf("%w: open device on %s: %w", rectfilter.ErrDeviceRequest, selected.Info.Name, err)
	}
	c.device = openDev.Device
	c.queue = openDev.Queue
	c.adapterName = selected.Info.Name
	return nil
}

// selectAdapter prefers a discrete GPU, then an integrated one, then
// whatever comes first.
func selectAdapter(adapters []hal.ExposedAdapter) *hal.ExposedAdapter {
	if len(adapters) == 0 {
		return nil
	}
	for _, want := range []gputypes.DeviceType{gputypes.DeviceTypeDiscreteGPU, gputypes.DeviceTypeIntegratedGPU} {
		for i := range adapters {
			if adapters[i].Info.DeviceType == want {
				return &adapters[i]
			}
		}
	}
	return &adapters[0]
}

func (c *Context) createPipeline() error {
	code, err := compileKernel()
	if err != nil {
		return err
	}
	shader, err := c.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "rect_filter",
		Source: hal.ShaderSource{SPIRV: code},
	})
	if err != nil {
		return fmt.Errorf("%w: create shader module: %w", rectfilter.ErrKernel, err)
	}
	c.shader = shader

	bindLayout, err := c.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "rect_filter_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform, MinBindingSize: ParamsSize}},
			{Binding: 2, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
			{Binding: 3, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: create bind group layout: %w", rectfilter.ErrKernel, err)
	}
	c.bindLayout = bindLayout

	pipeLayout, err := c.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "rect_filter_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{c.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("%w: create pipeline layout: %w", rectfilter.ErrKernel, err)
	}
	c.pipeLayout = pipeLayout

	pipeline, err := c.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label: "rect_filter_pipeline", Layout: c.pipeLayout,
		Compute: hal.ComputeState{Module: c.shader, EntryPoint: "main"},
	})
	if err != nil {
		return fmt.Errorf("%w: create compute pipeline: %w", rectfilter.ErrKernel, err)
	}
	c.pipeline = pipeline
	return nil
}

func (c *Context) destroyPipeline() {
	if c.device == nil {
		return
	}
	if c.pipeline != nil {
		c.device.DestroyComputePipeline(c.pipeline)
		c.pipeline = nil
	}
	if c.pipeLayout != nil {
		c.device.DestroyPipelineLayout(c.pipeLayout)
		c.pipeLayout = nil
	}
	if c.bindLayout != nil {
		c.device.DestroyBindGroupLayout(c.bindLayout)
		c.bindLayout = nil
	}
	if c.shader != nil {
		c.device.DestroyShaderModule(c.shader)
		c.shader = nil
	}
}

// Close releases the pipeline and, unless shared, the device and instance.
// Close is idempotent.
func (c *Context) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.destroyPipeline()
	if !c.external {
		if c.device != nil {
			c.device.Destroy()
		}
		if c.instance != nil {
			c.instance.Destroy()
		}
	}
	c.device = nil
	c.queue = nil
	c.instance = nil
	slogger().Debug("gpu: device context released", "adapter", c.adapterName)
}

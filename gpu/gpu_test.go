// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"testing"
	"time"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/rectfilter"
	gpuimpl "github.com/gogpu/rectfilter/internal/gpu"
)

func TestBackendRegistered(t *testing.T) {
	if rectfilter.DefaultBackend() != Backend() {
		t.Fatal("importing gpu did not register the wgpu backend")
	}
	if name := Backend().Name(); name != gpuimpl.BackendName {
		t.Errorf("Name = %q, want %q", name, gpuimpl.BackendName)
	}
}

func TestConfigure(t *testing.T) {
	orig := backend.Config()
	t.Cleanup(func() { backend.SetConfig(orig) })

	Configure(WithPollInterval(7*time.Millisecond), WithHALBackend(gputypes.BackendVulkan))
	cfg := backend.Config()
	if cfg.PollInterval != 7*time.Millisecond {
		t.Errorf("PollInterval = %v, want 7ms", cfg.PollInterval)
	}
	if cfg.HALBackend != gputypes.BackendVulkan {
		t.Errorf("HALBackend = %v, want Vulkan", cfg.HALBackend)
	}

	Configure(WithDeviceProvider(nil))
	if backend.Config().DeviceProvider != nil {
		t.Error("WithDeviceProvider(nil) did not clear the provider")
	}
	// Unrelated settings survive later calls.
	if backend.Config().PollInterval != 7*time.Millisecond {
		t.Error("Configure reset PollInterval")
	}
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"log/slog"
	"sync"

	"github.com/gogpu/rectfilter"
)

// BackendName is the identifier of the wgpu backend.
const BackendName = "wgpu"

// Backend opens wgpu device contexts for rectfilter workers.
//
// The configuration is read on every Open, so changes made with SetConfig
// apply to workers started afterwards.
type Backend struct {
	mu  sync.RWMutex
	cfg Config
}

var _ rectfilter.Backend = (*Backend)(nil)

// NewBackend creates a backend with cfg.
func NewBackend(cfg Config) *Backend {
	return &Backend{cfg: cfg}
}

// Name returns the backend identifier.
func (b *Backend) Name() string {
	return BackendName
}

// Open acquires a device context with the current configuration.
func (b *Backend) Open() (rectfilter.DeviceContext, error) {
	ctx, err := Acquire(b.Config())
	if err != nil {
		slogger().Warn("gpu: device acquisition failed", "err", err)
		return nil, err
	}
	return ctx, nil
}

// Config returns a copy of the current configuration.
func (b *Backend) Config() Config {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cfg
}

// SetConfig replaces the configuration.
func (b *Backend) SetConfig(cfg Config) {
	b.mu.Lock()
	b.cfg = cfg
	b.mu.Unlock()
}

// SetLogger sets the logger for the internal/gpu package.
// Called by rectfilter.SetLogger to propagate the logger.
func (b *Backend) SetLogger(l *slog.Logger) {
	setLogger(l)
}

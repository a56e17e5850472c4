// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rectfilter

import (
	"errors"
	"sync"
)

// Backend opens device contexts for compute workers.
//
// Implementations are provided by backend packages (e.g., rectfilter/gpu).
// Users opt in via blank import:
//
//	import _ "github.com/gogpu/rectfilter/gpu" // registers the GPU backend
type Backend interface {
	// Name returns the backend name (e.g., "wgpu").
	Name() string

	// Open acquires a device context. It is called exactly once per worker,
	// on the worker's locked OS thread. Failure is an initialization error.
	Open() (DeviceContext, error)
}

// DeviceContext owns a GPU device, its queue and the compiled kernel.
//
// A DeviceContext is used by exactly one goroutine: the worker that opened it.
type DeviceContext interface {
	// Dispatch uploads points and rect, runs the kernel and schedules the
	// copy of both output buffers into host-readable staging buffers.
	Dispatch(points []Point, rect Rect) (Readback, error)

	// Close releases the device context.
	Close()
}

// Readback is a dispatched query whose results are not yet host-readable.
type Readback interface {
	// Wait blocks until both staging buffers are readable and returns the
	// assembled result. Errors wrapping ErrDeviceLost are fatal to the worker.
	Wait() ([]Point, error)
}

var (
	backendMu sync.RWMutex
	backend   Backend
)

// RegisterBackend registers the backend used by workers started without
// WithBackend.
//
// Only one backend can be registered. Subsequent calls replace the previous
// one; workers already running keep the device context they opened.
//
// Typical usage via blank import in backend packages:
//
//	func init() {
//	    rectfilter.RegisterBackend(NewBackend())
//	}
func RegisterBackend(b Backend) error {
	if b == nil {
		return errors.New("rectfilter: backend must not be nil")
	}
	propagateLogger(b, Logger())
	backendMu.Lock()
	backend = b
	backendMu.Unlock()
	return nil
}

// DefaultBackend returns the currently registered backend, or nil if none.
func DefaultBackend() Backend {
	backendMu.RLock()
	b := backend
	backendMu.RUnlock()
	return b
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rectfilter

import "errors"

// Initialization errors. A worker that fails with one of these never starts.
var (
	// ErrNoBackend is returned when no Backend is configured or registered.
	// Import github.com/gogpu/rectfilter/gpu to register the GPU backend.
	ErrNoBackend = errors.New("rectfilter: no backend registered")

	// ErrNoAdapter is returned when no GPU adapter is available.
	ErrNoAdapter = errors.New("rectfilter: no GPU adapter available")

	// ErrDeviceRequest is returned when the adapter rejects device creation.
	ErrDeviceRequest = errors.New("rectfilter: device request rejected")

	// ErrKernel is returned when the compute kernel fails to compile or link.
	ErrKernel = errors.New("rectfilter: compute kernel unavailable")
)

// Protocol and runtime errors.
var (
	// ErrNotInitialized is returned when a key has no live worker, either
	// because Init was never called or because the worker was disposed.
	ErrNotInitialized = errors.New("rectfilter: compute worker not initialized")

	// ErrClosed is returned when a Worker handle is used after it terminated.
	ErrClosed = errors.New("rectfilter: compute worker closed")

	// ErrWorkerGone is returned when the worker goroutine stopped while a
	// request was in flight.
	ErrWorkerGone = errors.New("rectfilter: compute worker gone")

	// ErrMappingFailed is returned when a staging buffer could not be mapped
	// for reading. The worker stays usable.
	ErrMappingFailed = errors.New("rectfilter: readback mapping failed")

	// ErrDeviceLost is returned when the GPU device is lost mid-operation.
	// The worker terminates after reporting it.
	ErrDeviceLost = errors.New("rectfilter: GPU device lost")

	// ErrSizeMismatch reports inconsistent buffer sizes between pipeline
	// stages. It indicates a programming error, not a runtime condition.
	ErrSizeMismatch = errors.New("rectfilter: buffer size mismatch")

	// ErrUnknownRequest is returned for a Request with an unknown Kind.
	ErrUnknownRequest = errors.New("rectfilter: unknown request kind")
)

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

var (
	// ErrStagingDestroyed is returned by operations on a destroyed staging buffer.
	ErrStagingDestroyed = errors.New("gpu: staging buffer destroyed")

	// ErrNilDevice is returned when a staging buffer is created without a device.
	ErrNilDevice = errors.New("gpu: nil device")

	// ErrStagingSize is returned for a zero-sized staging buffer.
	ErrStagingSize = errors.New("gpu: staging buffer size must be positive")

	// ErrMapBusy is returned when a map is requested while one is pending
	// or the buffer is still mapped.
	ErrMapBusy = errors.New("gpu: staging buffer busy")

	// ErrNotMapped is returned when reading a buffer that holds no host copy.
	ErrNotMapped = errors.New("gpu: staging buffer not mapped")

	// ErrMapRange is returned for an out-of-bounds or misaligned range.
	ErrMapRange = errors.New("gpu: map range invalid")

	// ErrNilCallback is returned when MapAsync gets no callback.
	ErrNilCallback = errors.New("gpu: nil map callback")
)

// MapStatus is the outcome delivered to a map callback.
type MapStatus int

const (
	MapSuccess     MapStatus = iota // host copy is readable
	MapRangeError                   // rejected by MapAsync validation
	MapBusy                         // another map was pending or the buffer was mapped
	MapReadFailed                   // the queue could not read the buffer back
	MapDeviceLost                   // the submission never completed
	MapUnmapped                     // cancelled by Unmap or AbortMapAsync
	MapDestroyed                    // cancelled by Destroy
)

var mapStatusNames = [...]string{
	MapSuccess:    "Success",
	MapRangeError: "RangeError",
	MapBusy:       "Busy",
	MapReadFailed: "ReadFailed",
	MapDeviceLost: "DeviceLost",
	MapUnmapped:   "Unmapped",
	MapDestroyed:  "Destroyed",
}

func (s MapStatus) String() string {
	if s >= 0 && int(s) < len(mapStatusNames) {
		return mapStatusNames[s]
	}
	return fmt.Sprintf("MapStatus(%d)", int(s))
}

type mapState uint8

const (
	stateIdle mapState = iota
	statePending
	stateMapped
)

// mapAlignment is the WebGPU alignment for map offsets and sizes.
const mapAlignment = 8

// stagingBuffer is a MapRead|CopyDst buffer that receives one kernel output
// and hands it to the host.
//
// MapAsync arms a read of [offset, offset+size). Once the submission that
// copied into the buffer has signaled its fence, PollMapAsync reads the range
// through the queue and fires the callback. Callbacks run on the caller's
// goroutine after the lock is released, exactly once per armed map.
type stagingBuffer struct {
	mu sync.Mutex

	buf    hal.Buffer
	device hal.Device
	queue  hal.Queue
	label  string
	size   uint64

	state  mapState
	offset uint64
	length uint64
	data   []byte
	notify func(MapStatus)

	destroyed bool
}

// newStagingBuffer creates a staging buffer of size bytes, rounded up to the
// 4-byte copy alignment.
func newStagingBuffer(device hal.Device, queue hal.Queue, size uint64, label string) (*stagingBuffer, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	if size == 0 {
		return nil, fmt.Errorf("%w: %s", ErrStagingSize, label)
	}
	size = (size + 3) &^ 3

	buf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create %s: %w", label, err)
	}
	return &stagingBuffer{buf: buf, device: device, queue: queue, label: label, size: size}, nil
}

// raw returns the HAL buffer for use as a copy destination, or nil once
// destroyed.
func (b *stagingBuffer) raw() hal.Buffer {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf
}

// MapAsync arms a read of size bytes at offset. A rejected request still
// fires callback once, with the reason, before MapAsync returns.
func (b *stagingBuffer) MapAsync(offset, size uint64, callback func(MapStatus)) error {
	if callback == nil {
		return ErrNilCallback
	}
	b.mu.Lock()
	status, err := b.arm(offset, size, callback)
	b.mu.Unlock()
	if err != nil {
		callback(status)
	}
	return err
}

// arm validates the range and records the pending map. Callers hold mu.
func (b *stagingBuffer) arm(offset, size uint64, callback func(MapStatus)) (MapStatus, error) {
	switch {
	case b.destroyed:
		return MapDestroyed, ErrStagingDestroyed
	case b.state != stateIdle:
		return MapBusy, fmt.Errorf("%w: %s", ErrMapBusy, b.label)
	case offset > b.size || size > b.size-offset:
		return MapRangeError, fmt.Errorf("%w: [%d, %d) exceeds %d bytes", ErrMapRange, offset, offset+size, b.size)
	case offset%mapAlignment != 0:
		return MapRangeError, fmt.Errorf("%w: offset %d not %d-byte aligned", ErrMapRange, offset, mapAlignment)
	case size%mapAlignment != 0 && offset+size != b.size:
		return MapRangeError, fmt.Errorf("%w: size %d not %d-byte aligned", ErrMapRange, size, mapAlignment)
	}
	b.state = statePending
	b.offset, b.length = offset, size
	b.notify = callback
	return MapSuccess, nil
}

// PollMapAsync completes a pending map by reading the armed range back.
// Call it only after the writing submission's fence has signaled.
func (b *stagingBuffer) PollMapAsync() {
	b.mu.Lock()
	if b.state != statePending {
		b.mu.Unlock()
		return
	}
	data := make([]byte, b.length)
	status := MapSuccess
	if err := b.queue.ReadBuffer(b.buf, b.offset, data); err != nil {
		slogger().Warn("gpu: staging readback failed", "label", b.label, "err", err)
		status = MapReadFailed
		b.state = stateIdle
	} else {
		b.data = data
		b.state = stateMapped
	}
	notify := b.takeNotify()
	b.mu.Unlock()

	notify(status)
}

// AbortMapAsync cancels a pending map with status. No-op otherwise.
func (b *stagingBuffer) AbortMapAsync(status MapStatus) {
	b.mu.Lock()
	if b.state != statePending {
		b.mu.Unlock()
		return
	}
	b.state = stateIdle
	notify := b.takeNotify()
	b.mu.Unlock()

	notify(status)
}

func (b *stagingBuffer) takeNotify() func(MapStatus) {
	n := b.notify
	b.notify = nil
	return n
}

// GetMappedRange returns size bytes at the buffer offset. The slice is
// valid until Unmap.
func (b *stagingBuffer) GetMappedRange(offset, size uint64) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case b.destroyed:
		return nil, ErrStagingDestroyed
	case b.state != stateMapped:
		return nil, fmt.Errorf("%w: %s", ErrNotMapped, b.label)
	case offset < b.offset || offset+size > b.offset+b.length:
		return nil, fmt.Errorf("%w: [%d, %d) outside mapped [%d, %d)",
			ErrMapRange, offset, offset+size, b.offset, b.offset+b.length)
	}
	start := offset - b.offset
	return b.data[start : start+size], nil
}

// Unmap drops the host copy, or cancels a pending map with MapUnmapped.
func (b *stagingBuffer) Unmap() error {
	b.mu.Lock()
	if b.destroyed {
		b.mu.Unlock()
		return ErrStagingDestroyed
	}
	if b.state == statePending {
		b.mu.Unlock()
		b.AbortMapAsync(MapUnmapped)
		return nil
	}
	b.state = stateIdle
	b.data = nil
	b.mu.Unlock()
	return nil
}

// Destroy releases the HAL buffer. A pending map is cancelled with
// MapDestroyed. Idempotent.
func (b *stagingBuffer) Destroy() {
	b.mu.Lock()
	if b.destroyed {
		b.mu.Unlock()
		return
	}
	b.destroyed = true
	var notify func(MapStatus)
	if b.state == statePending {
		notify = b.takeNotify()
	}
	buf := b.buf
	b.buf = nil
	b.data = nil
	b.state = stateIdle
	b.mu.Unlock()

	if notify != nil {
		notify(MapDestroyed)
	}
	if buf != nil {
		b.device.DestroyBuffer(buf)
	}
}

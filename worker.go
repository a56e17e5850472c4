// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rectfilter

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
)

// State is the worker loop state.
type State int32

const (
	// StateIdle means the worker is waiting for a request.
	StateIdle State = iota
	// StateDispatching means buffers are being uploaded and the kernel submitted.
	StateDispatching
	// StateAwaitingReadback means the worker is pumping map completions.
	StateAwaitingReadback
	// StateResponding means the result is being delivered to the caller.
	StateResponding
	// StateTerminated means the loop has ended and the device is released.
	StateTerminated
)

// String returns the string representation of State.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateDispatching:
		return "Dispatching"
	case StateAwaitingReadback:
		return "AwaitingReadback"
	case StateResponding:
		return "Responding"
	case StateTerminated:
		return "Terminated"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Worker owns one device context on a dedicated OS thread and serves
// requests one at a time.
//
// Thread Safety:
// Worker is safe for concurrent use. Submit holds a per-worker lock around
// the send and the matching receive, so concurrent callers are serialized
// and every caller gets the response to its own request.
type Worker struct {
	// mu serializes request/response round trips.
	mu sync.Mutex

	requests  chan Request
	responses chan Response

	// done is closed after the loop ends and the device context is closed.
	done chan struct{}

	state   atomic.Int32
	backend string
	log     *slog.Logger
}

// Start launches a worker and acquires its device context.
//
// The device context is opened on the worker's own locked OS thread. Start
// blocks until acquisition finishes and returns its error, if any. In that
// case no worker is left running.
func Start(opts ...Option) (*Worker, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	b := o.backend
	if b == nil {
		b = DefaultBackend()
	}
	if b == nil {
		return nil, ErrNoBackend
	}
	l := o.logger
	if l == nil {
		l = Logger()
	}

	w := &Worker{
		requests:  make(chan Request),
		responses: make(chan Response),
		done:      make(chan struct{}),
		backend:   b.Name(),
		log:       l,
	}

	ready := make(chan error, 1)
	go w.run(b, ready)
	if err := <-ready; err != nil {
		<-w.done
		return nil, err
	}
	return w, nil
}

// Backend returns the name of the backend the worker was opened from.
func (w *Worker) Backend() string { return w.backend }

// State returns the current loop state.
func (w *Worker) State() State { return State(w.state.Load()) }

// Done returns a channel closed once the worker has terminated and
// released its device context.
func (w *Worker) Done() <-chan struct{} { return w.done }

// alive reports whether the loop is still running.
func (w *Worker) alive() bool {
	select {
	case <-w.done:
		return false
	default:
		return true
	}
}

// Submit sends req and blocks until its response arrives.
//
// Returns ErrClosed if the worker has terminated, and ErrWorkerGone if it
// stopped while req was in flight.
func (w *Worker) Submit(req Request) (Response, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.alive() {
		return Response{}, ErrClosed
	}
	select {
	case w.requests <- req:
	case <-w.done:
		return Response{}, ErrClosed
	}
	select {
	case resp := <-w.responses:
		return resp, nil
	case <-w.done:
		return Response{}, ErrWorkerGone
	}
}

// Compute returns the points inside rect, in their original order.
func (w *Worker) Compute(points []Point, rect Rect) ([]Point, error) {
	resp, err := w.Submit(ComputeRequest(points, rect))
	if err != nil {
		return nil, err
	}
	return resp.Points, resp.Err
}

// Dispose terminates the worker and waits until its device context is
// released. Later calls on the handle return ErrClosed.
func (w *Worker) Dispose() error {
	if _, err := w.Submit(DisposeRequest()); err != nil {
		return err
	}
	<-w.done
	return nil
}

func (w *Worker) setState(s State) {
	old := State(w.state.Swap(int32(s)))
	if old != s {
		w.log.Debug("rectfilter: worker state", "from", old.String(), "to", s.String())
	}
}

// run is the worker loop. It keeps the goroutine locked to its OS thread
// for its whole life, so every GPU call happens on the same thread. The
// thread exits with the goroutine.
func (w *Worker) run(b Backend, ready chan<- error) {
	runtime.LockOSThread()

	defer close(w.done)
	defer w.setState(StateTerminated)
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("rectfilter: worker aborted", "backend", w.backend, "panic", r)
			// Unblocks Start if the panic happened during Open.
			select {
			case ready <- fmt.Errorf("%w: %v", ErrWorkerGone, r):
			default:
			}
		}
	}()

	dc, err := b.Open()
	if err != nil {
		ready <- err
		return
	}
	defer dc.Close()

	w.setState(StateIdle)
	ready <- nil
	w.log.Info("rectfilter: worker started", "backend", w.backend)

	for req := range w.requests {
		resp, stop := w.handle(dc, req)
		w.setState(StateResponding)
		w.responses <- resp
		if stop {
			w.log.Info("rectfilter: worker stopped", "backend", w.backend)
			return
		}
		w.setState(StateIdle)
	}
}

// handle processes one request. The second result reports whether the
// loop must terminate.
func (w *Worker) handle(dc DeviceContext, req Request) (Response, bool) {
	switch req.Kind {
	case RequestDispose:
		return Response{Points: []Point{}}, true

	case RequestCompute:
		points, err := w.compute(dc, req.Points, req.Rect)
		if err == nil {
			return Response{Points: points}, false
		}
		if errors.Is(err, ErrDeviceLost) {
			w.log.Error("rectfilter: device lost, terminating worker", "backend", w.backend, "err", err)
			return Response{Err: err}, true
		}
		w.log.Warn("rectfilter: request failed", "points", len(req.Points), "err", err)
		return Response{Err: err}, false

	default:
		return Response{Err: fmt.Errorf("%w: %v", ErrUnknownRequest, req.Kind)}, false
	}
}

func (w *Worker) compute(dc DeviceContext, points []Point, rect Rect) ([]Point, error) {
	w.setState(StateDispatching)
	rb, err := dc.Dispatch(points, rect)
	if err != nil {
		return nil, err
	}
	w.setState(StateAwaitingReadback)
	return rb.Wait()
}

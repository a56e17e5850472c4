// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rectfilter

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// DefaultKey is the instance key used by the package-level Init, Compute
// and Dispose functions.
const DefaultKey = "0"

// Gateway maps instance keys to live workers.
//
// Lookups take a shared lock; registration and removal take the exclusive
// lock. Device acquisition runs outside the lock, so a slow Init on one key
// never stalls requests on another. At most one live worker is registered
// per key.
type Gateway struct {
	mu      sync.RWMutex
	workers map[string]*Worker
	pending map[string]*pendingInit
}

// pendingInit is an Init in progress. Concurrent Inits of the same key wait
// on done and share its outcome.
type pendingInit struct {
	done chan struct{}
	w    *Worker
	err  error
}

// NewGateway creates an empty gateway.
func NewGateway() *Gateway {
	return &Gateway{
		workers: make(map[string]*Worker),
		pending: make(map[string]*pendingInit),
	}
}

// Init starts a worker for key unless a live one is already registered.
// It is idempotent: repeated calls return the same worker. Callers racing
// on the same key share one Start and its result.
func (g *Gateway) Init(key string, opts ...Option) (*Worker, error) {
	if w, ok := g.Lookup(key); ok {
		return w, nil
	}

	g.mu.Lock()
	if w := g.workers[key]; w != nil && w.alive() {
		g.mu.Unlock()
		return w, nil
	}
	if p := g.pending[key]; p != nil {
		g.mu.Unlock()
		<-p.done
		return p.w, p.err
	}
	p := &pendingInit{done: make(chan struct{})}
	g.pending[key] = p
	g.mu.Unlock()

	w, err := Start(opts...)
	if err != nil {
		p.err = fmt.Errorf("rectfilter: init %q: %w", key, err)
	} else {
		p.w = w
	}

	g.mu.Lock()
	delete(g.pending, key)
	if w != nil {
		g.workers[key] = w
	}
	g.mu.Unlock()
	close(p.done)

	return p.w, p.err
}

// Lookup returns the live worker registered under key.
func (g *Gateway) Lookup(key string) (*Worker, bool) {
	g.mu.RLock()
	w := g.workers[key]
	g.mu.RUnlock()
	if w == nil || !w.alive() {
		return nil, false
	}
	return w, true
}

// Keys returns the keys of all live workers, sorted.
func (g *Gateway) Keys() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	keys := make([]string, 0, len(g.workers))
	for k, w := range g.workers {
		if w.alive() {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Submit sends req to the worker registered under key and blocks for the
// response.
//
// Returns ErrNotInitialized if key has no live worker. After a Dispose
// round trip, or once the worker has terminated, the entry is removed.
func (g *Gateway) Submit(key string, req Request) (Response, error) {
	w, ok := g.Lookup(key)
	if !ok {
		return Response{}, fmt.Errorf("%w: key %q", ErrNotInitialized, key)
	}

	resp, err := w.Submit(req)
	if errors.Is(err, ErrClosed) {
		g.remove(key, w)
		return Response{}, fmt.Errorf("%w: key %q", ErrNotInitialized, key)
	}
	if err != nil {
		g.remove(key, w)
		return Response{}, err
	}

	switch {
	case req.Kind == RequestDispose:
		<-w.Done()
		g.remove(key, w)
	case errors.Is(resp.Err, ErrDeviceLost):
		g.remove(key, w)
	}
	return resp, nil
}

// Compute filters points through the worker registered under key.
func (g *Gateway) Compute(key string, points []Point, rect Rect) ([]Point, error) {
	resp, err := g.Submit(key, ComputeRequest(points, rect))
	if err != nil {
		return nil, err
	}
	return resp.Points, resp.Err
}

// Dispose terminates the worker registered under key.
func (g *Gateway) Dispose(key string) error {
	_, err := g.Submit(key, DisposeRequest())
	return err
}

// Close disposes every registered worker.
func (g *Gateway) Close() error {
	var errs []error
	for _, key := range g.Keys() {
		if err := g.Dispose(key); err != nil && !errors.Is(err, ErrNotInitialized) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// remove deletes the entry for key if it still refers to w.
func (g *Gateway) remove(key string, w *Worker) {
	g.mu.Lock()
	if g.workers[key] == w {
		delete(g.workers, key)
	}
	g.mu.Unlock()
}

var defaultGateway = NewGateway()

// DefaultGateway returns the process-wide gateway used by Init, Compute
// and Dispose.
func DefaultGateway() *Gateway { return defaultGateway }

// Init starts the process-wide compute worker under DefaultKey.
// Subsequent calls are no-ops while the worker is alive.
func Init(opts ...Option) error {
	_, err := defaultGateway.Init(DefaultKey, opts...)
	return err
}

// Compute returns the points inside rect, in their original order, using
// the process-wide worker. Returns ErrNotInitialized before Init or after
// Dispose.
func Compute(points []Point, rect Rect) ([]Point, error) {
	return defaultGateway.Compute(DefaultKey, points, rect)
}

// Dispose terminates the process-wide worker. Compute is invalid until the
// next Init.
func Dispose() error {
	return defaultGateway.Dispose(DefaultKey)
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rectfilter

import "fmt"

// RequestKind tags the variant carried by a Request.
type RequestKind uint8

const (
	// RequestCompute asks the worker to filter Points against Rect.
	RequestCompute RequestKind = iota

	// RequestDispose terminates the worker. It carries no payload.
	RequestDispose
)

// String returns the string representation of RequestKind.
func (k RequestKind) String() string {
	switch k {
	case RequestCompute:
		return "Compute"
	case RequestDispose:
		return "Dispose"
	default:
		return fmt.Sprintf("RequestKind(%d)", int(k))
	}
}

// Request is a message sent to a Worker.
//
// The Points slice is owned by the worker once the request is sent.
// The worker only reads it, but callers must not modify it until
// the matching Response arrives.
type Request struct {
	Kind   RequestKind
	Points []Point
	Rect   Rect
}

// ComputeRequest creates a compute request.
func ComputeRequest(points []Point, rect Rect) Request {
	return Request{Kind: RequestCompute, Points: points, Rect: rect}
}

// DisposeRequest creates the terminal request.
func DisposeRequest() Request {
	return Request{Kind: RequestDispose}
}

// Response is the worker's answer to one Request.
//
// Points holds the subset of the request's points inside the rectangle, in
// original order. An empty Points with a nil Err is a valid result.
type Response struct {
	Points []Point
	Err    error
}

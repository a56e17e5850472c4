// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rectfilter

import "log/slog"

// Option configures a Worker during Start.
//
// Example:
//
//	// Registered GPU backend, package logger
//	w, err := rectfilter.Start()
//
//	// Explicit backend (dependency injection)
//	w, err := rectfilter.Start(rectfilter.WithBackend(myBackend))
type Option func(*options)

// options holds optional configuration for Worker creation.
type options struct {
	backend Backend
	logger  *slog.Logger
}

// defaultOptions returns the default worker options.
func defaultOptions() options {
	return options{
		backend: nil, // resolved to DefaultBackend() in Start
		logger:  nil, // resolved to Logger() in Start
	}
}

// WithBackend sets the backend the worker opens its device context from.
// Without it, the backend registered via RegisterBackend is used.
func WithBackend(b Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithLogger sets a logger for this worker only.
// Without it, the worker logs through Logger().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

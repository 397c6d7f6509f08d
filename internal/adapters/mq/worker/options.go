package worker

import (
	"github.com/okian/crease/pkg/logger"
)

// Option configures a shard worker. Pool options are applied to every shard.
type Option func(*InMemoryWorker)

// WithName names the worker in its log lines. The pool names shards itself.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets the logger shared by the pool and its shards.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

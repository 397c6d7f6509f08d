package repository

import (
	"time"

	"github.com/okian/crease/pkg/logger"
)

const defaultBusyTimeout = 5 * time.Second

type options struct {
	busyTimeout time.Duration
	logger      logger.Logger
}

// Option applies a configuration option to a store.
type Option func(*options)

// WithBusyTimeout sets how long SQLite waits on a locked database.
func WithBusyTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.busyTimeout = d
		}
	}
}

// WithLogger sets the logger used by the store.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		busyTimeout: defaultBusyTimeout,
		logger:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

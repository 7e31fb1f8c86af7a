package repository

import (
	"log/slog"

	"truthfeed/internal/cache"
)

type options struct {
	logger *slog.Logger
	cache  *cache.Store
}

// Option configures a repository.
type Option func(*options)

// WithLogger routes repository error logs to l.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithCache enables cache-aside reads for static rows. A nil store disables it.
func WithCache(store *cache.Store) Option {
	return func(o *options) {
		o.cache = store
	}
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

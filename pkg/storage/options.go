package storage

import "github.com/sdejongh/treediff/pkg/ratelimit"

// Option configures a backend
type Option func(*options)

type options struct {
	exclude []string
	limiter *ratelimit.Limiter
}

func defaultOptions() *options {
	return &options{}
}

// WithExclude skips files and directories whose relative key matches one of
// the glob patterns. An excluded directory is not descended.
func WithExclude(patterns ...string) Option {
	return func(o *options) {
		o.exclude = append(o.exclude, patterns...)
	}
}

// WithReadLimit throttles file reads through limiter. Backends sharing a
// limiter share its budget; a nil limiter reads at full speed.
func WithReadLimit(limiter *ratelimit.Limiter) Option {
	return func(o *options) {
		o.limiter = limiter
	}
}

func applyOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

package channel

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/wippyai/wirechan/codec"
)

// DefaultMaxDepth is the dispatch nesting depth allowed when none is configured.
const DefaultMaxDepth = 1024

// Option configures a Channel.
type Option func(*Channel)

// WithLogger sets the logger used for lifecycle events.
func WithLogger(l *zap.Logger) Option {
	return func(c *Channel) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTracer installs a callback invoked once per dispatched value.
func WithTracer(t Tracer) Option {
	return func(c *Channel) {
		c.tracer = t
	}
}

// WithMaxDepth bounds how deeply dispatch may nest.
func WithMaxDepth(n int) Option {
	return func(c *Channel) {
		if n > 0 {
			c.maxDepth = n
		}
	}
}

// WithLimits sets the length limits enforced by codecs. Non-positive fields
// keep their current value.
func WithLimits(l codec.Limits) Option {
	return func(c *Channel) {
		if l.MaxListLen > 0 {
			c.limits.MaxListLen = l.MaxListLen
		}
		if l.MaxStringLen > 0 {
			c.limits.MaxStringLen = l.MaxStringLen
		}
	}
}

// WithSupportedTypes declares the top-level types this channel is expected
// to carry. They are checked by Validate, never per call.
func WithSupportedTypes(types ...reflect.Type) Option {
	return func(c *Channel) {
		c.supported = append([]reflect.Type(nil), types...)
	}
}

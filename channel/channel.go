package channel

import (
	stderrors "errors"
	"io"
	"reflect"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/wirechan"
	"github.com/wippyai/wirechan/codec"
	"github.com/wippyai/wirechan/errors"
)

// Channel binds a registry to one backing stream and one direction.
type Channel struct {
	registry  *codec.Registry
	stream    any
	reader    io.Reader
	writer    io.Writer
	logger    *zap.Logger
	tracer    Tracer
	supported []reflect.Type
	starts    []int64
	limits    codec.Limits
	offset    int64
	depth     int
	maxDepth  int
	mode      wirechan.Mode
}

var _ codec.Channel = (*Channel)(nil)

// New creates an unbound channel over reg. Call Initialise before use.
func New(reg *codec.Registry, opts ...Option) *Channel {
	c := &Channel{
		registry: reg,
		logger:   codec.Logger(),
		limits:   codec.DefaultLimits(),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewWriter creates a channel bound to w for writing.
func NewWriter(reg *codec.Registry, w io.Writer, opts ...Option) (*Channel, error) {
	c := New(reg, opts...)
	if err := c.Initialise(w, wirechan.ModeWrite); err != nil {
		return nil, err
	}
	return c, nil
}

// NewReader creates a channel bound to r for reading.
func NewReader(reg *codec.Registry, r io.Reader, opts ...Option) (*Channel, error) {
	c := New(reg, opts...)
	if err := c.Initialise(r, wirechan.ModeRead); err != nil {
		return nil, err
	}
	return c, nil
}

// Initialise binds the channel to stream in the given mode. A read-mode
// stream must be an io.Reader and a write-mode stream an io.Writer.
func (c *Channel) Initialise(stream any, mode wirechan.Mode) error {
	if c.mode.Valid() {
		return errors.AlreadyInitialised(c.mode.String())
	}
	if c.registry == nil {
		return errors.InvalidInput(errors.PhaseInit, "registry is nil")
	}
	if !mode.Valid() {
		return errors.InvalidInput(errors.PhaseInit, "mode must be read or write, got "+mode.String())
	}
	if isNil(stream) {
		return errors.InvalidStream("stream is nil")
	}

	switch mode {
	case wirechan.ModeRead:
		r, ok := stream.(io.Reader)
		if !ok {
			return errors.InvalidStream("%T is not an io.Reader", stream)
		}
		c.reader = r
	case wirechan.ModeWrite:
		w, ok := stream.(io.Writer)
		if !ok {
			return errors.InvalidStream("%T is not an io.Writer", stream)
		}
		c.writer = w
	}

	c.stream = stream
	c.mode = mode
	c.offset = 0
	c.depth = 0
	c.starts = c.starts[:0]

	c.logger.Debug("channel initialised",
		zap.Stringer("mode", mode),
		zap.String("stream", reflect.TypeOf(stream).String()))
	return nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// Reset unbinds the stream without closing it. The channel may then be
// initialised again.
func (c *Channel) Reset() {
	if c.mode.Valid() {
		c.logger.Debug("channel reset",
			zap.Stringer("mode", c.mode),
			zap.Int64("offset", c.offset))
	}
	c.stream = nil
	c.reader = nil
	c.writer = nil
	c.mode = wirechan.ModeUnbound
	c.offset = 0
	c.depth = 0
	c.starts = c.starts[:0]
}

// Close flushes and closes the backing stream when it supports it, then
// resets the channel.
func (c *Channel) Close() error {
	var err error
	if f, ok := c.stream.(interface{ Flush() error }); ok && c.mode == wirechan.ModeWrite {
		err = multierr.Append(err, f.Flush())
	}
	if cl, ok := c.stream.(io.Closer); ok {
		err = multierr.Append(err, cl.Close())
	}
	c.Reset()
	if err != nil {
		return errors.Wrap(errors.PhaseInit, errors.KindIO, err, "release stream")
	}
	return nil
}

// Mode returns the bound direction.
func (c *Channel) Mode() wirechan.Mode {
	if c == nil {
		return wirechan.ModeUnbound
	}
	return c.mode
}

// Registry returns the registry codecs are resolved from.
func (c *Channel) Registry() *codec.Registry {
	return c.registry
}

// Limits returns the length limits codecs enforce.
func (c *Channel) Limits() codec.Limits {
	return c.limits
}

// Offset returns the number of bytes written or read since Initialise.
func (c *Channel) Offset() int64 {
	return c.offset
}

// Depth returns the current dispatch nesting depth.
func (c *Channel) Depth() int {
	return c.depth
}

// SupportedTypes returns the top-level types this channel is prepared to
// carry: the configured list, or every registered type.
func (c *Channel) SupportedTypes() []reflect.Type {
	if c.supported != nil {
		return append([]reflect.Type(nil), c.supported...)
	}
	if c.registry == nil {
		return nil
	}
	return c.registry.Types()
}

// Validate checks that every supported type has a codec.
func (c *Channel) Validate() error {
	if c.registry == nil {
		return errors.InvalidInput(errors.PhaseValidate, "registry is nil")
	}
	return c.registry.Validate(c.SupportedTypes()...)
}

// WriteRaw appends p to the stream.
func (c *Channel) WriteRaw(p []byte) error {
	if c.writer == nil {
		return c.modeError(errors.PhaseEncode, wirechan.ModeWrite)
	}
	n, err := c.writer.Write(p)
	c.offset += int64(n)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return errors.IO(errors.PhaseEncode, c.offset, err)
	}
	return nil
}

// ReadRaw fills p from the stream.
func (c *Channel) ReadRaw(p []byte) error {
	if c.reader == nil {
		return c.modeError(errors.PhaseDecode, wirechan.ModeRead)
	}
	n, err := io.ReadFull(c.reader, p)
	c.offset += int64(n)
	if err != nil {
		if stderrors.Is(err, io.EOF) || stderrors.Is(err, io.ErrUnexpectedEOF) {
			return errors.UnexpectedEnd(c.offset, len(p)-n, err)
		}
		return errors.IO(errors.PhaseDecode, c.offset, err)
	}
	return nil
}

func (c *Channel) modeError(phase errors.Phase, want wirechan.Mode) error {
	if !c.mode.Valid() {
		return errors.NotInitialized(phase, "channel")
	}
	return errors.WrongMode(phase, c.mode.String(), want.String())
}

// Enter records the start of a dispatched value.
func (c *Channel) Enter(t reflect.Type) error {
	if c.depth >= c.maxDepth {
		phase := errors.PhaseEncode
		if c.mode == wirechan.ModeRead {
			phase = errors.PhaseDecode
		}
		return errors.New(phase, errors.KindOverflow).
			GoType(t.String()).
			Value(c.depth).
			Detail("nesting depth exceeds %d", c.maxDepth).
			Build()
	}
	c.depth++
	if c.tracer != nil {
		c.starts = append(c.starts, c.offset)
	}
	return nil
}

// Leave records the end of a dispatched value.
func (c *Channel) Leave(t reflect.Type, err error) {
	c.depth--
	if c.tracer == nil || len(c.starts) == 0 {
		return
	}
	start := c.starts[len(c.starts)-1]
	c.starts = c.starts[:len(c.starts)-1]
	c.tracer(Event{
		Type:  t,
		Err:   err,
		Start: start,
		End:   c.offset,
		Depth: c.depth,
	})
}

// Write encodes v with the codec registered for T.
func Write[T any](c *Channel, v T) error {
	if c == nil {
		return errors.NotInitialized(errors.PhaseEncode, "channel")
	}
	return codec.Write(c, v)
}

// Read decodes one T with the codec registered for T.
func Read[T any](c *Channel) (T, error) {
	if c == nil {
		var zero T
		return zero, errors.NotInitialized(errors.PhaseDecode, "channel")
	}
	return codec.Read[T](c)
}

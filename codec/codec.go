package codec

import (
	"reflect"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/wirechan"
)

// Codec converts values of one type to and from the wire.
type Codec[T any] interface {
	Read(ch Channel) (T, error)
	Write(ch Channel, v T) error
}

// Shaper is implemented by codecs that can describe their wire layout.
type Shaper interface {
	Shape(r *Registry) wit.Type
}

// Requirer is implemented by codecs that dispatch to other types. Validate
// follows these edges, and List refuses to start a value whose element types
// are not all registered.
type Requirer interface {
	Requires() []reflect.Type
}

// Channel is the view of a bound channel that codecs work against.
type Channel interface {
	Mode() wirechan.Mode
	Registry() *Registry
	Limits() Limits

	// WriteRaw appends p to the backing stream.
	WriteRaw(p []byte) error
	// ReadRaw fills p from the backing stream or fails with a malformed_stream error.
	ReadRaw(p []byte) error

	// Enter is called before a codec runs for t and may refuse to go deeper.
	Enter(t reflect.Type) error
	// Leave is called after the codec for t returned.
	Leave(t reflect.Type, err error)
}

// Limits bounds the lengths accepted from a stream.
type Limits struct {
	MaxListLen   int
	MaxStringLen int
}

// DefaultLimits returns the limits used when a channel is not configured otherwise.
func DefaultLimits() Limits {
	return Limits{
		MaxListLen:   1 << 24,
		MaxStringLen: 1 << 26,
	}
}

// Func adapts plain functions to a Codec.
type Func[T any] struct {
	ReadFunc  func(ch Channel) (T, error)
	WriteFunc func(ch Channel, v T) error
	ShapeFunc func(r *Registry) wit.Type
}

func (f Func[T]) Read(ch Channel) (T, error) {
	return f.ReadFunc(ch)
}

func (f Func[T]) Write(ch Channel, v T) error {
	return f.WriteFunc(ch, v)
}

func (f Func[T]) Shape(r *Registry) wit.Type {
	if f.ShapeFunc == nil {
		return nil
	}
	return f.ShapeFunc(r)
}

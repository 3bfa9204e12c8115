package codec

import (
	"reflect"
	"strconv"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/wirechan/errors"
	"github.com/wippyai/wirechan/shape"
)

// listPrealloc caps the capacity reserved up front for a decoded list.
// Longer lists grow as elements actually arrive.
const listPrealloc = 1024

type listCodec[T any] struct{}

// List returns the codec for an ordered sequence of T. The count is written
// through the int32 codec and each element through the codec for T, so both
// must be registered.
func List[T any]() Codec[[]T] { return listCodec[T]{} }

// Requires reports the count and element types.
func (listCodec[T]) Requires() []reflect.Type {
	return []reflect.Type{reflect.TypeFor[int32](), reflect.TypeFor[T]()}
}

// covered fails before any byte moves when the element type, or anything
// it requires, has no codec.
func (c listCodec[T]) covered(ch Channel, phase errors.Phase) error {
	if missing := ch.Registry().Missing(c.Requires()...); len(missing) > 0 {
		return errors.UnsupportedType(phase, missing[0].String())
	}
	return nil
}

func (c listCodec[T]) Write(ch Channel, v []T) error {
	if err := c.covered(ch, errors.PhaseEncode); err != nil {
		return err
	}
	if err := checkLength(len(v), ch.Limits().MaxListLen, "list"); err != nil {
		return err
	}
	if err := Write(ch, int32(len(v))); err != nil {
		return err
	}
	for i, elem := range v {
		if err := Write(ch, elem); err != nil {
			return At(err, "["+strconv.Itoa(i)+"]")
		}
	}
	return nil
}

func (c listCodec[T]) Read(ch Channel) ([]T, error) {
	if err := c.covered(ch, errors.PhaseDecode); err != nil {
		return nil, err
	}
	n, err := Read[int32](ch)
	if err != nil {
		return nil, err
	}
	limit := ch.Limits().MaxListLen
	if n < 0 || int(n) > limit {
		return nil, errors.BadLength(nil, n, limit)
	}

	out := make([]T, 0, min(int(n), listPrealloc))
	for i := 0; i < int(n); i++ {
		elem, err := Read[T](ch)
		if err != nil {
			return nil, At(err, "["+strconv.Itoa(i)+"]")
		}
		out = append(out, elem)
	}
	return out, nil
}

func (listCodec[T]) Shape(r *Registry) wit.Type {
	elem := ShapeOf[T](r)
	if elem == nil {
		return nil
	}
	return shape.List(elem)
}

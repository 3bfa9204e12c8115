package codec

import (
	stderrors "errors"
	"reflect"

	"github.com/wippyai/wirechan"
	"github.com/wippyai/wirechan/errors"
)

// Write encodes v with the codec registered for T.
func Write[T any](ch Channel, v T) error {
	t := reflect.TypeFor[T]()
	c, err := resolve[T](ch, t, wirechan.ModeWrite, errors.PhaseEncode)
	if err != nil {
		return err
	}
	if err := ch.Enter(t); err != nil {
		return err
	}
	err = c.Write(ch, v)
	ch.Leave(t, err)
	return err
}

// Read decodes one T with the codec registered for T.
func Read[T any](ch Channel) (T, error) {
	var zero T
	t := reflect.TypeFor[T]()
	c, err := resolve[T](ch, t, wirechan.ModeRead, errors.PhaseDecode)
	if err != nil {
		return zero, err
	}
	if err := ch.Enter(t); err != nil {
		return zero, err
	}
	v, err := c.Read(ch)
	ch.Leave(t, err)
	if err != nil {
		return zero, err
	}
	return v, nil
}

func resolve[T any](ch Channel, t reflect.Type, want wirechan.Mode, phase errors.Phase) (Codec[T], error) {
	if ch == nil {
		return nil, errors.NotInitialized(phase, "channel")
	}
	switch mode := ch.Mode(); {
	case !mode.Valid():
		return nil, errors.NotInitialized(phase, "channel")
	case mode != want:
		return nil, errors.WrongMode(phase, mode.String(), want.String())
	}

	reg := ch.Registry()
	if reg == nil {
		return nil, errors.NotInitialized(phase, "registry")
	}
	entry, ok := reg.Lookup(t)
	if !ok {
		return nil, errors.UnsupportedType(phase, t.String())
	}
	c, ok := entry.(Codec[T])
	if !ok {
		return nil, errors.TypeMismatch(phase, nil, t.String(), reflect.TypeOf(entry).String())
	}
	return c, nil
}

// At prefixes the path of a structured error with seg, so failures deep in
// a value report where they happened. Other errors are returned unchanged.
func At(err error, seg string) error {
	if err == nil {
		return nil
	}
	var e *errors.Error
	if stderrors.As(err, &e) {
		e.Path = append([]string{seg}, e.Path...)
	}
	return err
}

package codec

import (
	"reflect"

	cbor "github.com/fxamacker/cbor/v2"
	"go.bytecodealliance.org/wit"
	"google.golang.org/protobuf/proto"

	"github.com/wippyai/wirechan/errors"
	"github.com/wippyai/wirechan/shape"
)

// Opaque codecs carry a value as a length-prefixed blob produced by another
// serializer. The blob goes through the []byte codec, so Bytes must be
// registered alongside them.

type cborCodec[T any] struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

// CBOR returns a codec that stores T as deterministic CBOR (RFC 8949 core
// profile) inside a []byte.
func CBOR[T any]() (Codec[T], error) {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, err
	}
	dm, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		return nil, err
	}
	return cborCodec[T]{enc: em, dec: dm}, nil
}

func (c cborCodec[T]) Write(ch Channel, v T) error {
	data, err := c.enc.Marshal(v)
	if err != nil {
		return errors.New(errors.PhaseEncode, errors.KindInvalidInput).
			GoType(reflect.TypeFor[T]().String()).
			Detail("cbor marshal").
			Cause(err).
			Build()
	}
	return Write(ch, data)
}

func (c cborCodec[T]) Read(ch Channel) (T, error) {
	var v T
	data, err := Read[[]byte](ch)
	if err != nil {
		return v, err
	}
	if err := c.dec.Unmarshal(data, &v); err != nil {
		return v, errors.New(errors.PhaseDecode, errors.KindMalformedStream).
			GoType(reflect.TypeFor[T]().String()).
			Detail("cbor unmarshal").
			Cause(err).
			Build()
	}
	return v, nil
}

func (c cborCodec[T]) Shape(*Registry) wit.Type { return shape.List(wit.U8{}) }

type protoCodec[M proto.Message] struct {
	newMsg func() M
	mo     proto.MarshalOptions
	uo     proto.UnmarshalOptions
}

// Proto returns a codec that stores a protobuf message, marshaled
// deterministically, inside a []byte. newMsg allocates the message a read
// decodes into.
func Proto[M proto.Message](newMsg func() M) Codec[M] {
	return protoCodec[M]{
		newMsg: newMsg,
		mo:     proto.MarshalOptions{Deterministic: true},
		uo:     proto.UnmarshalOptions{},
	}
}

func (p protoCodec[M]) Write(ch Channel, m M) error {
	data, err := p.mo.Marshal(m)
	if err != nil {
		return errors.New(errors.PhaseEncode, errors.KindInvalidInput).
			GoType(reflect.TypeFor[M]().String()).
			Detail("protobuf marshal").
			Cause(err).
			Build()
	}
	return Write(ch, data)
}

func (p protoCodec[M]) Read(ch Channel) (M, error) {
	m := p.newMsg()
	data, err := Read[[]byte](ch)
	if err != nil {
		return m, err
	}
	if err := p.uo.Unmarshal(data, m); err != nil {
		return m, errors.New(errors.PhaseDecode, errors.KindMalformedStream).
			GoType(reflect.TypeFor[M]().String()).
			Detail("protobuf unmarshal").
			Cause(err).
			Build()
	}
	return m, nil
}

func (p protoCodec[M]) Shape(*Registry) wit.Type { return shape.List(wit.U8{}) }

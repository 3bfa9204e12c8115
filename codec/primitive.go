package codec

import (
	"encoding/binary"
	"math"
	"reflect"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/wirechan/errors"
	"github.com/wippyai/wirechan/shape"
)

// chunkSize bounds a single allocation while reading a length-prefixed
// payload, so a corrupt length cannot reserve memory the stream never backs.
const chunkSize = 32 << 10

type boolCodec struct{}

// Bool returns the codec for bool: one byte, 0 or 1.
func Bool() Codec[bool] { return boolCodec{} }

func (boolCodec) Write(ch Channel, v bool) error {
	var b [1]byte
	if v {
		b[0] = 1
	}
	return ch.WriteRaw(b[:])
}

func (boolCodec) Read(ch Channel) (bool, error) {
	var b [1]byte
	if err := ch.ReadRaw(b[:]); err != nil {
		return false, err
	}
	switch b[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, errors.New(errors.PhaseDecode, errors.KindMalformedStream).
			GoType("bool").
			Value(b[0]).
			Detail("invalid boolean byte 0x%02x", b[0]).
			Build()
	}
}

func (boolCodec) Shape(*Registry) wit.Type { return wit.Bool{} }

type byteCodec struct{}

// Byte returns the codec for byte: the raw value.
func Byte() Codec[byte] { return byteCodec{} }

func (byteCodec) Write(ch Channel, v byte) error {
	return ch.WriteRaw([]byte{v})
}

func (byteCodec) Read(ch Channel) (byte, error) {
	var b [1]byte
	if err := ch.ReadRaw(b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func (byteCodec) Shape(*Registry) wit.Type { return wit.U8{} }

type int32Codec struct{}

// Int32 returns the codec for int32: four bytes, little-endian.
func Int32() Codec[int32] { return int32Codec{} }

func (int32Codec) Write(ch Channel, v int32) error {
	return writeInt32(ch, v)
}

func (int32Codec) Read(ch Channel) (int32, error) {
	return readInt32(ch)
}

func (int32Codec) Shape(*Registry) wit.Type { return wit.S32{} }

type stringCodec struct{}

// String returns the codec for string: an int32 byte length followed by the bytes.
func String() Codec[string] { return stringCodec{} }

func (stringCodec) Write(ch Channel, v string) error {
	if err := checkLength(len(v), ch.Limits().MaxStringLen, "string"); err != nil {
		return err
	}
	if err := writeInt32(ch, int32(len(v))); err != nil {
		return err
	}
	if len(v) == 0 {
		return nil
	}
	return ch.WriteRaw([]byte(v))
}

func (stringCodec) Read(ch Channel) (string, error) {
	data, err := readPayload(ch, ch.Limits().MaxStringLen)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (stringCodec) Shape(*Registry) wit.Type { return wit.String{} }

type bytesCodec struct{}

// Bytes returns the codec for []byte. Its wire form is identical to
// List[byte]: an int32 count followed by the raw bytes.
func Bytes() Codec[[]byte] { return bytesCodec{} }

func (bytesCodec) Write(ch Channel, v []byte) error {
	if err := checkLength(len(v), ch.Limits().MaxListLen, "list<u8>"); err != nil {
		return err
	}
	if err := writeInt32(ch, int32(len(v))); err != nil {
		return err
	}
	if len(v) == 0 {
		return nil
	}
	return ch.WriteRaw(v)
}

func (bytesCodec) Read(ch Channel) ([]byte, error) {
	return readPayload(ch, ch.Limits().MaxListLen)
}

func (bytesCodec) Shape(*Registry) wit.Type { return shape.List(wit.U8{}) }

// Integer is the set of types an enumeration may be declared over.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32
}

type enumCodec[E Integer] struct{}

// Enum returns the codec for an enumeration type: its integer value as int32.
func Enum[E Integer]() Codec[E] { return enumCodec[E]{} }

func (enumCodec[E]) Write(ch Channel, v E) error {
	n := int64(v)
	if n < math.MinInt32 || n > math.MaxInt32 {
		return errors.Overflow(errors.PhaseEncode, nil, v, "s32")
	}
	return writeInt32(ch, int32(n))
}

func (enumCodec[E]) Read(ch Channel) (E, error) {
	n, err := readInt32(ch)
	if err != nil {
		return 0, err
	}
	v := E(n)
	if int64(v) != int64(n) {
		return 0, errors.New(errors.PhaseDecode, errors.KindMalformedStream).
			GoType(reflect.TypeFor[E]().String()).
			Value(n).
			Detail("enum value %d does not fit", n).
			Build()
	}
	return v, nil
}

func (enumCodec[E]) Shape(*Registry) wit.Type { return wit.S32{} }

func writeInt32(ch Channel, v int32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(v))
	return ch.WriteRaw(b[:])
}

func readInt32(ch Channel) (int32, error) {
	var b [4]byte
	if err := ch.ReadRaw(b[:]); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b[:])), nil
}

func checkLength(n, limit int, wire string) error {
	if n > math.MaxInt32 || n > limit {
		return errors.New(errors.PhaseEncode, errors.KindOverflow).
			Wire(wire).
			Value(n).
			Detail("length %d exceeds limit %d", n, limit).
			Build()
	}
	return nil
}

// readPayload reads an int32 length and that many bytes, growing the
// buffer chunk by chunk.
func readPayload(ch Channel, limit int) ([]byte, error) {
	n, err := readInt32(ch)
	if err != nil {
		return nil, err
	}
	if n < 0 || int(n) > limit {
		return nil, errors.BadLength(nil, n, limit)
	}

	size := int(n)
	buf := make([]byte, 0, min(size, chunkSize))
	for len(buf) < size {
		step := min(size-len(buf), chunkSize)
		if cap(buf)-len(buf) < step {
			grown := make([]byte, len(buf), min(size, 2*cap(buf)+step))
			copy(grown, buf)
			buf = grown
		}
		if err := ch.ReadRaw(buf[len(buf) : len(buf)+step]); err != nil {
			return nil, err
		}
		buf = buf[:len(buf)+step]
	}
	return buf, nil
}

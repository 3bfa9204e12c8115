package sample

import (
	"math"

	"go.bytecodealliance.org/wit"
	"go.uber.org/multierr"

	"github.com/wippyai/wirechan/codec"
	"github.com/wippyai/wirechan/errors"
	"github.com/wippyai/wirechan/shape"
)

// Register adds codecs for every sample type, and the primitives they are
// built from, to r.
func Register(r *codec.Registry) error {
	var err error
	for _, add := range []func(*codec.Registry) error{
		codec.RegisterPrimitives,
		reg[Colour](colourCodec{}),
		reg[Foo](fooCodec{}),
		reg[Bar](barCodec{}),
		reg[[]Foo](codec.List[Foo]()),
		reg[[]string](codec.List[string]()),
		reg[Animal](animalCodec{}),
		reg[Mammal](mammalCodec{}),
		reg[Boar](boarCodec{}),
		reg[Bear](bearCodec{}),
		reg[Creature](creatureCodec{}),
		reg[[]Creature](codec.List[Creature]()),
		reg[SamplerMode](codec.Enum[SamplerMode]()),
		reg[ShaderSamplerDefinition](samplerDefCodec{}),
		reg[ReadmeExample](readmeCodec{}),
	} {
		err = multierr.Append(err, add(r))
	}
	return err
}

func reg[T any](c codec.Codec[T]) func(*codec.Registry) error {
	return func(r *codec.Registry) error { return codec.Register(r, c) }
}

// NewRegistry returns a frozen registry holding the sample codecs.
func NewRegistry() (*codec.Registry, error) {
	r := codec.NewRegistry()
	if err := Register(r); err != nil {
		return nil, err
	}
	r.Freeze()
	return r, nil
}

type colourCodec struct{}

func quantize(v float32) byte {
	switch {
	case v <= 0 || math.IsNaN(float64(v)):
		return 0
	case v >= 1:
		return 255
	}
	return byte(v * 255)
}

func (colourCodec) Write(ch codec.Channel, c Colour) error {
	for i, v := range [4]float32{c.A, c.R, c.G, c.B} {
		if err := codec.Write(ch, quantize(v)); err != nil {
			return codec.At(err, colourChannels[i])
		}
	}
	return nil
}

func (colourCodec) Read(ch codec.Channel) (Colour, error) {
	var out [4]float32
	for i := range out {
		b, err := codec.Read[byte](ch)
		if err != nil {
			return Colour{}, codec.At(err, colourChannels[i])
		}
		out[i] = float32(b) / 255
	}
	return Colour{A: out[0], R: out[1], G: out[2], B: out[3]}, nil
}

var colourChannels = [4]string{"a", "r", "g", "b"}

func (colourCodec) Shape(*codec.Registry) wit.Type {
	return shape.Record(
		shape.Field("a", wit.U8{}),
		shape.Field("r", wit.U8{}),
		shape.Field("g", wit.U8{}),
		shape.Field("b", wit.U8{}),
	)
}

type fooCodec struct{}

func (fooCodec) Write(ch codec.Channel, f Foo) error {
	if err := codec.Write(ch, f.FooColour); err != nil {
		return codec.At(err, "foo_colour")
	}
	return codec.At(codec.Write(ch, f.Message), "message")
}

func (fooCodec) Read(ch codec.Channel) (Foo, error) {
	var f Foo
	var err error
	if f.FooColour, err = codec.Read[Colour](ch); err != nil {
		return Foo{}, codec.At(err, "foo_colour")
	}
	if f.Message, err = codec.Read[string](ch); err != nil {
		return Foo{}, codec.At(err, "message")
	}
	return f, nil
}

func (fooCodec) Shape(r *codec.Registry) wit.Type {
	return shape.Record(
		shape.Field("foo_colour", codec.ShapeOf[Colour](r)),
		shape.Field("message", wit.String{}),
	)
}

// barCodec writes the embedded Foo by requesting the Foo codec explicitly,
// then its own colour.
type barCodec struct{}

func (barCodec) Write(ch codec.Channel, b Bar) error {
	if err := codec.Write(ch, b.Foo); err != nil {
		return codec.At(err, "foo")
	}
	return codec.At(codec.Write(ch, b.BarColour), "bar_colour")
}

func (barCodec) Read(ch codec.Channel) (Bar, error) {
	var b Bar
	var err error
	if b.Foo, err = codec.Read[Foo](ch); err != nil {
		return Bar{}, codec.At(err, "foo")
	}
	if b.BarColour, err = codec.Read[Colour](ch); err != nil {
		return Bar{}, codec.At(err, "bar_colour")
	}
	return b, nil
}

func (barCodec) Shape(r *codec.Registry) wit.Type {
	return shape.Record(
		shape.Field("foo", codec.ShapeOf[Foo](r)),
		shape.Field("bar_colour", codec.ShapeOf[Colour](r)),
	)
}

// writeStrings writes each field as a string, labelling failures.
func writeStrings(ch codec.Channel, names []string, values ...string) error {
	for i, v := range values {
		if err := codec.Write(ch, v); err != nil {
			return codec.At(err, names[i])
		}
	}
	return nil
}

func readStrings(ch codec.Channel, names []string, dst ...*string) error {
	for i, p := range dst {
		v, err := codec.Read[string](ch)
		if err != nil {
			return codec.At(err, names[i])
		}
		*p = v
	}
	return nil
}

func stringRecord(names []string) wit.Type {
	fields := make([]wit.Field, len(names))
	for i, n := range names {
		fields[i] = shape.Field(n, wit.String{})
	}
	return shape.Record(fields...)
}

var (
	animalFields = []string{"animal_string"}
	mammalFields = []string{"animal_string", "mammal_string"}
	boarFields   = []string{"animal_string", "mammal_string", "boar_string"}
	bearFields   = []string{"animal_string", "mammal_string", "bear_string"}
)

type animalCodec struct{}

func (animalCodec) Write(ch codec.Channel, a Animal) error {
	return writeStrings(ch, animalFields, a.AnimalString)
}

func (animalCodec) Read(ch codec.Channel) (Animal, error) {
	var a Animal
	err := readStrings(ch, animalFields, &a.AnimalString)
	return a, err
}

func (animalCodec) Shape(*codec.Registry) wit.Type { return stringRecord(animalFields) }

type mammalCodec struct{}

func (mammalCodec) Write(ch codec.Channel, m Mammal) error {
	return writeStrings(ch, mammalFields, m.AnimalString, m.MammalString)
}

func (mammalCodec) Read(ch codec.Channel) (Mammal, error) {
	var m Mammal
	err := readStrings(ch, mammalFields, &m.AnimalString, &m.MammalString)
	return m, err
}

func (mammalCodec) Shape(*codec.Registry) wit.Type { return stringRecord(mammalFields) }

type boarCodec struct{}

func (boarCodec) Write(ch codec.Channel, b Boar) error {
	return writeStrings(ch, boarFields, b.AnimalString, b.MammalString, b.BoarString)
}

func (boarCodec) Read(ch codec.Channel) (Boar, error) {
	var b Boar
	err := readStrings(ch, boarFields, &b.AnimalString, &b.MammalString, &b.BoarString)
	return b, err
}

func (boarCodec) Shape(*codec.Registry) wit.Type { return stringRecord(boarFields) }

type bearCodec struct{}

func (bearCodec) Write(ch codec.Channel, b Bear) error {
	return writeStrings(ch, bearFields, b.AnimalString, b.MammalString, b.BearString)
}

func (bearCodec) Read(ch codec.Channel) (Bear, error) {
	var b Bear
	err := readStrings(ch, bearFields, &b.AnimalString, &b.MammalString, &b.BearString)
	return b, err
}

func (bearCodec) Shape(*codec.Registry) wit.Type { return stringRecord(bearFields) }

// Creature tags on the wire.
const (
	tagAnimal byte = iota
	tagMammal
	tagBoar
	tagBear
)

// creatureCodec writes a tag byte naming the concrete type, then the value
// with that type's codec.
type creatureCodec struct{}

func (creatureCodec) Write(ch codec.Channel, c Creature) error {
	var err error
	switch v := c.(type) {
	case Animal:
		if err = codec.Write(ch, tagAnimal); err == nil {
			err = codec.Write(ch, v)
		}
	case Mammal:
		if err = codec.Write(ch, tagMammal); err == nil {
			err = codec.Write(ch, v)
		}
	case Boar:
		if err = codec.Write(ch, tagBoar); err == nil {
			err = codec.Write(ch, v)
		}
	case Bear:
		if err = codec.Write(ch, tagBear); err == nil {
			err = codec.Write(ch, v)
		}
	default:
		return errors.New(errors.PhaseEncode, errors.KindInvalidInput).
			GoType("sample.Creature").
			Value(c).
			Detail("no tag for %T", c).
			Build()
	}
	return err
}

func (creatureCodec) Read(ch codec.Channel) (Creature, error) {
	tag, err := codec.Read[byte](ch)
	if err != nil {
		return nil, err
	}
	switch tag {
	case tagAnimal:
		return readAs[Animal](ch)
	case tagMammal:
		return readAs[Mammal](ch)
	case tagBoar:
		return readAs[Boar](ch)
	case tagBear:
		return readAs[Bear](ch)
	}
	return nil, errors.Malformed(errors.PhaseDecode, nil, "unknown creature tag %d", tag)
}

func readAs[T Creature](ch codec.Channel) (Creature, error) {
	v, err := codec.Read[T](ch)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (creatureCodec) Shape(r *codec.Registry) wit.Type {
	return shape.Variant(
		shape.Case("animal", codec.ShapeOf[Animal](r)),
		shape.Case("mammal", codec.ShapeOf[Mammal](r)),
		shape.Case("boar", codec.ShapeOf[Boar](r)),
		shape.Case("bear", codec.ShapeOf[Bear](r)),
	)
}

type samplerDefCodec struct{}

func (samplerDefCodec) Write(ch codec.Channel, d ShaderSamplerDefinition) error {
	if err := codec.Write(ch, d.Name); err != nil {
		return codec.At(err, "name")
	}
	if err := codec.Write(ch, d.NiceName); err != nil {
		return codec.At(err, "nice_name")
	}
	if err := codec.Write(ch, d.Optional); err != nil {
		return codec.At(err, "optional")
	}
	return codec.At(codec.Write(ch, d.SamplerMode), "sampler_mode")
}

func (samplerDefCodec) Read(ch codec.Channel) (ShaderSamplerDefinition, error) {
	var d ShaderSamplerDefinition
	var err error
	if d.Name, err = codec.Read[string](ch); err != nil {
		return d, codec.At(err, "name")
	}
	if d.NiceName, err = codec.Read[string](ch); err != nil {
		return d, codec.At(err, "nice_name")
	}
	if d.Optional, err = codec.Read[bool](ch); err != nil {
		return d, codec.At(err, "optional")
	}
	if d.SamplerMode, err = codec.Read[SamplerMode](ch); err != nil {
		return d, codec.At(err, "sampler_mode")
	}
	return d, nil
}

func (samplerDefCodec) Shape(*codec.Registry) wit.Type {
	return shape.Record(
		shape.Field("name", wit.String{}),
		shape.Field("nice_name", wit.String{}),
		shape.Field("optional", wit.Bool{}),
		shape.Field("sampler_mode", wit.S32{}),
	)
}

type readmeCodec struct{}

func (readmeCodec) Write(ch codec.Channel, r ReadmeExample) error {
	if err := codec.Write(ch, r.Data); err != nil {
		return codec.At(err, "data")
	}
	if err := codec.Write(ch, r.Colour); err != nil {
		return codec.At(err, "colour")
	}
	return codec.At(codec.Write(ch, r.Version), "version")
}

func (readmeCodec) Read(ch codec.Channel) (ReadmeExample, error) {
	var r ReadmeExample
	var err error
	if r.Data, err = codec.Read[[]Foo](ch); err != nil {
		return ReadmeExample{}, codec.At(err, "data")
	}
	if r.Colour, err = codec.Read[Colour](ch); err != nil {
		return ReadmeExample{}, codec.At(err, "colour")
	}
	if r.Version, err = codec.Read[int32](ch); err != nil {
		return ReadmeExample{}, codec.At(err, "version")
	}
	return r, nil
}

func (readmeCodec) Shape(r *codec.Registry) wit.Type {
	return shape.Record(
		shape.Field("data", codec.ShapeOf[[]Foo](r)),
		shape.Field("colour", codec.ShapeOf[Colour](r)),
		shape.Field("version", wit.S32{}),
	)
}

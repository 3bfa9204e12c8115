// Package wirechan provides a type-dispatched binary serialization framework.
//
// A channel is bound to one byte stream and one direction. Values are written
// and read through it by static type: the channel looks up the codec
// registered for the requested type and runs it. Codecs for structured types
// call back into the channel for every field, so the stream is only ever
// touched by a small set of primitive codecs.
//
// # Architecture Overview
//
//	wirechan/            Root package with the channel Mode
//	├── errors/          Structured error types (phase + kind)
//	├── codec/           Codec contract, registry, dispatch, primitive and list codecs
//	├── channel/         Concrete stream-bound channel
//	├── stream/          Backing streams (WASM linear memory)
//	├── shape/           Wire shapes described as WIT types
//	├── internal/
//	│   ├── sample/      Sample domain types and their codecs
//	│   ├── config/      Inspector configuration (viper)
//	│   └── observability/ Logger setup (zap, lumberjack)
//	├── cmd/inspect/     Stream inspector CLI and trace browser
//	└── examples/basic/  Round trip through WASM linear memory
//
// # Quick Start
//
//	reg := codec.NewRegistry()
//	codec.RegisterPrimitives(reg)
//	codec.MustRegister[[]string](reg, codec.List[string]())
//	reg.Freeze()
//
//	var buf bytes.Buffer
//	w, _ := channel.NewWriter(reg, &buf)
//	_ = channel.Write(w, []string{"a", "b"})
//
//	r, _ := channel.NewReader(reg, &buf)
//	names, _ := channel.Read[[]string](r)
//
// # Wire Format
//
// There is no header, type tag or version marker. The byte sequence for a
// value is exactly what the codec call tree emits, in visiting order:
//
//	Type            Encoding
//	──────────────────────────────────────────────
//	bool            1 byte, 0 or 1
//	byte            1 byte
//	int32           4 bytes, little-endian
//	string          int32 byte length + UTF-8 bytes
//	enum            underlying value as int32
//	list<T>         int32 count + count × T
//
// Reader and writer must agree on the registered codecs and on the field
// order inside each of them.
//
// # Dispatch
//
// Lookup is by the static type argument of the call. A codec registered for
// a base type is never used for another type, and an interface type only has
// a codec if one was registered for the interface itself.
package wirechan

// Package codec defines the codec contract, the type registry and the
// dispatch functions every codec goes through.
//
// # Contract
//
// A Codec[T] reads and writes one T over a Channel. Codecs hold no per-call
// state and never touch the backing stream directly, except for the
// primitive set in this package:
//
//	Go type     Codec        Wire
//	────────────────────────────────────────────
//	bool        Bool         1 byte, 0 or 1
//	byte        Byte         1 byte
//	int32       Int32        4 bytes little-endian
//	string      String       s32 byte length + bytes
//	E ~int...   Enum[E]      value as s32
//	[]byte      Bytes        s32 count + bytes
//
// Everything else reaches the stream by calling Write[U] / Read[U] for its
// fields, which keeps a single point of dispatch:
//
//	func (fooCodec) Write(ch codec.Channel, f Foo) error {
//		if err := codec.Write(ch, f.FooColour); err != nil {
//			return err
//		}
//		return codec.Write(ch, f.Message)
//	}
//
// # Dispatch
//
// Write[T] and Read[T] resolve the codec registered for exactly T, with
// T taken from the type argument, not from the dynamic type of the value.
// Registering a codec for Animal does not make Mammal writable, and an
// interface type needs its own codec.
//
// # Registry
//
// A Registry is populated once, then frozen and shared read-only between
// any number of channels. Lookups on a frozen registry take no lock.
//
// # Composite Values
//
// List[T] writes an s32 count through Write[int32] and then each element
// through Write[T]. On read, a count that is negative or above
// Limits.MaxListLen fails with a malformed_stream error before anything is
// allocated.
package codec

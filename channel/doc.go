// Package channel provides the concrete stream-bound channel that codecs run
// against.
//
// # Lifecycle
//
// A Channel is built with New, then bound exactly once to a stream and a
// direction with Initialise. The split lets a channel be configured and
// validated before an I/O resource is committed to it:
//
//	ch := channel.New(reg, channel.WithSupportedTypes(reflect.TypeFor[Doc]()))
//	if err := ch.Validate(); err != nil { ... }
//	if err := ch.Initialise(file, wirechan.ModeWrite); err != nil { ... }
//	defer ch.Close()
//	err := channel.Write(ch, doc)
//
// A second Initialise fails with already_initialised until Reset is called.
// The owner releases the stream: Close closes it when it is an io.Closer,
// Reset leaves it open.
//
// # Failures
//
// Nothing is retried or rolled back. After a failed write the stream holds a
// partial value and should be discarded. A read that runs out of data fails
// with malformed_stream and never returns a partially filled value.
//
// # Nesting Depth
//
// Codecs recurse through the channel once per nested value, so call depth
// grows with the nesting depth of the data. The channel counts dispatch
// depth and fails with an overflow error past MaxDepth (DefaultMaxDepth
// unless configured). A self-referential value therefore ends in an error,
// not in exhausting the goroutine stack.
//
// # Thread Safety
//
// A Channel is NOT safe for concurrent use. Use one channel per goroutine or
// session; a frozen codec.Registry may be shared between all of them.
package channel

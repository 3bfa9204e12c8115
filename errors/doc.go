// Package errors provides structured error types for wirechan.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the field path, the Go type being dispatched, and a cause chain.
//
// Codecs that need to attach a value or wire shape use the Builder:
//
//	err := errors.New(errors.PhaseDecode, errors.KindMalformedStream).
//		GoType("sample.Foo").
//		Detail("unexpected end of stream at offset %d", 41).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnsupportedType(errors.PhaseEncode, "sample.Creature")
//	err := errors.WrongMode(errors.PhaseDecode, "write", "read")
//
// Callers distinguish outcomes by kind, regardless of the phase:
//
//	if errors.IsKind(err, errors.KindMalformedStream) { ... }
//
// All errors implement the standard error interface and support errors.Is/As.
package errors

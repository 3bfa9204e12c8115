// Package stream provides backing streams for channels beyond the io
// types in the standard library.
//
// Linear exposes a region of WebAssembly linear memory (a wazero
// api.Memory) as a sequential io.Reader and io.Writer, so values can be
// encoded straight into a guest module's memory and decoded from it:
//
//	w := stream.NewLinearWriter(mod.Memory(), base)
//	ch, _ := channel.NewWriter(reg, w)
//	_ = channel.Write(ch, msg)
//	ptr, size := w.Base(), w.Len()
//
// Writers grow memory by whole pages when the region would run past the end.
// Readers stop with io.EOF at the region limit.
package stream

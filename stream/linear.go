package stream

import (
	"fmt"
	"io"

	"github.com/tetratelabs/wazero/api"
)

// PageSize is the size of one WebAssembly memory page.
const PageSize = 65536

// Linear is a sequential cursor over a region of linear memory.
type Linear struct {
	mem   api.Memory
	base  uint32
	pos   uint32
	limit uint32
	grow  bool
}

// NewLinearWriter returns a writer starting at base. Memory is grown on
// demand.
func NewLinearWriter(mem api.Memory, base uint32) *Linear {
	return &Linear{mem: mem, base: base, pos: base, grow: true}
}

// NewLinearReader returns a reader over length bytes starting at base.
func NewLinearReader(mem api.Memory, base, length uint32) (*Linear, error) {
	if mem == nil {
		return nil, fmt.Errorf("linear memory is nil")
	}
	end := uint64(base) + uint64(length)
	if end > uint64(mem.Size()) {
		return nil, fmt.Errorf("region out of bounds: base=%d, length=%d, memory=%d", base, length, mem.Size())
	}
	return &Linear{mem: mem, base: base, pos: base, limit: uint32(end)}, nil
}

// Write copies p into memory at the cursor.
func (l *Linear) Write(p []byte) (int, error) {
	if !l.grow {
		return 0, fmt.Errorf("linear stream is read-only")
	}
	if l.mem == nil {
		return 0, fmt.Errorf("linear memory is nil")
	}
	if len(p) == 0 {
		return 0, nil
	}
	end := uint64(l.pos) + uint64(len(p))
	if end > 1<<32 {
		return 0, fmt.Errorf("write exceeds 32-bit address space: offset=%d, length=%d", l.pos, len(p))
	}
	if err := l.ensure(end); err != nil {
		return 0, err
	}
	if !l.mem.Write(l.pos, p) {
		return 0, fmt.Errorf("memory write out of bounds: offset=%d, length=%d", l.pos, len(p))
	}
	l.pos = uint32(end)
	return len(p), nil
}

func (l *Linear) ensure(end uint64) error {
	size := uint64(l.mem.Size())
	if end <= size {
		return nil
	}
	pages := (end - size + PageSize - 1) / PageSize
	if _, ok := l.mem.Grow(uint32(pages)); !ok {
		return fmt.Errorf("memory grow by %d pages failed: size=%d, need=%d", pages, size, end)
	}
	return nil
}

// Read copies bytes from the cursor into p, returning io.EOF at the limit.
func (l *Linear) Read(p []byte) (int, error) {
	if l.grow {
		return 0, fmt.Errorf("linear stream is write-only")
	}
	if l.pos >= l.limit {
		return 0, io.EOF
	}
	n := uint32(len(p))
	if rem := l.limit - l.pos; n > rem {
		n = rem
	}
	data, ok := l.mem.Read(l.pos, n)
	if !ok {
		return 0, fmt.Errorf("memory read out of bounds: offset=%d, length=%d", l.pos, n)
	}
	copy(p, data)
	l.pos += n
	return int(n), nil
}

// Base returns the start of the region.
func (l *Linear) Base() uint32 {
	return l.base
}

// Len returns the number of bytes written or consumed so far.
func (l *Linear) Len() uint32 {
	return l.pos - l.base
}

// Remaining returns the unread bytes of a reader region.
func (l *Linear) Remaining() uint32 {
	if l.grow || l.pos >= l.limit {
		return 0
	}
	return l.limit - l.pos
}

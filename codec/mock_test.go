package codec

import (
	"bytes"
	"io"
	"reflect"

	"github.com/wippyai/wirechan"
	"github.com/wippyai/wirechan/errors"
)

// mockChannel is a minimal in-memory Channel for codec tests.
type mockChannel struct {
	reg     *Registry
	buf     *bytes.Buffer
	entered []reflect.Type
	limits  Limits
	offset  int64
	mode    wirechan.Mode
}

func newMockWriter(reg *Registry) *mockChannel {
	return &mockChannel{reg: reg, buf: &bytes.Buffer{}, limits: DefaultLimits(), mode: wirechan.ModeWrite}
}

// reader returns a read-mode channel over everything written to c.
func (c *mockChannel) reader() *mockChannel {
	return newMockReader(c.reg, c.buf.Bytes())
}

func newMockReader(reg *Registry, data []byte) *mockChannel {
	return &mockChannel{reg: reg, buf: bytes.NewBuffer(append([]byte(nil), data...)), limits: DefaultLimits(), mode: wirechan.ModeRead}
}

func (c *mockChannel) Mode() wirechan.Mode { return c.mode }
func (c *mockChannel) Registry() *Registry { return c.reg }
func (c *mockChannel) Limits() Limits { return c.limits }
func (c *mockChannel) Leave(reflect.Type, error) {}

func (c *mockChannel) Enter(t reflect.Type) error {
	c.entered = append(c.entered, t)
	return nil
}

func (c *mockChannel) WriteRaw(p []byte) error {
	c.buf.Write(p)
	c.offset += int64(len(p))
	return nil
}

func (c *mockChannel) ReadRaw(p []byte) error {
	n, err := io.ReadFull(c.buf, p)
	c.offset += int64(n)
	if err != nil {
		return errors.UnexpectedEnd(c.offset, len(p)-n, err)
	}
	return nil
}

func newPrimitiveRegistry() *Registry {
	reg := NewRegistry()
	if err := RegisterPrimitives(reg); err != nil {
		panic(err)
	}
	return reg
}

func asError(err error, target **errors.Error) bool {
	e, ok := err.(*errors.Error)
	if ok {
		*target = e
	}
	return ok
}

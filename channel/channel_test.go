package channel

import (
	"bytes"
	stderrors "errors"
	"io"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/wirechan"
	"github.com/wippyai/wirechan/codec"
	"github.com/wippyai/wirechan/errors"
)

type point struct {
	X, Y int32
}

type node struct {
	next *node
	val  int32
}

func testRegistry(t *testing.T) *codec.Registry {
	t.Helper()
	reg := codec.NewRegistry()
	require.NoError(t, codec.RegisterPrimitives(reg))
	require.NoError(t, codec.Register(reg, codec.Codec[point](codec.Func[point]{
		WriteFunc: func(ch codec.Channel, p point) error {
			if err := codec.Write(ch, p.X); err != nil {
				return err
			}
			return codec.Write(ch, p.Y)
		},
		ReadFunc: func(ch codec.Channel) (point, error) {
			var p point
			var err error
			if p.X, err = codec.Read[int32](ch); err != nil {
				return p, err
			}
			p.Y, err = codec.Read[int32](ch)
			return p, err
		},
	})))
	require.NoError(t, codec.Register(reg, codec.Codec[*node](codec.Func[*node]{
		WriteFunc: func(ch codec.Channel, n *node) error {
			if err := codec.Write(ch, n != nil); err != nil || n == nil {
				return err
			}
			if err := codec.Write(ch, n.val); err != nil {
				return err
			}
			return codec.Write(ch, n.next)
		},
		ReadFunc: func(ch codec.Channel) (*node, error) {
			ok, err := codec.Read[bool](ch)
			if err != nil || !ok {
				return nil, err
			}
			n := &node{}
			if n.val, err = codec.Read[int32](ch); err != nil {
				return nil, err
			}
			n.next, err = codec.Read[*node](ch)
			return n, err
		},
	})))
	return reg
}

type closingBuffer struct {
	bytes.Buffer
	flushed  bool
	closed   bool
	closeErr error
}

func (b *closingBuffer) Flush() error {
	b.flushed = true
	return nil
}

func (b *closingBuffer) Close() error {
	b.closed = true
	return b.closeErr
}

type failingWriter struct{ err error }

func (w failingWriter) Write([]byte) (int, error) { return 0, w.err }

type shortWriter struct{}

func (shortWriter) Write(p []byte) (int, error) { return len(p) / 2, nil }

func TestInitialise(t *testing.T) {
	reg := testRegistry(t)

	t.Run("binds once", func(t *testing.T) {
		c := New(reg)
		assert.Equal(t, wirechan.ModeUnbound, c.Mode())

		require.NoError(t, c.Initialise(&bytes.Buffer{}, wirechan.ModeWrite))
		assert.Equal(t, wirechan.ModeWrite, c.Mode())

		err := c.Initialise(&bytes.Buffer{}, wirechan.ModeRead)
		assert.True(t, errors.IsKind(err, errors.KindAlreadyInitialised))
		assert.Equal(t, wirechan.ModeWrite, c.Mode())
	})

	t.Run("rebinds after reset", func(t *testing.T) {
		c := New(reg)
		require.NoError(t, c.Initialise(&bytes.Buffer{}, wirechan.ModeWrite))
		c.Reset()
		assert.Equal(t, wirechan.ModeUnbound, c.Mode())
		require.NoError(t, c.Initialise(bytes.NewReader(nil), wirechan.ModeRead))
		assert.Equal(t, wirechan.ModeRead, c.Mode())
	})

	t.Run("rejects unusable streams", func(t *testing.T) {
		var nilBuf *bytes.Buffer
		tests := []struct {
			name   string
			stream any
			mode   wirechan.Mode
			kind   errors.Kind
		}{
			{"nil", nil, wirechan.ModeWrite, errors.KindInvalidStream},
			{"typed nil", nilBuf, wirechan.ModeWrite, errors.KindInvalidStream},
			{"not a writer", bytes.NewReader(nil), wirechan.ModeWrite, errors.KindInvalidStream},
			{"not a reader", failingWriter{}, wirechan.ModeRead, errors.KindInvalidStream},
			{"unbound mode", &bytes.Buffer{}, wirechan.ModeUnbound, errors.KindInvalidInput},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				c := New(reg)
				err := c.Initialise(tt.stream, tt.mode)
				require.Error(t, err)
				assert.Equal(t, tt.kind, errors.KindOf(err))
				assert.Equal(t, wirechan.ModeUnbound, c.Mode())
			})
		}
	})

	t.Run("nil registry", func(t *testing.T) {
		c := New(nil)
		err := c.Initialise(&bytes.Buffer{}, wirechan.ModeWrite)
		assert.True(t, errors.IsKind(err, errors.KindInvalidInput))
	})
}

func TestChannel_RoundTrip(t *testing.T) {
	reg := testRegistry(t)
	var buf bytes.Buffer

	w, err := NewWriter(reg, &buf)
	require.NoError(t, err)
	require.NoError(t, Write(w, point{X: 3, Y: -4}))
	require.NoError(t, Write(w, "hi"))
	assert.True(t, errors.IsKind(Write(w, []point{{1, 2}}), errors.KindUnsupportedType))
	assert.Equal(t, int64(8+6), w.Offset())

	r, err := NewReader(reg, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	p, err := Read[point](r)
	require.NoError(t, err)
	assert.Equal(t, point{X: 3, Y: -4}, p)

	s, err := Read[string](r)
	require.NoError(t, err)
	assert.Equal(t, "hi", s)

	_, err = Read[[]point](r)
	assert.True(t, errors.IsKind(err, errors.KindUnsupportedType), "list codec was never registered")
	assert.Equal(t, 0, r.Depth())
}

func TestChannel_WrongMode(t *testing.T) {
	reg := testRegistry(t)

	w, err := NewWriter(reg, &bytes.Buffer{})
	require.NoError(t, err)
	_, err = Read[int32](w)
	assert.True(t, errors.IsKind(err, errors.KindWrongMode))
	assert.True(t, errors.IsKind(w.ReadRaw(make([]byte, 1)), errors.KindWrongMode))

	r, err := NewReader(reg, bytes.NewReader([]byte{1, 0, 0, 0}))
	require.NoError(t, err)
	assert.True(t, errors.IsKind(Write(r, int32(1)), errors.KindWrongMode))
	assert.Equal(t, int64(0), r.Offset())

	unbound := New(reg)
	assert.True(t, errors.IsKind(Write(unbound, int32(1)), errors.KindNotInitialized))
	assert.True(t, errors.IsKind(unbound.WriteRaw([]byte{1}), errors.KindNotInitialized))

	var nilChan *Channel
	assert.True(t, errors.IsKind(Write(nilChan, int32(1)), errors.KindNotInitialized))
}

func TestChannel_StreamFailures(t *testing.T) {
	reg := testRegistry(t)

	t.Run("truncated input", func(t *testing.T) {
		r, err := NewReader(reg, bytes.NewReader([]byte{1, 0}))
		require.NoError(t, err)
		_, err = Read[int32](r)
		assert.True(t, errors.IsKind(err, errors.KindMalformedStream))
		assert.True(t, stderrors.Is(err, io.ErrUnexpectedEOF))
	})

	t.Run("writer failure", func(t *testing.T) {
		boom := stderrors.New("disk full")
		w, err := NewWriter(reg, failingWriter{err: boom})
		require.NoError(t, err)
		err = Write(w, int32(7))
		assert.True(t, errors.IsKind(err, errors.KindIO))
		assert.True(t, stderrors.Is(err, boom))
	})

	t.Run("short write", func(t *testing.T) {
		w, err := NewWriter(reg, shortWriter{})
		require.NoError(t, err)
		err = Write(w, int32(7))
		assert.True(t, stderrors.Is(err, io.ErrShortWrite))
	})
}

func TestChannel_DepthGuard(t *testing.T) {
	reg := testRegistry(t)

	cyclic := &node{val: 1}
	cyclic.next = cyclic

	w, err := NewWriter(reg, &bytes.Buffer{}, WithMaxDepth(16))
	require.NoError(t, err)
	err = Write(w, cyclic)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindOverflow))
	assert.Equal(t, 0, w.Depth())

	chain := &node{val: 1, next: &node{val: 2}}
	var buf bytes.Buffer
	w, err = NewWriter(reg, &buf, WithMaxDepth(16))
	require.NoError(t, err)
	require.NoError(t, Write(w, chain))

	r, err := NewReader(reg, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	got, err := Read[*node](r)
	require.NoError(t, err)
	assert.Equal(t, int32(1), got.val)
	assert.Equal(t, int32(2), got.next.val)
	assert.Nil(t, got.next.next)
}

func TestChannel_Trace(t *testing.T) {
	reg := testRegistry(t)
	var rec Recorder

	w, err := NewWriter(reg, &bytes.Buffer{}, WithTracer(rec.Record))
	require.NoError(t, err)
	require.NoError(t, Write(w, point{X: 1, Y: 2}))

	events := rec.Events()
	require.Len(t, events, 3)

	assert.Equal(t, reflect.TypeFor[point](), events[0].Type)
	assert.Equal(t, 0, events[0].Depth)
	assert.Equal(t, int64(8), events[0].Size())

	for i, ev := range events[1:] {
		assert.Equal(t, reflect.TypeFor[int32](), ev.Type)
		assert.Equal(t, 1, ev.Depth)
		assert.Equal(t, int64(4*i), ev.Start)
		assert.Equal(t, int64(4), ev.Size())
	}

	rec.Reset()
	assert.Empty(t, rec.Events())
}

func TestChannel_Close(t *testing.T) {
	reg := testRegistry(t)

	t.Run("flushes and closes", func(t *testing.T) {
		stream := &closingBuffer{}
		w, err := NewWriter(reg, stream)
		require.NoError(t, err)
		require.NoError(t, Write(w, true))
		require.NoError(t, w.Close())

		assert.True(t, stream.flushed)
		assert.True(t, stream.closed)
		assert.Equal(t, []byte{1}, stream.Bytes())
		assert.Equal(t, wirechan.ModeUnbound, w.Mode())
	})

	t.Run("close failure", func(t *testing.T) {
		boom := stderrors.New("closed twice")
		w, err := NewWriter(reg, &closingBuffer{closeErr: boom})
		require.NoError(t, err)
		err = w.Close()
		assert.True(t, errors.IsKind(err, errors.KindIO))
		assert.True(t, stderrors.Is(err, boom))
		assert.Equal(t, wirechan.ModeUnbound, w.Mode())
	})

	t.Run("plain stream", func(t *testing.T) {
		w, err := NewWriter(reg, &bytes.Buffer{})
		require.NoError(t, err)
		assert.NoError(t, w.Close())
	})
}

func TestChannel_Validate(t *testing.T) {
	reg := testRegistry(t)

	c := New(reg, WithSupportedTypes(reflect.TypeFor[point](), reflect.TypeFor[string]()))
	assert.NoError(t, c.Validate())
	assert.Len(t, c.SupportedTypes(), 2)

	c = New(reg, WithSupportedTypes(reflect.TypeFor[point](), reflect.TypeFor[[]point]()))
	err := c.Validate()
	assert.True(t, errors.IsKind(err, errors.KindUnsupportedType))

	all := New(reg)
	assert.Equal(t, reg.Types(), all.SupportedTypes())

	require.NoError(t, codec.Register(reg, codec.List[float32]()))
	c = New(reg, WithSupportedTypes(reflect.TypeFor[[]float32]()))
	err = c.Validate()
	assert.True(t, errors.IsKind(err, errors.KindUnsupportedType))
	assert.Contains(t, err.Error(), "float32")
}

func TestWithLimits(t *testing.T) {
	reg := testRegistry(t)

	c := New(reg, WithLimits(codec.Limits{}))
	assert.Equal(t, codec.DefaultLimits(), c.Limits())

	c = New(reg, WithLimits(codec.Limits{MaxStringLen: 3, MaxListLen: -1}))
	assert.Equal(t, 3, c.Limits().MaxStringLen)
	assert.Equal(t, codec.DefaultLimits().MaxListLen, c.Limits().MaxListLen)

	require.NoError(t, c.Initialise(&bytes.Buffer{}, wirechan.ModeWrite))
	assert.NoError(t, Write(c, "abc"))
	assert.True(t, errors.IsKind(Write(c, "abcd"), errors.KindOverflow))
}

func TestChannel_Logging(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	reg := testRegistry(t)

	c := New(reg, WithLogger(zap.New(core)))
	require.NoError(t, c.Initialise(&bytes.Buffer{}, wirechan.ModeWrite))
	c.Reset()

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "channel initialised", entries[0].Message)
	assert.Equal(t, "write", entries[0].ContextMap()["mode"])
	assert.Equal(t, "channel reset", entries[1].Message)
}

package codec

import (
	"reflect"
	"sort"
	"sync"
	"sync/atomic"

	"go.bytecodealliance.org/wit"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/wirechan/errors"
	"github.com/wippyai/wirechan/shape"
)

// Registry maps an exact Go type to the codec for it.
type Registry struct {
	codecs map[reflect.Type]any
	mu     sync.RWMutex
	frozen atomic.Bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[reflect.Type]any),
	}
}

// Register associates c with T. It fails if T already has a codec or the
// registry is frozen.
func Register[T any](r *Registry, c Codec[T]) error {
	t := reflect.TypeFor[T]()
	if c == nil {
		return errors.Registration(t.String(), "codec is nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen.Load() {
		return errors.Registration(t.String(), "registry is frozen")
	}
	if _, exists := r.codecs[t]; exists {
		return errors.Registration(t.String(), "codec already registered")
	}
	r.codecs[t] = c

	Logger().Debug("codec registered",
		zap.String("type", t.String()),
		zap.String("codec", reflect.TypeOf(c).String()))
	return nil
}

// MustRegister is like Register but panics on error. Intended for
// package-level registry setup.
func MustRegister[T any](r *Registry, c Codec[T]) {
	if err := Register(r, c); err != nil {
		panic(err)
	}
}

// RegisterPrimitives registers bool, byte, int32, string and []byte.
func RegisterPrimitives(r *Registry) error {
	return multierr.Combine(
		Register(r, Bool()),
		Register(r, Byte()),
		Register(r, Int32()),
		Register(r, String()),
		Register(r, Bytes()),
	)
}

// Lookup returns the codec registered for exactly t.
func (r *Registry) Lookup(t reflect.Type) (any, bool) {
	if r.frozen.Load() {
		c, ok := r.codecs[t]
		return c, ok
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.codecs[t]
	return c, ok
}

// Get returns the typed codec registered for T.
func Get[T any](r *Registry) (Codec[T], bool) {
	c, ok := r.Lookup(reflect.TypeFor[T]())
	if !ok {
		return nil, false
	}
	typed, ok := c.(Codec[T])
	return typed, ok
}

// Has reports whether t has a codec.
func (r *Registry) Has(t reflect.Type) bool {
	_, ok := r.Lookup(t)
	return ok
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.codecs)
}

// Types returns the registered types sorted by name.
func (r *Registry) Types() []reflect.Type {
	r.mu.RLock()
	types := make([]reflect.Type, 0, len(r.codecs))
	for t := range r.codecs {
		types = append(types, t)
	}
	r.mu.RUnlock()

	sort.Slice(types, func(i, j int) bool { return types[i].String() < types[j].String() })
	return types
}

// Freeze stops further registration. After Freeze the registry may be
// shared between goroutines without synchronization.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen.Swap(true) {
		return
	}
	Logger().Debug("registry frozen", zap.Int("types", len(r.codecs)))
}

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool {
	return r.frozen.Load()
}

// Validate checks that every type in types has a codec, and so does every
// type those codecs require. All missing types are reported together.
func (r *Registry) Validate(types ...reflect.Type) error {
	var errs error
	for _, t := range r.Missing(types...) {
		errs = multierr.Append(errs, errors.UnsupportedType(errors.PhaseValidate, t.String()))
	}
	return errs
}

// Missing returns the types reachable from types, through Requirer codecs,
// that have no codec. Each is listed once, in discovery order.
func (r *Registry) Missing(types ...reflect.Type) []reflect.Type {
	var missing []reflect.Type
	seen := make(map[reflect.Type]bool)
	queue := append([]reflect.Type(nil), types...)
	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]
		if seen[t] {
			continue
		}
		seen[t] = true

		c, ok := r.Lookup(t)
		if !ok {
			missing = append(missing, t)
			continue
		}
		if req, ok := c.(Requirer); ok {
			queue = append(queue, req.Requires()...)
		}
	}
	return missing
}

// Shape returns the wire shape of the codec for t, if it describes one.
func (r *Registry) Shape(t reflect.Type) (wit.Type, bool) {
	c, ok := r.Lookup(t)
	if !ok {
		return nil, false
	}
	s, ok := c.(Shaper)
	if !ok {
		return nil, false
	}
	shp := s.Shape(r)
	return shp, shp != nil
}

// ShapeOf returns the wire shape of T's codec, or nil when T has none.
// Shapes of self-referential types must not call ShapeOf on themselves.
func ShapeOf[T any](r *Registry) wit.Type {
	s, _ := r.Shape(reflect.TypeFor[T]())
	return s
}

// Description summarizes one registered type.
type Description struct {
	Type    reflect.Type
	Shape   string
	MinSize int
}

// Describe lists every registered type with its rendered shape.
func (r *Registry) Describe() []Description {
	types := r.Types()
	out := make([]Description, 0, len(types))
	for _, t := range types {
		d := Description{Type: t, Shape: "?"}
		if s, ok := r.Shape(t); ok {
			d.Shape = shape.String(s)
			d.MinSize = shape.MinSize(s)
		}
		out = append(out, d)
	}
	return out
}

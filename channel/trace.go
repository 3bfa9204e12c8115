package channel

import (
	"reflect"
	"sort"
)

// Event describes one dispatched value: the type requested, how deeply it
// was nested, and the stream offsets it occupied.
type Event struct {
	Type  reflect.Type
	Err   error
	Start int64
	End   int64
	Depth int
}

// Size returns the number of bytes the value occupied.
func (e Event) Size() int64 {
	return e.End - e.Start
}

// Tracer receives events as values complete, innermost first.
type Tracer func(Event)

// Recorder collects trace events.
type Recorder struct {
	events []Event
}

// Record appends ev. Pass rec.Record to WithTracer.
func (r *Recorder) Record(ev Event) {
	r.events = append(r.events, ev)
}

// Events returns the recorded events in stream order: by start offset,
// outer values before the values nested inside them.
func (r *Recorder) Events() []Event {
	out := append([]Event(nil), r.events...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].Depth < out[j].Depth
	})
	return out
}

// Reset drops recorded events.
func (r *Recorder) Reset() {
	r.events = r.events[:0]
}

package testutil

import "github.com/roach88/storefront/internal/storefront"

// Recorder collects hook events in firing order.
//
// Use Handle as a storefront.Handler:
//
//	rec := testutil.NewRecorder()
//	reg.SubscribeAll(rec.Handle)
type Recorder struct {
	events []storefront.Event
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Handle appends ev.
func (r *Recorder) Handle(ev storefront.Event) {
	r.events = append(r.events, ev)
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []storefront.Event {
	out := make([]storefront.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Kinds returns the kinds of the recorded events in order.
func (r *Recorder) Kinds() []storefront.EventKind {
	out := make([]storefront.EventKind, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Kind
	}
	return out
}

// Count returns how many events of kind were recorded for instance.
// An empty instance counts every instance.
func (r *Recorder) Count(instance string, kind storefront.EventKind) int {
	n := 0
	for _, ev := range r.events {
		if ev.Kind == kind && (instance == "" || ev.Instance == instance) {
			n++
		}
	}
	return n
}

// Reset forgets every recorded event.
func (r *Recorder) Reset() {
	r.events = nil
}
